// internal/domain/reminder/due.go
package reminder

import (
	"fmt"
	"math"
	"time"
)

// DueBucket classifies how urgent a deadline is relative to today.
type DueBucket string

const (
	BucketOverdue  DueBucket = "overdue"
	BucketDue      DueBucket = "due"
	BucketDueSoon  DueBucket = "due_soon"
	BucketUpcoming DueBucket = "upcoming"
)

// DueStatus is the user-facing classification of a deadline.
// Days is negative when the deadline has passed.
type DueStatus struct {
	Bucket DueBucket `json:"status"`
	Label  string    `json:"label"`
	Days   int       `json:"days"`
}

// Classify buckets a deadline against "now" at day granularity. The deadline
// is first brought into now's zone, then both sides are normalized to midnight
// of their calendar day before differencing, so a UTC-stored deadline and a
// local "now" land on the same calendar no matter what hour the check runs.
// The difference is ceiling-divided: a daylight-saving shift that leaves the
// gap at 23 or 25 hours still rounds toward the less-due side of a whole day.
func Classify(nextReminderAt, now time.Time) DueStatus {
	next := midnight(nextReminderAt.In(now.Location()))
	today := midnight(now)
	days := int(math.Ceil(next.Sub(today).Hours() / 24))

	switch {
	case days < 0:
		return DueStatus{
			Bucket: BucketOverdue,
			Label:  fmt.Sprintf("Overdue by %d %s", -days, dayWord(-days)),
			Days:   days,
		}
	case days == 0:
		return DueStatus{Bucket: BucketDue, Label: "Due today", Days: 0}
	case days <= 7:
		return DueStatus{
			Bucket: BucketDueSoon,
			Label:  fmt.Sprintf("Due in %d %s", days, dayWord(days)),
			Days:   days,
		}
	}
	return DueStatus{
		Bucket: BucketUpcoming,
		Label:  fmt.Sprintf("Due in %d days", days),
		Days:   days,
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayWord(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}

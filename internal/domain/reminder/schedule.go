// internal/domain/reminder/schedule.go
package reminder

import (
	"database/sql"
	"time"
)

// Frequency is the named recurrence policy for a person (how often to reach out).
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyCustom    Frequency = "custom"
)

// defaultIntervalDays maps each named frequency to its cycle length in days.
var defaultIntervalDays = map[Frequency]int{
	FrequencyWeekly:    7,
	FrequencyBiweekly:  14,
	FrequencyMonthly:   30,
	FrequencyQuarterly: 90,
}

// fallbackIntervalDays is used for FrequencyCustom without a stored day count
// and for any unrecognized frequency value.
const fallbackIntervalDays = 30

// maxSnoozeDays caps the snooze length for very long custom intervals.
const maxSnoozeDays = 21

// IsValid reports whether f is one of the known frequency values.
func (f Frequency) IsValid() bool {
	if f == FrequencyCustom {
		return true
	}
	_, ok := defaultIntervalDays[f]
	return ok
}

// IntervalDays resolves a frequency plus an optional custom day count to a
// concrete number of days. A stored custom value is returned as-is, whether or
// not it is positive; validating positivity is the caller's job at the input
// boundary. Unknown frequencies fall back to 30 rather than erroring.
func IntervalDays(freq Frequency, customDays sql.NullInt32) int {
	if freq == FrequencyCustom && customDays.Valid {
		return int(customDays.Int32)
	}
	if days, ok := defaultIntervalDays[freq]; ok {
		return days
	}
	return fallbackIntervalDays
}

// NextReminderAt computes the deadline following a recorded contact.
// A zero lastContactedAt means "contacted right now". The interval is added in
// calendar days, so month/year rollover follows native date arithmetic with no
// clamping (Jan 30 + 30 days lands in March on non-leap years).
func NextReminderAt(lastContactedAt time.Time, freq Frequency, customDays sql.NullInt32) time.Time {
	base := lastContactedAt
	if base.IsZero() {
		base = time.Now()
	}
	return base.AddDate(0, 0, IntervalDays(freq, customDays))
}

// SnoozeDays derives a deferral length from the person's cycle. Snoozes are
// deliberately shorter than a full cycle so a weekly contact is never pushed
// out by a week at a time.
func SnoozeDays(freq Frequency, customDays sql.NullInt32) int {
	interval := IntervalDays(freq, customDays)
	switch {
	case interval <= 7:
		return 1
	case interval <= 14:
		return 2
	case interval <= 30:
		return 7
	}
	days := interval / 7
	if days < 1 {
		days = 1
	}
	if days > maxSnoozeDays {
		days = maxSnoozeDays
	}
	return days
}

// SnoozedReminderAt advances the stored deadline by the snooze length.
// It works from the current deadline, not from "now", so repeated snoozes
// compose deterministically no matter when the user taps snooze.
func SnoozedReminderAt(currentReminderAt time.Time, freq Frequency, customDays sql.NullInt32) time.Time {
	return currentReminderAt.AddDate(0, 0, SnoozeDays(freq, customDays))
}

// internal/domain/person/person.go
package person

import (
	"database/sql"
	"time"

	"forget_me_not/internal/domain/reminder"
)

// RelationshipHint is an optional tag used to bias check-in suggestions.
// It plays no part in scheduling.
type RelationshipHint string

const (
	HintFamily   RelationshipHint = "family"
	HintFriend   RelationshipHint = "friend"
	HintCoworker RelationshipHint = "coworker"
	HintOther    RelationshipHint = "other"
)

// Person is someone the owner wants to stay in touch with.
// NextReminderAt is the single source of truth for when they are due; it is
// set at creation and only ever moved forward, by a recorded outreach or a
// snooze. Corresponds to the 'person' table.
type Person struct {
	ID               string
	UserID           string
	Name             string
	PhotoURL         sql.NullString
	Phone            sql.NullString
	Email            sql.NullString
	Frequency        reminder.Frequency
	CustomDays       sql.NullInt32
	NextReminderAt   time.Time
	RelationshipHint sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

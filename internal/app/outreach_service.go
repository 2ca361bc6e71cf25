// internal/app/outreach_service.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"forget_me_not/internal/domain/outreach"
	"forget_me_not/internal/domain/person"
	"forget_me_not/internal/domain/reminder"

	"github.com/sirupsen/logrus"
)

// Validation errors surfaced to the input boundary.
var (
	ErrInvalidFrequency  = fmt.Errorf("unknown reminder frequency")
	ErrInvalidCustomDays = fmt.Errorf("custom_days must be a positive number of days")
	ErrNameRequired      = fmt.Errorf("name is required")
)

// NewPersonInput carries the caller-supplied fields for creating a person.
// The initial deadline is never supplied; it is always computed here.
type NewPersonInput struct {
	Name             string
	PhotoURL         string
	Phone            string
	Email            string
	Frequency        reminder.Frequency
	CustomDays       *int
	RelationshipHint string
}

// UpdatePersonInput carries a partial update. Nil fields keep their stored
// value; a supplied empty string clears the optional columns. The deadline is
// never recomputed here: it moves only when the caller supplies one directly,
// or through RecordOutreach and Snooze.
type UpdatePersonInput struct {
	Name             *string
	PhotoURL         *string
	Phone            *string
	Email            *string
	Frequency        *reminder.Frequency
	CustomDays       *int
	RelationshipHint *string
	NextReminderAt   *time.Time
}

// OutreachService records reach-outs and snoozes and keeps each person's
// deadline in step with them.
type OutreachService interface {
	CreatePerson(ctx context.Context, userID string, input NewPersonInput) (*person.Person, error)
	// UpdatePerson applies the supplied fields to p and persists the result.
	UpdatePerson(ctx context.Context, p *person.Person, input UpdatePersonInput) error
	// RecordOutreach appends a ledger row and, only if that succeeds,
	// reschedules the person from contactedAt. A zero contactedAt means "now".
	RecordOutreach(ctx context.Context, p *person.Person, contactedAt time.Time, note string) error
	// Snooze defers the person's deadline by the cadence-proportional snooze
	// length, advancing from the stored deadline rather than from "now".
	Snooze(ctx context.Context, p *person.Person) error
}

// OutreachServiceImpl implements OutreachService.
type OutreachServiceImpl struct {
	personRepo   person.Repository
	outreachRepo outreach.Repository
	logger       *logrus.Entry
}

func NewOutreachService(pr person.Repository, or outreach.Repository, logger *logrus.Entry) *OutreachServiceImpl {
	return &OutreachServiceImpl{
		personRepo:   pr,
		outreachRepo: or,
		logger:       logger,
	}
}

// CreatePerson validates the input and stores the person with their initial
// deadline already set: now + interval(frequency). A person row never exists
// without a deadline.
func (s *OutreachServiceImpl) CreatePerson(ctx context.Context, userID string, input NewPersonInput) (*person.Person, error) {
	if input.Name == "" {
		return nil, ErrNameRequired
	}
	if !input.Frequency.IsValid() {
		return nil, ErrInvalidFrequency
	}
	customDays := sql.NullInt32{}
	if input.CustomDays != nil {
		if *input.CustomDays <= 0 {
			return nil, ErrInvalidCustomDays
		}
		customDays = sql.NullInt32{Int32: int32(*input.CustomDays), Valid: true}
	}

	p := &person.Person{
		UserID:           userID,
		Name:             input.Name,
		PhotoURL:         nullString(input.PhotoURL),
		Phone:            nullString(input.Phone),
		Email:            nullString(input.Email),
		Frequency:        input.Frequency,
		CustomDays:       customDays,
		NextReminderAt:   reminder.NextReminderAt(time.Time{}, input.Frequency, customDays),
		RelationshipHint: nullString(input.RelationshipHint),
	}
	if err := s.personRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create person: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"person_id":        p.ID,
		"user_id":          userID,
		"next_reminder_at": p.NextReminderAt.Format(time.RFC3339),
	}).Info("Person created")
	return p, nil
}

func (s *OutreachServiceImpl) UpdatePerson(ctx context.Context, p *person.Person, input UpdatePersonInput) error {
	if input.Name != nil && *input.Name == "" {
		return ErrNameRequired
	}
	if input.Frequency != nil && !input.Frequency.IsValid() {
		return ErrInvalidFrequency
	}
	if input.CustomDays != nil && *input.CustomDays <= 0 {
		return ErrInvalidCustomDays
	}

	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.PhotoURL != nil {
		p.PhotoURL = nullString(*input.PhotoURL)
	}
	if input.Phone != nil {
		p.Phone = nullString(*input.Phone)
	}
	if input.Email != nil {
		p.Email = nullString(*input.Email)
	}
	if input.Frequency != nil {
		p.Frequency = *input.Frequency
	}
	if input.CustomDays != nil {
		p.CustomDays = sql.NullInt32{Int32: int32(*input.CustomDays), Valid: true}
	}
	if input.RelationshipHint != nil {
		p.RelationshipHint = nullString(*input.RelationshipHint)
	}
	if input.NextReminderAt != nil {
		p.NextReminderAt = *input.NextReminderAt
	}

	if err := s.personRepo.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to update person %s: %w", p.ID, err)
	}
	s.logger.WithField("person_id", p.ID).Info("Person updated")
	return nil
}

func (s *OutreachServiceImpl) RecordOutreach(ctx context.Context, p *person.Person, contactedAt time.Time, note string) error {
	if contactedAt.IsZero() {
		contactedAt = time.Now()
	}
	logCtx := s.logger.WithFields(logrus.Fields{"person_id": p.ID, "contacted_at": contactedAt.Format(time.RFC3339)})

	entry := &outreach.Outreach{
		PersonID:    p.ID,
		ContactedAt: contactedAt,
		Note:        nullString(note),
	}
	if err := s.outreachRepo.Create(ctx, entry); err != nil {
		logCtx.WithError(err).Error("Failed to append outreach ledger entry; deadline left untouched")
		return fmt.Errorf("failed to record outreach: %w", err)
	}

	next := reminder.NextReminderAt(contactedAt, p.Frequency, p.CustomDays)
	if err := s.personRepo.UpdateNextReminder(ctx, p.ID, next); err != nil {
		// The ledger row exists but the deadline was not moved. Retrying this
		// step alone is safe: the same contactedAt recomputes the same deadline.
		logCtx.WithError(err).Error("Outreach recorded but rescheduling failed")
		return fmt.Errorf("outreach recorded but failed to reschedule: %w", err)
	}
	p.NextReminderAt = next

	logCtx.WithField("next_reminder_at", next.Format(time.RFC3339)).Info("Outreach recorded and person rescheduled")
	return nil
}

func (s *OutreachServiceImpl) Snooze(ctx context.Context, p *person.Person) error {
	next := reminder.SnoozedReminderAt(p.NextReminderAt, p.Frequency, p.CustomDays)
	if err := s.personRepo.UpdateNextReminder(ctx, p.ID, next); err != nil {
		s.logger.WithError(err).WithField("person_id", p.ID).Error("Failed to snooze person")
		return fmt.Errorf("failed to snooze person %s: %w", p.ID, err)
	}
	p.NextReminderAt = next

	s.logger.WithFields(logrus.Fields{
		"person_id":        p.ID,
		"next_reminder_at": next.Format(time.RFC3339),
	}).Info("Person snoozed")
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

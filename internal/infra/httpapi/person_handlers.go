// internal/infra/httpapi/person_handlers.go
package httpapi

import (
	"errors"
	"net/http"
	"time"

	"forget_me_not/internal/app"
	"forget_me_not/internal/domain/person"
	"forget_me_not/internal/domain/reminder"
	idb "forget_me_not/internal/infra/database"

	"github.com/labstack/echo/v4"
)

const suggestionCount = 3

type createPersonRequest struct {
	UserID           string             `json:"user_id"`
	Name             string             `json:"name"`
	PhotoURL         string             `json:"photo_url"`
	Phone            string             `json:"phone"`
	Email            string             `json:"email"`
	Frequency        reminder.Frequency `json:"reminder_frequency"`
	CustomDays       *int               `json:"custom_days"`
	RelationshipHint string             `json:"relationship_hint"`
}

// updatePersonRequest is a partial update: absent fields keep their stored
// value, which is why everything is a pointer.
type updatePersonRequest struct {
	Name             *string             `json:"name"`
	PhotoURL         *string             `json:"photo_url"`
	Phone            *string             `json:"phone"`
	Email            *string             `json:"email"`
	Frequency        *reminder.Frequency `json:"reminder_frequency"`
	CustomDays       *int                `json:"custom_days"`
	RelationshipHint *string             `json:"relationship_hint"`
	NextReminderAt   *time.Time          `json:"next_reminder_at"`
}

type outreachRequest struct {
	ContactedAt *time.Time `json:"contacted_at"`
	Note        string     `json:"note"`
}

type savePushTokenRequest struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// personView is the wire shape of a person, with the due classification
// computed on the way out.
type personView struct {
	ID               string             `json:"id"`
	UserID           string             `json:"user_id"`
	Name             string             `json:"name"`
	PhotoURL         string             `json:"photo_url,omitempty"`
	Phone            string             `json:"phone,omitempty"`
	Email            string             `json:"email,omitempty"`
	Frequency        reminder.Frequency `json:"reminder_frequency"`
	CustomDays       *int               `json:"custom_days,omitempty"`
	NextReminderAt   time.Time          `json:"next_reminder_at"`
	RelationshipHint string             `json:"relationship_hint,omitempty"`
	Due              reminder.DueStatus `json:"due"`
	Suggestions      []string           `json:"suggestions,omitempty"`
	History          []outreachView     `json:"outreach_history,omitempty"`
}

// outreachView is one ledger entry on the wire, newest first.
type outreachView struct {
	ID          string    `json:"id"`
	ContactedAt time.Time `json:"contacted_at"`
	Note        string    `json:"note,omitempty"`
}

func toPersonView(p *person.Person, now time.Time) personView {
	v := personView{
		ID:               p.ID,
		UserID:           p.UserID,
		Name:             p.Name,
		PhotoURL:         p.PhotoURL.String,
		Phone:            p.Phone.String,
		Email:            p.Email.String,
		Frequency:        p.Frequency,
		NextReminderAt:   p.NextReminderAt,
		RelationshipHint: p.RelationshipHint.String,
		Due:              reminder.Classify(p.NextReminderAt, now),
	}
	if p.CustomDays.Valid {
		days := int(p.CustomDays.Int32)
		v.CustomDays = &days
	}
	return v
}

func (h *Handlers) CreatePerson(c echo.Context) error {
	var req createPersonRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	p, err := h.outreachService.CreatePerson(c.Request().Context(), req.UserID, app.NewPersonInput{
		Name:             req.Name,
		PhotoURL:         req.PhotoURL,
		Phone:            req.Phone,
		Email:            req.Email,
		Frequency:        req.Frequency,
		CustomDays:       req.CustomDays,
		RelationshipHint: req.RelationshipHint,
	})
	if err != nil {
		if isValidationError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.logger.WithError(err).Error("Failed to create person")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create person")
	}
	return c.JSON(http.StatusCreated, toPersonView(p, time.Now()))
}

func (h *Handlers) ListPeople(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id query parameter is required")
	}

	people, err := h.personRepo.ListByUser(c.Request().Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list people")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list people")
	}

	now := time.Now()
	views := make([]personView, 0, len(people))
	for _, p := range people {
		views = append(views, toPersonView(p, now))
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handlers) GetPerson(c echo.Context) error {
	p, err := h.lookupPerson(c)
	if err != nil {
		return err
	}
	entries, err := h.outreachRepo.ListByPerson(c.Request().Context(), p.ID)
	if err != nil {
		h.logger.WithError(err).WithField("person_id", p.ID).Error("Failed to load outreach history")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load outreach history")
	}

	view := toPersonView(p, time.Now())
	view.Suggestions = h.suggestions.Pick(person.RelationshipHint(p.RelationshipHint.String), suggestionCount)
	for _, entry := range entries {
		view.History = append(view.History, outreachView{
			ID:          entry.ID,
			ContactedAt: entry.ContactedAt,
			Note:        entry.Note.String,
		})
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handlers) UpdatePerson(c echo.Context) error {
	p, err := h.lookupPerson(c)
	if err != nil {
		return err
	}

	var req updatePersonRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	err = h.outreachService.UpdatePerson(c.Request().Context(), p, app.UpdatePersonInput{
		Name:             req.Name,
		PhotoURL:         req.PhotoURL,
		Phone:            req.Phone,
		Email:            req.Email,
		Frequency:        req.Frequency,
		CustomDays:       req.CustomDays,
		RelationshipHint: req.RelationshipHint,
		NextReminderAt:   req.NextReminderAt,
	})
	if err != nil {
		if isValidationError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.logger.WithError(err).WithField("person_id", p.ID).Error("Failed to update person")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update person")
	}
	return c.JSON(http.StatusOK, toPersonView(p, time.Now()))
}

func (h *Handlers) DeletePerson(c echo.Context) error {
	err := h.personRepo.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, idb.ErrPersonNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "person not found")
		}
		h.logger.WithError(err).Error("Failed to delete person")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete person")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) RecordOutreach(c echo.Context) error {
	p, err := h.lookupPerson(c)
	if err != nil {
		return err
	}

	var req outreachRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	contactedAt := time.Time{}
	if req.ContactedAt != nil {
		contactedAt = *req.ContactedAt
	}

	if err := h.outreachService.RecordOutreach(c.Request().Context(), p, contactedAt, req.Note); err != nil {
		h.logger.WithError(err).WithField("person_id", p.ID).Error("Failed to record outreach")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to record outreach")
	}
	return c.JSON(http.StatusOK, toPersonView(p, time.Now()))
}

func (h *Handlers) SnoozePerson(c echo.Context) error {
	p, err := h.lookupPerson(c)
	if err != nil {
		return err
	}

	if err := h.outreachService.Snooze(c.Request().Context(), p); err != nil {
		h.logger.WithError(err).WithField("person_id", p.ID).Error("Failed to snooze person")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to snooze person")
	}
	return c.JSON(http.StatusOK, toPersonView(p, time.Now()))
}

func (h *Handlers) SavePushToken(c echo.Context) error {
	var req savePushTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" || req.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id and token are required")
	}

	if err := h.tokenRepo.Save(c.Request().Context(), req.UserID, req.Token); err != nil {
		h.logger.WithError(err).Error("Failed to save push token")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save push token")
	}
	return c.NoContent(http.StatusNoContent)
}

// DeletePushToken unregisters one device, e.g. on sign-out.
func (h *Handlers) DeletePushToken(c echo.Context) error {
	var req savePushTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" || req.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id and token are required")
	}

	if err := h.tokenRepo.DeleteByUserAndToken(c.Request().Context(), req.UserID, req.Token); err != nil {
		h.logger.WithError(err).Error("Failed to delete push token")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete push token")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) lookupPerson(c echo.Context) (*person.Person, error) {
	p, err := h.personRepo.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, idb.ErrPersonNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "person not found")
		}
		h.logger.WithError(err).Error("Failed to fetch person")
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch person")
	}
	return p, nil
}

func isValidationError(err error) bool {
	return errors.Is(err, app.ErrNameRequired) ||
		errors.Is(err, app.ErrInvalidFrequency) ||
		errors.Is(err, app.ErrInvalidCustomDays)
}

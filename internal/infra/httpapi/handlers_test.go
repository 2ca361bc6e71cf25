package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"forget_me_not/internal/app"
	"forget_me_not/internal/domain/outreach"
	"forget_me_not/internal/domain/person"
	"forget_me_not/internal/domain/push"
	"forget_me_not/internal/domain/reminder"
	idb "forget_me_not/internal/infra/database"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutreachService struct {
	createErr   error
	updateErr   error
	recordCalls int
	updateCalls int
	snoozeCalls int
}

func (s *fakeOutreachService) CreatePerson(_ context.Context, userID string, input app.NewPersonInput) (*person.Person, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &person.Person{
		ID:             "p-1",
		UserID:         userID,
		Name:           input.Name,
		Frequency:      input.Frequency,
		NextReminderAt: time.Now().AddDate(0, 0, 7),
	}, nil
}

func (s *fakeOutreachService) UpdatePerson(_ context.Context, p *person.Person, input app.UpdatePersonInput) error {
	s.updateCalls++
	if s.updateErr != nil {
		return s.updateErr
	}
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.NextReminderAt != nil {
		p.NextReminderAt = *input.NextReminderAt
	}
	return nil
}

func (s *fakeOutreachService) RecordOutreach(_ context.Context, p *person.Person, contactedAt time.Time, _ string) error {
	s.recordCalls++
	if contactedAt.IsZero() {
		contactedAt = time.Now()
	}
	p.NextReminderAt = contactedAt.AddDate(0, 0, 7)
	return nil
}

func (s *fakeOutreachService) Snooze(_ context.Context, p *person.Person) error {
	s.snoozeCalls++
	p.NextReminderAt = p.NextReminderAt.AddDate(0, 0, 1)
	return nil
}

type fakeDispatchService struct {
	summary *app.DispatchSummary
	err     error
}

func (s *fakeDispatchService) Run(_ context.Context) (*app.DispatchSummary, error) {
	return s.summary, s.err
}

type fakePersonStore struct {
	people map[string]*person.Person
}

func (r *fakePersonStore) Create(_ context.Context, _ *person.Person) error { return nil }

func (r *fakePersonStore) GetByID(_ context.Context, id string) (*person.Person, error) {
	p, ok := r.people[id]
	if !ok {
		return nil, idb.ErrPersonNotFound
	}
	return p, nil
}

func (r *fakePersonStore) Update(_ context.Context, _ *person.Person) error { return nil }

func (r *fakePersonStore) UpdateNextReminder(_ context.Context, _ string, _ time.Time) error {
	return nil
}

func (r *fakePersonStore) ListByUser(_ context.Context, userID string) ([]*person.Person, error) {
	var out []*person.Person
	for _, p := range r.people {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePersonStore) ListDue(_ context.Context, _ time.Time) ([]*person.Person, error) {
	return nil, nil
}

func (r *fakePersonStore) Delete(_ context.Context, id string) error {
	if _, ok := r.people[id]; !ok {
		return idb.ErrPersonNotFound
	}
	delete(r.people, id)
	return nil
}

type fakeOutreachStore struct {
	entries []*outreach.Outreach
	listErr error
}

func (r *fakeOutreachStore) Create(_ context.Context, o *outreach.Outreach) error {
	r.entries = append(r.entries, o)
	return nil
}

func (r *fakeOutreachStore) ListByPerson(_ context.Context, personID string) ([]*outreach.Outreach, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*outreach.Outreach
	for _, o := range r.entries {
		if o.PersonID == personID {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeTokenStore struct {
	saved map[string]string
}

func (r *fakeTokenStore) Save(_ context.Context, userID, token string) error {
	if r.saved == nil {
		r.saved = map[string]string{}
	}
	r.saved[userID] = token
	return nil
}

func (r *fakeTokenStore) ListByUsers(_ context.Context, _ []string) ([]*push.Token, error) {
	return nil, nil
}

func (r *fakeTokenStore) DeleteByUserAndToken(_ context.Context, _, _ string) error { return nil }

func newTestHandlers(svc *fakeOutreachService, dispatch *fakeDispatchService, store *fakePersonStore, tokens *fakeTokenStore) *Handlers {
	return newTestHandlersWithLedger(svc, dispatch, store, &fakeOutreachStore{}, tokens)
}

func newTestHandlersWithLedger(svc *fakeOutreachService, dispatch *fakeDispatchService, store *fakePersonStore, ledger *fakeOutreachStore, tokens *fakeTokenStore) *Handlers {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewHandlers(svc, dispatch, app.NewSuggestionService(nil), store, ledger, tokens, logrus.NewEntry(l))
}

func doRequest(h *Handlers, method, target string, body string) *httptest.ResponseRecorder {
	e := NewServer(h)
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRunDispatchReturnsSummary(t *testing.T) {
	dispatch := &fakeDispatchService{summary: &app.DispatchSummary{
		Sent:      3,
		DueCount:  3,
		Attempted: 4,
		Log:       []string{"found 3 people due"},
	}}
	h := newTestHandlers(&fakeOutreachService{}, dispatch, &fakePersonStore{}, &fakeTokenStore{})

	rec := doRequest(h, http.MethodPost, "/jobs/dispatch", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, float64(3), got["sent"])
	assert.Equal(t, float64(3), got["dueCount"])
	assert.NotEmpty(t, got["log"])
	// Internal counters stay off the wire.
	assert.NotContains(t, got, "attempted")
}

func TestRunDispatchDueQueryFailureIs500(t *testing.T) {
	dispatch := &fakeDispatchService{err: fmt.Errorf("failed to query due people: connection reset")}
	h := newTestHandlers(&fakeOutreachService{}, dispatch, &fakePersonStore{}, &fakeTokenStore{})

	rec := doRequest(h, http.MethodPost, "/jobs/dispatch", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got["error"], "connection reset")
}

func TestCreatePersonValidationIs400(t *testing.T) {
	outreach := &fakeOutreachService{createErr: app.ErrInvalidCustomDays}
	h := newTestHandlers(outreach, &fakeDispatchService{}, &fakePersonStore{}, &fakeTokenStore{})

	rec := doRequest(h, http.MethodPost, "/people",
		`{"user_id":"u-1","name":"Grace","reminder_frequency":"custom","custom_days":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePersonReturnsViewWithDueStatus(t *testing.T) {
	h := newTestHandlers(&fakeOutreachService{}, &fakeDispatchService{}, &fakePersonStore{}, &fakeTokenStore{})

	rec := doRequest(h, http.MethodPost, "/people",
		`{"user_id":"u-1","name":"Grace","reminder_frequency":"weekly"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got personView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Grace", got.Name)
	assert.Equal(t, reminder.BucketDueSoon, got.Due.Bucket)
}

func TestSnoozeUnknownPersonIs404(t *testing.T) {
	h := newTestHandlers(&fakeOutreachService{}, &fakeDispatchService{}, &fakePersonStore{people: map[string]*person.Person{}}, &fakeTokenStore{})

	rec := doRequest(h, http.MethodPost, "/people/nope/snooze", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordOutreachUpdatesDeadline(t *testing.T) {
	store := &fakePersonStore{people: map[string]*person.Person{
		"p-1": {
			ID:             "p-1",
			UserID:         "u-1",
			Name:           "Ada",
			Frequency:      reminder.FrequencyWeekly,
			NextReminderAt: time.Now().AddDate(0, 0, -2),
		},
	}}
	outreach := &fakeOutreachService{}
	h := newTestHandlers(outreach, &fakeDispatchService{}, store, &fakeTokenStore{})

	rec := doRequest(h, http.MethodPost, "/people/p-1/outreach", `{"note":"called"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, outreach.recordCalls)

	var got personView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, reminder.BucketDueSoon, got.Due.Bucket)
}

func TestUpdatePersonPartialUpdate(t *testing.T) {
	deadline := time.Now().AddDate(0, 0, 5)
	store := &fakePersonStore{people: map[string]*person.Person{
		"p-1": {
			ID:             "p-1",
			UserID:         "u-1",
			Name:           "Ada",
			Frequency:      reminder.FrequencyWeekly,
			NextReminderAt: deadline,
		},
	}}
	svc := &fakeOutreachService{}
	h := newTestHandlers(svc, &fakeDispatchService{}, store, &fakeTokenStore{})

	rec := doRequest(h, http.MethodPut, "/people/p-1", `{"name":"Ada Lovelace"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.updateCalls)

	var got personView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.WithinDuration(t, deadline, got.NextReminderAt, time.Second)
}

func TestUpdatePersonUnknownPersonIs404(t *testing.T) {
	h := newTestHandlers(&fakeOutreachService{}, &fakeDispatchService{}, &fakePersonStore{people: map[string]*person.Person{}}, &fakeTokenStore{})

	rec := doRequest(h, http.MethodPut, "/people/nope", `{"name":"Ada"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePersonValidationIs400(t *testing.T) {
	store := &fakePersonStore{people: map[string]*person.Person{
		"p-1": {ID: "p-1", UserID: "u-1", Name: "Ada", Frequency: reminder.FrequencyWeekly},
	}}
	svc := &fakeOutreachService{updateErr: app.ErrInvalidFrequency}
	h := newTestHandlers(svc, &fakeDispatchService{}, store, &fakeTokenStore{})

	rec := doRequest(h, http.MethodPut, "/people/p-1", `{"reminder_frequency":"hourly"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPersonIncludesOutreachHistory(t *testing.T) {
	store := &fakePersonStore{people: map[string]*person.Person{
		"p-1": {
			ID:             "p-1",
			UserID:         "u-1",
			Name:           "Ada",
			Frequency:      reminder.FrequencyWeekly,
			NextReminderAt: time.Now().AddDate(0, 0, 3),
		},
	}}
	ledger := &fakeOutreachStore{entries: []*outreach.Outreach{
		{ID: "o-2", PersonID: "p-1", ContactedAt: time.Now().AddDate(0, 0, -4)},
		{ID: "o-1", PersonID: "p-1", ContactedAt: time.Now().AddDate(0, 0, -11)},
		{ID: "o-9", PersonID: "other", ContactedAt: time.Now()},
	}}
	h := newTestHandlersWithLedger(&fakeOutreachService{}, &fakeDispatchService{}, store, ledger, &fakeTokenStore{})

	rec := doRequest(h, http.MethodGet, "/people/p-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got personView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.History, 2)
	assert.Equal(t, "o-2", got.History[0].ID)
	assert.Equal(t, "o-1", got.History[1].ID)
}

func TestGetPersonHistoryQueryFailureIs500(t *testing.T) {
	store := &fakePersonStore{people: map[string]*person.Person{
		"p-1": {ID: "p-1", UserID: "u-1", Name: "Ada", Frequency: reminder.FrequencyWeekly},
	}}
	ledger := &fakeOutreachStore{listErr: fmt.Errorf("connection reset")}
	h := newTestHandlersWithLedger(&fakeOutreachService{}, &fakeDispatchService{}, store, ledger, &fakeTokenStore{})

	rec := doRequest(h, http.MethodGet, "/people/p-1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSavePushTokenValidation(t *testing.T) {
	tokens := &fakeTokenStore{}
	h := newTestHandlers(&fakeOutreachService{}, &fakeDispatchService{}, &fakePersonStore{}, tokens)

	rec := doRequest(h, http.MethodPost, "/push-tokens", `{"user_id":"u-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(h, http.MethodPost, "/push-tokens", `{"user_id":"u-1","token":"ExponentPushToken[abc]"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "ExponentPushToken[abc]", tokens.saved["u-1"])
}

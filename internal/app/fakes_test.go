package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"forget_me_not/internal/domain/outreach"
	"forget_me_not/internal/domain/person"
	"forget_me_not/internal/domain/push"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type fakePersonRepo struct {
	people map[string]*person.Person
	due    []*person.Person

	createErr  error
	listDueErr error
	updateErr  error

	listDueCalls       int
	updateCalls        int
	updateNextCalls    int
	lastUpdatedID      string
	lastUpdatedNext    time.Time
	createdPeopleCount int
}

func newFakePersonRepo() *fakePersonRepo {
	return &fakePersonRepo{people: make(map[string]*person.Person)}
}

func (r *fakePersonRepo) Create(_ context.Context, p *person.Person) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.createdPeopleCount++
	if p.ID == "" {
		p.ID = fmt.Sprintf("person-%d", r.createdPeopleCount)
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.people[p.ID] = p
	return nil
}

func (r *fakePersonRepo) GetByID(_ context.Context, id string) (*person.Person, error) {
	p, ok := r.people[id]
	if !ok {
		return nil, fmt.Errorf("person not found")
	}
	return p, nil
}

func (r *fakePersonRepo) Update(_ context.Context, p *person.Person) error {
	r.updateCalls++
	r.people[p.ID] = p
	return nil
}

func (r *fakePersonRepo) UpdateNextReminder(_ context.Context, id string, next time.Time) error {
	r.updateNextCalls++
	if r.updateErr != nil {
		return r.updateErr
	}
	r.lastUpdatedID = id
	r.lastUpdatedNext = next
	if p, ok := r.people[id]; ok {
		p.NextReminderAt = next
	}
	return nil
}

func (r *fakePersonRepo) ListByUser(_ context.Context, _ string) ([]*person.Person, error) {
	return nil, nil
}

func (r *fakePersonRepo) ListDue(_ context.Context, _ time.Time) ([]*person.Person, error) {
	r.listDueCalls++
	if r.listDueErr != nil {
		return nil, r.listDueErr
	}
	return r.due, nil
}

func (r *fakePersonRepo) Delete(_ context.Context, id string) error {
	delete(r.people, id)
	return nil
}

type fakeOutreachRepo struct {
	createErr error
	entries   []*outreach.Outreach
}

func (r *fakeOutreachRepo) Create(_ context.Context, o *outreach.Outreach) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.entries = append(r.entries, o)
	return nil
}

func (r *fakeOutreachRepo) ListByPerson(_ context.Context, _ string) ([]*outreach.Outreach, error) {
	return r.entries, nil
}

type fakeTokenRepo struct {
	tokensByUser map[string][]string
	listErr      error
	listCalls    int
}

func (r *fakeTokenRepo) Save(_ context.Context, _, _ string) error { return nil }

func (r *fakeTokenRepo) ListByUsers(_ context.Context, userIDs []string) ([]*push.Token, error) {
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*push.Token
	for _, id := range userIDs {
		for _, tok := range r.tokensByUser[id] {
			out = append(out, &push.Token{UserID: id, Token: tok})
		}
	}
	return out, nil
}

func (r *fakeTokenRepo) DeleteByUserAndToken(_ context.Context, _, _ string) error { return nil }

type fakePushClient struct {
	sent []push.Notification
	// rejectTokens come back as delivered-but-rejected (non-2xx), errTokens as
	// transport failures.
	rejectTokens map[string]bool
	errTokens    map[string]bool
}

func (c *fakePushClient) Send(_ context.Context, n push.Notification) (*push.SendResult, error) {
	c.sent = append(c.sent, n)
	if c.errTokens[n.To] {
		return nil, fmt.Errorf("connection refused")
	}
	if c.rejectTokens[n.To] {
		return &push.SendResult{StatusCode: 400, Body: `{"errors":[{"code":"DeviceNotRegistered"}]}`}, nil
	}
	return &push.SendResult{StatusCode: 200, Body: `{"data":{"status":"ok"}}`}, nil
}

// internal/app/dispatch_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"forget_me_not/internal/domain/person"
	"forget_me_not/internal/domain/push"

	"github.com/sirupsen/logrus"
)

// maxDiagnosticBody caps how much of a transport response body lands in the log.
const maxDiagnosticBody = 200

// DispatchSummary is the outcome of one dispatch run. Only sent, dueCount and
// log travel on the wire; the remaining counts exist for callers and tests.
type DispatchSummary struct {
	Sent         int      `json:"sent"`
	DueCount     int      `json:"dueCount"`
	Log          []string `json:"log,omitempty"`
	Destinations int      `json:"-"`
	Attempted    int      `json:"-"`
}

// DispatchService runs the batch job that notifies owners of due people.
type DispatchService interface {
	// Run selects everyone whose deadline has passed, fans out one push per
	// registered destination of each owner, and reports the aggregate. It
	// returns a non-nil error only when the initial due query fails; every
	// per-send failure degrades into the summary log instead. The run never
	// moves a deadline: notifications are a nag, not a state transition, so
	// the same people stay due until their owner acts.
	Run(ctx context.Context) (*DispatchSummary, error)
}

// DispatchServiceImpl implements DispatchService.
type DispatchServiceImpl struct {
	personRepo person.Repository
	tokenRepo  push.Repository
	pushClient push.Client
	appName    string
	logger     *logrus.Entry
}

func NewDispatchService(
	pr person.Repository,
	tr push.Repository,
	pc push.Client,
	appName string,
	logger *logrus.Entry,
) *DispatchServiceImpl {
	return &DispatchServiceImpl{
		personRepo: pr,
		tokenRepo:  tr,
		pushClient: pc,
		appName:    appName,
		logger:     logger,
	}
}

func (s *DispatchServiceImpl) Run(ctx context.Context) (*DispatchSummary, error) {
	now := time.Now()
	summary := &DispatchSummary{
		Log: []string{fmt.Sprintf("running at %s", now.Format(time.RFC3339))},
	}

	duePeople, err := s.personRepo.ListDue(ctx, now)
	if err != nil {
		s.logger.WithError(err).Error("Due-person query failed; aborting dispatch run")
		return nil, fmt.Errorf("failed to query due people: %w", err)
	}
	summary.DueCount = len(duePeople)
	summary.Log = append(summary.Log, fmt.Sprintf("found %d people due", len(duePeople)))

	if len(duePeople) == 0 {
		s.logger.Info("Dispatch run complete: nothing due")
		return summary, nil
	}

	userIDs := distinctOwners(duePeople)
	tokens, err := s.tokenRepo.ListByUsers(ctx, userIDs)
	if err != nil {
		// Per-run degradation: the due query succeeded, so the run still
		// completes and reports zero attempted sends.
		s.logger.WithError(err).Error("Push token query failed; completing run without sends")
		summary.Log = append(summary.Log, fmt.Sprintf("push token query error: %v", err))
		return summary, nil
	}
	tokensByUser := make(map[string][]string, len(userIDs))
	for _, t := range tokens {
		tokensByUser[t.UserID] = append(tokensByUser[t.UserID], t.Token)
	}
	summary.Destinations = len(tokens)
	summary.Log = append(summary.Log, fmt.Sprintf("found %d push token(s) for %d user(s)", len(tokens), len(userIDs)))

	for _, p := range duePeople {
		for _, token := range tokensByUser[p.UserID] {
			summary.Attempted++
			res, err := s.pushClient.Send(ctx, push.Notification{
				To:    token,
				Title: s.appName,
				Body:  fmt.Sprintf("Time to check in with %s", p.Name),
				Data:  map[string]string{"person_id": p.ID},
				Sound: "default",
			})
			if err != nil {
				summary.Log = append(summary.Log, fmt.Sprintf("push send error: %v", err))
				continue
			}
			if res.OK() {
				summary.Sent++
			} else {
				summary.Log = append(summary.Log, fmt.Sprintf("push failed %d: %s", res.StatusCode, truncate(res.Body, maxDiagnosticBody)))
			}
		}
	}

	summary.Log = append(summary.Log, fmt.Sprintf("sent %d notification(s)", summary.Sent))
	s.logger.WithFields(logrus.Fields{
		"due":          summary.DueCount,
		"destinations": summary.Destinations,
		"attempted":    summary.Attempted,
		"sent":         summary.Sent,
	}).Info("Dispatch run complete")
	return summary, nil
}

// distinctOwners returns the owner ids of the given people, first occurrence order.
func distinctOwners(people []*person.Person) []string {
	seen := make(map[string]struct{}, len(people))
	ids := make([]string, 0, len(people))
	for _, p := range people {
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		ids = append(ids, p.UserID)
	}
	return ids
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

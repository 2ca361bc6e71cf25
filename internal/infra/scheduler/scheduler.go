package scheduler

import (
	"context"
	"time"

	"forget_me_not/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// dispatchTimeout bounds one dispatch run; sends are sequential, so a large
// due backlog needs room.
const dispatchTimeout = 5 * time.Minute

// DispatchScheduler triggers the reminder dispatch job on a fixed cron
// schedule. Overlapping runs are not guarded against: a manual trigger during
// a scheduled run may duplicate notifications, which is accepted.
type DispatchScheduler struct {
	cronEngine       *cron.Cron
	dispatchService  app.DispatchService
	logger           *logrus.Entry
	cronSpecDispatch string
}

func NewDispatchScheduler(
	dispatchService app.DispatchService,
	logger *logrus.Entry,
	cronSpecDispatch string, // e.g. "0 9 * * *" (9:00 AM daily)
) *DispatchScheduler {
	return &DispatchScheduler{
		cronEngine:       cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		dispatchService:  dispatchService,
		logger:           logger,
		cronSpecDispatch: cronSpecDispatch,
	}
}

func (s *DispatchScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpecDispatch, func() {
		s.logger.Info("Cron job triggered for reminder dispatch")
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		summary, err := s.dispatchService.Run(ctx)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled dispatch run failed")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"due":  summary.DueCount,
			"sent": summary.Sent,
		}).Info("Scheduled dispatch run finished")
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpecDispatch).Info("Dispatch scheduler started")
	return nil
}

func (s *DispatchScheduler) Stop() {
	s.logger.Info("Stopping dispatch scheduler...")
	ctx := s.cronEngine.Stop() // Stops new triggers, waits for a running job.
	<-ctx.Done()
	s.logger.Info("Dispatch scheduler gracefully stopped")
}

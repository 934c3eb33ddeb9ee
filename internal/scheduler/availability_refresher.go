package scheduler

import (
	"context"
	"fmt"

	"github.com/lwhx/OVH/internal/logging"
	"github.com/robfig/cron/v3"
)

// Refresher is the periodic job run by the AvailabilityRefresher.
type Refresher interface {
	RefreshAvailability(ctx context.Context) int
}

// AvailabilityRefresher re-checks catalog stock on a cron schedule.
// Overlapping runs are skipped.
type AvailabilityRefresher struct {
	cron      *cron.Cron
	spec      string
	refresher Refresher
	logger    *logging.Logger
}

func NewAvailabilityRefresher(spec string, refresher Refresher, logger *logging.Logger) *AvailabilityRefresher {
	return &AvailabilityRefresher{
		cron:      cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		spec:      spec,
		refresher: refresher,
		logger:    logger,
	}
}

// Start schedules the job and blocks until ctx is cancelled and the running
// job, if any, has returned.
func (a *AvailabilityRefresher) Start(ctx context.Context) error {
	log := a.logger.Source("catalog")
	if _, err := a.cron.AddFunc(a.spec, func() { a.refresher.RefreshAvailability(ctx) }); err != nil {
		return fmt.Errorf("schedule availability refresh %q: %w", a.spec, err)
	}
	a.cron.Start()
	log.WithField("schedule", a.spec).Info("availability refresher started")

	<-ctx.Done()
	<-a.cron.Stop().Done()
	log.Info("availability refresher stopped")
	return nil
}

// Package jobs runs the periodic background work: refreshing git card
// sources and reloading the catalog.
package jobs

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// SourceSync periodically re-syncs content sources.
type SourceSync struct {
	scheduler *gocron.Scheduler
	interval  time.Duration
	resync    func() error
}

// NewSourceSync creates the sync job. resync does the actual work (git
// refresh + catalog reload + swap); the job only owns the cadence.
func NewSourceSync(interval time.Duration, resync func() error) *SourceSync {
	return &SourceSync{
		scheduler: gocron.NewScheduler(time.UTC),
		interval:  interval,
		resync:    resync,
	}
}

// Start begins running the sync on its interval, in the background.
func (s *SourceSync) Start() {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		if err := s.resync(); err != nil {
			slog.Error("periodic source sync failed", "error", err)
		}
	})
	if err != nil {
		slog.Error("failed to schedule source sync", "error", err)
		return
	}
	s.scheduler.StartAsync()
}

// Stop terminates the scheduled job.
func (s *SourceSync) Stop() {
	s.scheduler.Stop()
}

package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	domain "github.com/mhollis/stocksync/pkg/types"
)

// Cadences holds the cron specs for the periodic tasks. Snapshot
// cadences use standard five-field cron syntax; the sync runs on a
// fixed interval.
type Cadences struct {
	SyncInterval    time.Duration
	DailySnapshot   string
	WeeklySnapshot  string
	MonthlySnapshot string
	Retention       string
}

// Scheduler manages the periodic sync, snapshot, and retention tasks.
type Scheduler struct {
	cron   *cron.Cron
	engine *Engine
	log    *slog.Logger
}

// NewScheduler creates a new Scheduler that runs engine tasks on the
// given cadences.
func NewScheduler(eng *Engine, cadences Cadences, log *slog.Logger) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:   c,
		engine: eng,
		log:    log,
	}

	if _, err := c.AddFunc("@every "+cadences.SyncInterval.String(), s.runSync); err != nil {
		return nil, err
	}

	snapshots := []struct {
		spec     string
		snapType domain.SnapshotType
	}{
		{cadences.DailySnapshot, domain.SnapshotDaily},
		{cadences.WeeklySnapshot, domain.SnapshotWeekly},
		{cadences.MonthlySnapshot, domain.SnapshotMonthly},
	}
	for _, snap := range snapshots {
		snapType := snap.snapType
		if _, err := c.AddFunc(snap.spec, func() { s.runSnapshot(snapType) }); err != nil {
			return nil, err
		}
	}

	retention := cadences.Retention
	if retention == "" {
		retention = "0 5 * * *"
	}
	if _, err := c.AddFunc(retention, s.runRetention); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runSync() {
	s.log.Info("scheduled sync starting")
	if _, err := s.engine.RunSync(context.Background()); err != nil {
		s.log.Error("scheduled sync failed", "error", err)
	}
}

func (s *Scheduler) runSnapshot(snapType domain.SnapshotType) {
	s.log.Info("scheduled snapshot starting", "type", snapType)
	if _, err := s.engine.RunSnapshot(context.Background(), snapType); err != nil {
		s.log.Error("scheduled snapshot failed", "type", snapType, "error", err)
	}
}

func (s *Scheduler) runRetention() {
	s.log.Info("scheduled retention prune starting")
	if _, err := s.engine.RunRetention(context.Background()); err != nil {
		s.log.Error("scheduled retention prune failed", "error", err)
	}
}

// Package scheduler runs the periodic portfolio jobs: market data refresh,
// aggregate recalculation and saving the snapshot.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/service"
)

// Jobs is the part of the portfolio service the scheduler drives.
type Jobs interface {
	RefreshMarketData(ctx context.Context) (service.RefreshResult, error)
	RecalculateAggregates() error
	Save(ctx context.Context) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron    *cron.Cron
	Jobs    Jobs
	Ctx     context.Context
	Timeout time.Duration

	refresh bool
	save    bool
}

// NewScheduler creates a new Scheduler. Each run is bounded by timeout.
func NewScheduler(ctx context.Context, jobs Jobs, timeout time.Duration) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Jobs:    jobs,
		Ctx:     ctx,
		Timeout: timeout,
	}
}

// RegisterAll registers the daily portfolio task on spec, a six-field cron
// expression. refresh enables the market data step and save the final save.
func (s *Scheduler) RegisterAll(spec string, refresh, save bool) error {
	s.refresh = refresh
	s.save = save
	if _, err := s.Cron.AddFunc(spec, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[scheduler] started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[scheduler] stopped")
}

// RunNow executes the daily task immediately.
func (s *Scheduler) RunNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	log.Println("[scheduler] running daily task")
	ctx := s.Ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	if s.refresh {
		result, err := s.Jobs.RefreshMarketData(ctx)
		if err != nil {
			log.Printf("[scheduler] market data refresh: %v", err)
		} else {
			log.Printf("[scheduler] refreshed %d symbols, %d failed", len(result.Updated), len(result.Failed))
		}
	}

	if err := s.Jobs.RecalculateAggregates(); err != nil {
		log.Printf("[scheduler] recalculate aggregates: %v", err)
	}

	if s.save {
		if err := s.Jobs.Save(ctx); err != nil {
			log.Printf("[scheduler] save: %v", err)
		}
	}
}

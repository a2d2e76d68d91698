// Package scheduler wires up the cron job that periodically re-runs the
// full ETL pipeline.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"jobdata/pipeline-service/internal/pipeline"
)

// Scheduler wraps robfig/cron and manages the pipeline run loop.
type Scheduler struct {
	cron     *cron.Cron
	pipeline *pipeline.Pipeline
	spec     string // cron spec, e.g. "@every 24h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(p *pipeline.Pipeline, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cron.DefaultLogger)),
		pipeline: p,
		spec:     fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also kicks off one run
// immediately so the warehouse is populated without waiting for the first
// tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runPipeline(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runPipeline(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

func (s *Scheduler) runPipeline(ctx context.Context) {
	log.Println("[scheduler] Pipeline run started")
	if err := s.pipeline.Run(ctx); err != nil {
		log.Printf("[scheduler] Pipeline run failed: %v", err)
		return
	}
	log.Println("[scheduler] Pipeline run complete")
}

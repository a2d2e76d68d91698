// Package pipeline sequences the two phases of the ETL run: CSV → staging
// ingestion, then the staging → 3NF transformation.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"jobdata/pipeline-service/internal/config"
	"jobdata/pipeline-service/internal/events"
	"jobdata/pipeline-service/internal/ingest"
	"jobdata/pipeline-service/internal/transform"
	"jobdata/pipeline-service/internal/validate"
)

// Pipeline runs the full ETL for one CSV snapshot.
type Pipeline struct {
	pool        *pgxpool.Pool
	cfg         *config.Config
	transformer *transform.Transformer
	lock        *events.RunLock
}

// New returns a Pipeline.
func New(pool *pgxpool.Pool, cfg *config.Config, transformer *transform.Transformer, lock *events.RunLock) *Pipeline {
	return &Pipeline{pool: pool, cfg: cfg, transformer: transformer, lock: lock}
}

// Run executes ingestion (unless OnlyTransformation) followed by the
// transformation. Overlapping runs are skipped via the run lock so a cron
// tick firing mid-run cannot race the purge step.
func (p *Pipeline) Run(ctx context.Context) error {
	ok, err := p.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	if !ok {
		log.Println("[pipeline] Another run is in progress — skipping")
		return nil
	}
	defer p.lock.Release(ctx)

	if p.cfg.OnlyTransformation {
		log.Println("[pipeline] ONLY_TRANSFORMATION set — skipping ingestion phase")
	} else {
		log.Println("[pipeline] ── Phase 1: ingestion ──")
		if err := p.runIngestion(ctx); err != nil {
			return fmt.Errorf("ingestion phase: %w", err)
		}
	}

	log.Println("[pipeline] ── Phase 2: transformation (3NF) ──")
	if err := p.transformer.Run(ctx); err != nil {
		return fmt.Errorf("transformation phase: %w", err)
	}

	log.Println("[pipeline] Pipeline completed successfully")
	return nil
}

// runIngestion reads and validates the CSV, then replaces the staging
// snapshot with its rows.
func (p *Pipeline) runIngestion(ctx context.Context) error {
	rows, err := ingest.ReadCSV(p.cfg.CSVPath)
	if err != nil {
		return err
	}

	if err := validate.CheckRows(rows); err != nil {
		return err
	}
	validate.LogProfile(rows)

	if err := ingest.ClearStaging(ctx, p.pool); err != nil {
		return err
	}
	return ingest.LoadStaging(ctx, p.pool, rows, p.cfg.BatchSize)
}

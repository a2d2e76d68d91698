// Package transform normalizes the flat staging_jobs table into a 3NF
// star schema: four dimension tables derived from free-text staging
// columns, a skill taxonomy, a jobs fact table and a job↔skill bridge.
//
// Every insert is idempotent (natural-key ON CONFLICT DO NOTHING), the two
// large stages run in fixed-size batches over a stable ordering, and a run
// always starts by purging previous results, so re-running against the same
// staging snapshot is safe and deterministic.
package transform

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"jobdata/pipeline-service/internal/events"
)

// purgeOrder lists the destination tables children-first so the purge never
// violates a foreign key. staging_jobs is deliberately absent: the staging
// snapshot is the immutable input of a run.
var purgeOrder = []string{
	"job_skills",
	"jobs",
	"skills",
	"skill_categories",
	"companies",
	"locations",
	"platforms",
	"schedule_types",
}

// Transformer owns one staging-to-3NF transformation run.
type Transformer struct {
	pool      *pgxpool.Pool
	events    *events.Publisher
	batchSize int
	stage     Stage
}

// New returns a Transformer. pub may be a nil-client publisher; batchSize
// bounds the rows per fact-populator transaction.
func New(pool *pgxpool.Pool, pub *events.Publisher, batchSize int) *Transformer {
	return &Transformer{pool: pool, events: pub, batchSize: batchSize, stage: StageIdle}
}

// Stage reports the stage the last (or current) run has reached.
func (t *Transformer) Stage() Stage { return t.stage }

// Run executes the full transformation: purge, dimensions, skill taxonomy,
// facts, bridge. Each stage commits before the next begins; the first error
// aborts the remaining stages and is returned with the failing operation
// wrapped in.
func (t *Transformer) Run(ctx context.Context) error {
	t.stage = StageIdle
	log.Println("[transform] Starting staging → 3NF transformation")

	if err := t.step(ctx, StagePurged, t.purge); err != nil {
		return err
	}
	if err := t.step(ctx, StageDimensions, t.populateDimensions); err != nil {
		return err
	}
	if err := t.step(ctx, StageFacts, t.populateJobs); err != nil {
		return err
	}
	if err := t.step(ctx, StageBridge, t.populateJobSkills); err != nil {
		return err
	}

	t.advance(ctx, StageComplete)
	t.events.RunComplete(ctx)
	log.Println("[transform] Transformation completed successfully")
	return nil
}

// step runs fn and, on success, advances to the given stage.
func (t *Transformer) step(ctx context.Context, to Stage, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		err = fmt.Errorf("stage %s: %w", to, err)
		t.events.RunFailed(ctx, string(to), err)
		return err
	}
	t.advance(ctx, to)
	return nil
}

func (t *Transformer) advance(ctx context.Context, to Stage) {
	if !IsTransitionAllowed(t.stage, to) {
		// Run() drives stages in order, so this is a programming error.
		panic(fmt.Sprintf("illegal stage transition %s → %s", t.stage, to))
	}
	t.stage = to
	t.events.StageAdvanced(ctx, string(to))
}

// purge deletes all previous transformation output, children before
// parents, in a single transaction.
func (t *Transformer) purge(ctx context.Context) error {
	log.Println("[transform] Purging previous run output")

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin purge: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range purgeOrder {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit purge: %w", err)
	}

	log.Println("[transform] Purge complete")
	return nil
}

// populateDimensions runs the five order-insensitive dimension populators.
func (t *Transformer) populateDimensions(ctx context.Context) error {
	if err := t.populateCompanies(ctx); err != nil {
		return fmt.Errorf("populate companies: %w", err)
	}
	if err := t.populateLocations(ctx); err != nil {
		return fmt.Errorf("populate locations: %w", err)
	}
	if err := t.populatePlatforms(ctx); err != nil {
		return fmt.Errorf("populate platforms: %w", err)
	}
	if err := t.populateScheduleTypes(ctx); err != nil {
		return fmt.Errorf("populate schedule types: %w", err)
	}
	if err := t.populateSkills(ctx); err != nil {
		return fmt.Errorf("populate skills: %w", err)
	}
	return nil
}

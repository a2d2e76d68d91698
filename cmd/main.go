// jobdata-pipeline-service
//
// ETL pipeline for the job-postings dataset:
//   - Phase 1: CSV → staging_jobs (bulk copy, semi-structured column parsing)
//   - Phase 2: staging → 3NF star schema (dimensions, skill taxonomy,
//     jobs fact table, job↔skill bridge)
//
// Runs once and exits by default; with PIPELINE_INTERVAL_HOURS set it keeps
// running on a cron schedule and serves a /health probe. Progress events go
// to Redis pub/sub when REDIS_URL is configured.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"jobdata/pipeline-service/internal/config"
	"jobdata/pipeline-service/internal/db"
	"jobdata/pipeline-service/internal/events"
	"jobdata/pipeline-service/internal/pipeline"
	"jobdata/pipeline-service/internal/scheduler"
	"jobdata/pipeline-service/internal/transform"
)

const version = "1.0.0"

// lockTTL caps how long a crashed run can hold the Redis run lock.
const lockTTL = 6 * time.Hour

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[pipeline-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[pipeline-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[pipeline-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[pipeline-service] PostgreSQL connected ✓")

	log.Println("[pipeline-service] Applying schema…")
	if err := db.ApplySchema(ctx, pool); err != nil {
		log.Fatalf("[pipeline-service] Schema: %v", err)
	}

	// ── Redis (optional) ─────────────────────────────────────────────────────
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		log.Println("[pipeline-service] Connecting to Redis…")
		rdb, err = db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("[pipeline-service] Redis: %v", err)
		}
		defer rdb.Close()
		log.Println("[pipeline-service] Redis connected ✓")
	} else {
		log.Println("[pipeline-service] REDIS_URL not set — progress events and run lock disabled")
	}

	// ── Pipeline ─────────────────────────────────────────────────────────────
	publisher := events.NewPublisher(rdb)
	lock := events.NewRunLock(rdb, lockTTL)
	transformer := transform.New(pool, publisher, cfg.BatchSize)
	pipe := pipeline.New(pool, cfg, transformer, lock)

	if cfg.IntervalHours == 0 {
		// One-shot mode: run and exit with the run's status.
		if err := pipe.Run(ctx); err != nil {
			log.Fatalf("[pipeline-service] Pipeline failed: %v", err)
		}
		log.Println("[pipeline-service] Done.")
		return
	}

	// ── Scheduled mode ───────────────────────────────────────────────────────
	sched := scheduler.New(pipe, cfg.IntervalHours)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[pipeline-service] Scheduler: %v", err)
	}
	defer sched.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[pipeline-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[pipeline-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[pipeline-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[pipeline-service] Shutdown error: %v", err)
	}
	log.Println("[pipeline-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "pipeline-service",
		"version": version,
	})
}

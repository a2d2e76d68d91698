// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the pipeline service.
type Config struct {
	Port               string
	DatabaseURL        string
	RedisURL           string // optional — progress events and run lock disabled when empty
	CSVPath            string
	BatchSize          int  // staging rows per fact-populator transaction
	IntervalHours      int  // 0 = run once and exit; >0 = cron-scheduled re-runs
	OnlyTransformation bool // skip ingestion, run phase 2 against existing staging data
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	csvPath := os.Getenv("CSV_PATH")
	if csvPath == "" {
		csvPath = "data/data_jobs.csv"
	}

	batchSize := 10000
	if s := os.Getenv("BATCH_SIZE"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("BATCH_SIZE must be a positive integer, got %q", s)
		}
		batchSize = v
	}

	interval := 0
	if s := os.Getenv("PIPELINE_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("PIPELINE_INTERVAL_HOURS must be a non-negative integer, got %q", s)
		}
		interval = v
	}

	port := os.Getenv("PIPELINE_PORT")
	if port == "" {
		port = "8083"
	}

	return &Config{
		Port:               port,
		DatabaseURL:        dbURL,
		RedisURL:           os.Getenv("REDIS_URL"),
		CSVPath:            csvPath,
		BatchSize:          batchSize,
		IntervalHours:      interval,
		OnlyTransformation: os.Getenv("ONLY_TRANSFORMATION") == "true",
	}, nil
}

package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobdata/pipeline-service/internal/model"
)

// stagingColumns is the CopyFrom column list; order must match copyRow.
var stagingColumns = []string{
	"job_title_short", "job_title", "job_location", "job_via",
	"job_schedule_type", "job_work_from_home", "search_location",
	"job_posted_date", "job_no_degree_mention", "job_health_insurance",
	"job_country", "salary_rate", "salary_year_avg", "salary_hour_avg",
	"company_name", "job_skills", "job_type_skills",
}

// ClearStaging empties staging_jobs before a fresh ingestion, cascading to
// the fact rows that reference it. The transform itself never deletes
// staging rows; only a new ingestion replaces the snapshot.
func ClearStaging(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `TRUNCATE staging_jobs RESTART IDENTITY CASCADE`); err != nil {
		return fmt.Errorf("truncate staging_jobs: %w", err)
	}
	return nil
}

// LoadStaging bulk-loads rows into staging_jobs using the binary copy
// protocol, batchSize rows per round trip, logging progress per batch.
func LoadStaging(ctx context.Context, pool *pgxpool.Pool, rows []model.StagingJob, batchSize int) error {
	total := len(rows)
	loaded := 0
	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		chunk := rows[start:end]

		n, err := pool.CopyFrom(ctx,
			pgx.Identifier{"staging_jobs"},
			stagingColumns,
			pgx.CopyFromSlice(len(chunk), func(i int) ([]any, error) {
				return copyRow(chunk[i])
			}),
		)
		if err != nil {
			return fmt.Errorf("copy into staging_jobs: %w", err)
		}

		loaded += int(n)
		log.Printf("[ingest] Staged %d/%d rows", loaded, total)
	}
	return nil
}

func copyRow(r model.StagingJob) ([]any, error) {
	var typedSkills any
	if r.JobTypeSkills != nil {
		b, err := json.Marshal(r.JobTypeSkills)
		if err != nil {
			return nil, fmt.Errorf("marshal job_type_skills: %w", err)
		}
		typedSkills = string(b)
	}

	var skills any
	if r.JobSkills != nil {
		skills = r.JobSkills
	}

	return []any{
		r.JobTitleShort, r.JobTitle, r.JobLocation, r.JobVia,
		r.JobScheduleType, r.JobWorkFromHome, r.SearchLocation,
		r.JobPostedDate, r.JobNoDegreeMention, r.JobHealthInsurance,
		r.JobCountry, r.SalaryRate, r.SalaryYearAvg, r.SalaryHourAvg,
		r.CompanyName, skills, typedSkills,
	}, nil
}

package transform

import (
	"context"
	"fmt"
	"log"
)

// A staging row with neither a title nor a short title carries no usable
// identity and is excluded from the fact table entirely. The same predicate
// drives the up-front count so batch windows tile exactly over the result.
const jobExclusionPredicate = `NOT (s.job_title IS NULL AND s.job_title_short IS NULL)`

const countJobsSQL = `
	SELECT COUNT(*)
	FROM staging_jobs s
	WHERE ` + jobExclusionPredicate

// insertJobsSQL resolves every dimension by LEFT JOIN on its natural key:
// an unmatched dimension leaves the foreign key NULL, it never drops the
// row. staging_id is carried onto the fact row so the bridge populator can
// join back without attribute-equality guesswork. The stable ORDER BY s.id
// plus LIMIT/OFFSET windows guarantee each staging row lands in exactly one
// batch.
const insertJobsSQL = `
	INSERT INTO jobs (
		staging_id,
		job_title,
		job_title_short,
		company_id,
		location_id,
		platform_id,
		schedule_type_id,
		job_work_from_home,
		job_posted_date,
		job_no_degree_mention,
		job_health_insurance,
		salary_rate,
		salary_year_avg,
		salary_hour_avg,
		search_location
	)
	SELECT
		s.id,
		COALESCE(s.job_title, s.job_title_short),
		s.job_title_short,
		c.company_id,
		l.location_id,
		p.platform_id,
		st.schedule_type_id,
		s.job_work_from_home,
		s.job_posted_date,
		s.job_no_degree_mention,
		s.job_health_insurance,
		s.salary_rate,
		s.salary_year_avg,
		s.salary_hour_avg,
		s.search_location
	FROM staging_jobs s
	LEFT JOIN companies c
		ON c.company_name = COALESCE(NULLIF(TRIM(s.company_name), ''), 'Unknown')
	LEFT JOIN locations l
		ON l.country = COALESCE(s.job_country, 'Unknown')
		AND l.full_location = COALESCE(s.job_location, 'Unknown')
	LEFT JOIN platforms p
		ON p.platform_name = TRIM(REGEXP_REPLACE(s.job_via, '` + platformPrefixPattern + `', '', 'i'))
	LEFT JOIN schedule_types st
		ON st.schedule_type_name = TRIM(s.job_schedule_type)
	WHERE ` + jobExclusionPredicate + `
	ORDER BY s.id
	LIMIT $1 OFFSET $2`

const countJobSkillsSQL = `
	SELECT COUNT(*)
	FROM jobs j
	JOIN staging_jobs stg ON stg.id = j.staging_id
	CROSS JOIN LATERAL UNNEST(stg.job_skills) AS s(skill)
	JOIN skills sk ON sk.skill_name = LOWER(TRIM(s.skill))`

// insertJobSkillsSQL unnests each job's flat skill list and matches skill
// rows by lowercase-trimmed name. The (job_id, skill_id) primary key plus
// DO NOTHING dedups repeated skills within a posting and across batch
// overlaps alike.
const insertJobSkillsSQL = `
	INSERT INTO job_skills (job_id, skill_id)
	SELECT j.job_id, sk.skill_id
	FROM jobs j
	JOIN staging_jobs stg ON stg.id = j.staging_id
	CROSS JOIN LATERAL UNNEST(stg.job_skills) AS s(skill)
	JOIN skills sk ON sk.skill_name = LOWER(TRIM(s.skill))
	ORDER BY j.job_id, sk.skill_id
	LIMIT $1 OFFSET $2
	ON CONFLICT (job_id, skill_id) DO NOTHING`

// populateJobs fills the fact table in batchSize windows, one transaction
// per window.
func (t *Transformer) populateJobs(ctx context.Context) error {
	log.Println("[transform] Populating jobs fact table")
	return t.runBatched(ctx, "jobs", countJobsSQL, insertJobsSQL, t.batchSize)
}

// populateJobSkills fills the bridge table. Bridge rows are cheap, so the
// window is ten fact batches wide.
func (t *Transformer) populateJobSkills(ctx context.Context) error {
	log.Println("[transform] Populating job_skills bridge table")
	return t.runBatched(ctx, "job_skills", countJobSkillsSQL, insertJobSkillsSQL, t.batchSize*10)
}

// runBatched binds the count and insert statements to the pool and hands
// them to the tiling loop. Each window commits on its own; progress is
// logged and published per batch.
func (t *Transformer) runBatched(ctx context.Context, name, countSQL, insertSQL string, window int) error {
	count := func(ctx context.Context) (int64, error) {
		var total int64
		if err := t.pool.QueryRow(ctx, countSQL).Scan(&total); err != nil {
			return 0, fmt.Errorf("count %s rows: %w", name, err)
		}
		return total, nil
	}
	insert := func(ctx context.Context, limit, offset int64) (int64, error) {
		tag, err := t.pool.Exec(ctx, insertSQL, limit, offset)
		if err != nil {
			return 0, fmt.Errorf("insert %s batch at offset %d: %w", name, offset, err)
		}
		return tag.RowsAffected(), nil
	}
	progress := func(processed, total int64) {
		t.events.BatchProgress(ctx, name, processed, total)
	}
	return runWindows(ctx, name, int64(window), count, insert, progress)
}

// runWindows computes the total row count once, then walks the half-open
// windows [0,w), [w,2w), … in strictly increasing offset order until every
// counted row is covered. A zero count short-circuits without any insert.
func runWindows(
	ctx context.Context,
	name string,
	window int64,
	count func(context.Context) (int64, error),
	insert func(ctx context.Context, limit, offset int64) (int64, error),
	progress func(processed, total int64),
) error {
	total, err := count(ctx)
	if err != nil {
		return err
	}
	if total == 0 {
		log.Printf("[transform] %s: nothing to insert", name)
		return nil
	}

	var processed int64
	for offset := int64(0); offset < total; offset += window {
		n, err := insert(ctx, window, offset)
		if err != nil {
			return err
		}
		processed += n

		log.Printf("[transform] %s: %d/%d rows", name, processed, total)
		progress(processed, total)
	}
	return nil
}

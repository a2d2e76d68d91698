package transform

import (
	"context"
	"fmt"
	"log"
)

// platformPrefixPattern strips the localized "via "/"melalui " prefix that
// the dataset prepends to platform names, case-insensitively.
const platformPrefixPattern = `^(via|melalui)\s+`

// Set-based populators push the whole distinct-and-dedup operation down to
// the database. Insert-if-absent on the natural key is the idempotence
// mechanism: a re-run against the same staging snapshot inserts nothing.
const (
	insertCompaniesSQL = `
		INSERT INTO companies (company_name)
		SELECT DISTINCT COALESCE(NULLIF(TRIM(company_name), ''), 'Unknown')
		FROM staging_jobs
		ON CONFLICT (company_name) DO NOTHING`

	insertPlatformsSQL = `
		INSERT INTO platforms (platform_name)
		SELECT DISTINCT TRIM(REGEXP_REPLACE(job_via, '` + platformPrefixPattern + `', '', 'i'))
		FROM staging_jobs
		WHERE job_via IS NOT NULL
		  AND TRIM(job_via) <> ''
		ON CONFLICT (platform_name) DO NOTHING`

	insertScheduleTypesSQL = `
		INSERT INTO schedule_types (schedule_type_name)
		SELECT DISTINCT TRIM(job_schedule_type)
		FROM staging_jobs
		WHERE job_schedule_type IS NOT NULL
		  AND TRIM(job_schedule_type) <> ''
		ON CONFLICT (schedule_type_name) DO NOTHING`
)

// Locations cannot be pushed down: the comma-split parsing is host-side, so
// the populator walks the distinct (location, country) pairs one by one.
const (
	selectLocationPairsSQL = `
		SELECT DISTINCT job_location, job_country
		FROM staging_jobs`

	insertLocationSQL = `
		INSERT INTO locations (main_city, main_state_province, country, full_location)
		VALUES ($1, $2, COALESCE($3, 'Unknown'), COALESCE($4, 'Unknown'))
		ON CONFLICT (main_city, main_state_province, country, full_location) DO NOTHING`
)

func (t *Transformer) populateCompanies(ctx context.Context) error {
	log.Println("[transform] Populating companies")
	tag, err := t.pool.Exec(ctx, insertCompaniesSQL)
	if err != nil {
		return err
	}
	log.Printf("[transform] Inserted %d companies", tag.RowsAffected())
	return nil
}

func (t *Transformer) populatePlatforms(ctx context.Context) error {
	log.Println("[transform] Populating platforms")
	tag, err := t.pool.Exec(ctx, insertPlatformsSQL)
	if err != nil {
		return err
	}
	log.Printf("[transform] Inserted %d platforms", tag.RowsAffected())
	return nil
}

func (t *Transformer) populateScheduleTypes(ctx context.Context) error {
	log.Println("[transform] Populating schedule types")
	tag, err := t.pool.Exec(ctx, insertScheduleTypesSQL)
	if err != nil {
		return err
	}
	log.Printf("[transform] Inserted %d schedule types", tag.RowsAffected())
	return nil
}

// populateLocations fetches the distinct (location, country) pairs, parses
// each raw string host-side and issues per-pair insert-if-absent statements
// within one transaction.
func (t *Transformer) populateLocations(ctx context.Context) error {
	log.Println("[transform] Populating locations")

	rows, err := t.pool.Query(ctx, selectLocationPairsSQL)
	if err != nil {
		return fmt.Errorf("select location pairs: %w", err)
	}

	type pair struct {
		location *string
		country  *string
	}
	var pairs []pair
	for rows.Next() {
		var p pair
		if err := rows.Scan(&p.location, &p.country); err != nil {
			rows.Close()
			return fmt.Errorf("scan location pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate location pairs: %w", err)
	}

	log.Printf("[transform] Processing %d unique locations", len(pairs))

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin locations tx: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted := int64(0)
	for _, p := range pairs {
		components := ExtractLocationComponents(p.location, p.country)
		tag, err := tx.Exec(ctx, insertLocationSQL,
			components.City, components.StateProvince, components.Country, p.location)
		if err != nil {
			return fmt.Errorf("insert location: %w", err)
		}
		inserted += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit locations: %w", err)
	}

	log.Printf("[transform] Inserted %d locations", inserted)
	return nil
}

package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

const (
	selectTypedSkillsSQL = `
		SELECT DISTINCT job_type_skills
		FROM staging_jobs
		WHERE job_type_skills IS NOT NULL`

	insertCategorySQL = `
		INSERT INTO skill_categories (category_name)
		VALUES ($1)
		ON CONFLICT (category_name) DO NOTHING`

	selectCategoriesSQL = `
		SELECT category_id, category_name
		FROM skill_categories`

	insertSkillSQL = `
		INSERT INTO skills (skill_name, category_id)
		VALUES ($1, $2)
		ON CONFLICT (skill_name) DO NOTHING`

	// Fallback for skills seen only in the flat per-posting list: they get a
	// row with NULL category so every staged skill name is resolvable.
	// Categorized inserts ran first, so an existing name is left untouched.
	insertFlatSkillsSQL = `
		INSERT INTO skills (skill_name, category_id)
		SELECT DISTINCT LOWER(TRIM(s.skill)), NULL
		FROM staging_jobs, LATERAL UNNEST(staging_jobs.job_skills) AS s(skill)
		WHERE staging_jobs.job_skills IS NOT NULL
		  AND TRIM(s.skill) <> ''
		ON CONFLICT (skill_name) DO NOTHING`
)

// taxonomy is the aggregated category → skill-name-set union across all
// staging rows.
type taxonomy map[string]map[string]struct{}

// add merges one row's category → skills mapping. Every non-blank category
// name is registered, even when its value is null, empty, or not a list —
// the category union covers all keys ever seen. Only individual non-string
// skill entries are dropped; malformed data never aborts the run.
func (t taxonomy) add(mapping map[string]any) {
	for category, val := range mapping {
		if category == "" {
			continue
		}
		set, ok := t[category]
		if !ok {
			set = map[string]struct{}{}
			t[category] = set
		}
		list, _ := val.([]any)
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				continue
			}
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" {
				set[s] = struct{}{}
			}
		}
	}
}

// sortedCategories returns the category names in deterministic string
// order. A skill claimed by two categories goes to whichever sorts first
// (insert-if-absent discards the later one); sorting makes that tie-break
// reproducible across runs instead of map-iteration happenstance.
func (t taxonomy) sortedCategories() []string {
	out := make([]string, 0, len(t))
	for c := range t {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (t taxonomy) sortedSkills(category string) []string {
	out := make([]string, 0, len(t[category]))
	for s := range t[category] {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// populateSkills builds the category → skill hierarchy from the typed-skills
// mapping, then backfills uncategorized skills from the flat lists.
func (t *Transformer) populateSkills(ctx context.Context) error {
	log.Println("[transform] Populating skill categories and skills")

	tax, skipped, err := t.collectTaxonomy(ctx)
	if err != nil {
		return err
	}
	if skipped > 0 {
		log.Printf("[transform] Skipped %d malformed typed-skills payloads", skipped)
	}

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin skills tx: %w", err)
	}
	defer tx.Rollback(ctx)

	categories := tax.sortedCategories()
	for _, category := range categories {
		if _, err := tx.Exec(ctx, insertCategorySQL, category); err != nil {
			return fmt.Errorf("insert category %q: %w", category, err)
		}
	}
	log.Printf("[transform] Inserted %d skill categories", len(categories))

	categoryIDs, err := loadCategoryIDs(ctx, tx)
	if err != nil {
		return err
	}

	skillCount := 0
	for _, category := range categories {
		categoryID, ok := categoryIDs[category]
		if !ok {
			return fmt.Errorf("category %q missing after insert", category)
		}
		for _, skill := range tax.sortedSkills(category) {
			if _, err := tx.Exec(ctx, insertSkillSQL, skill, categoryID); err != nil {
				return fmt.Errorf("insert skill %q: %w", skill, err)
			}
			skillCount++
		}
	}
	log.Printf("[transform] Processed %d categorized skills", skillCount)

	tag, err := tx.Exec(ctx, insertFlatSkillsSQL)
	if err != nil {
		return fmt.Errorf("insert flat skills: %w", err)
	}
	log.Printf("[transform] Inserted %d uncategorized skills", tag.RowsAffected())

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit skills: %w", err)
	}
	return nil
}

// collectTaxonomy reads every distinct typed-skills JSONB payload and
// aggregates it host-side. Payloads that are not a JSON object at all are
// counted and skipped.
func (t *Transformer) collectTaxonomy(ctx context.Context) (taxonomy, int, error) {
	rows, err := t.pool.Query(ctx, selectTypedSkillsSQL)
	if err != nil {
		return nil, 0, fmt.Errorf("select typed skills: %w", err)
	}
	defer rows.Close()

	tax := taxonomy{}
	skipped := 0
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, 0, fmt.Errorf("scan typed skills: %w", err)
		}
		var mapping map[string]any
		if err := json.Unmarshal(raw, &mapping); err != nil {
			skipped++
			continue
		}
		tax.add(mapping)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate typed skills: %w", err)
	}
	return tax, skipped, nil
}

func loadCategoryIDs(ctx context.Context, tx pgx.Tx) (map[string]int64, error) {
	rows, err := tx.Query(ctx, selectCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	ids := map[string]int64{}
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		ids[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return ids, nil
}

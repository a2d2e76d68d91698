package transform

import (
	"strings"
	"testing"
)

// The statement texts are contracts: natural-key conflict targets, the
// exclusion predicate, and the batch windowing all live in SQL. These tests
// pin the load-bearing clauses.

// ── Purge ordering ─────────────────────────────────────────────────────────

func TestPurgeOrder_ChildrenBeforeParents(t *testing.T) {
	pos := map[string]int{}
	for i, table := range purgeOrder {
		pos[table] = i
	}

	before := []struct{ child, parent string }{
		{"job_skills", "jobs"},
		{"job_skills", "skills"},
		{"jobs", "companies"},
		{"jobs", "locations"},
		{"jobs", "platforms"},
		{"jobs", "schedule_types"},
		{"skills", "skill_categories"},
	}
	for _, c := range before {
		if pos[c.child] >= pos[c.parent] {
			t.Errorf("purgeOrder: %s (pos %d) must be deleted before %s (pos %d)",
				c.child, pos[c.child], c.parent, pos[c.parent])
		}
	}
}

func TestPurgeOrder_NeverTouchesStaging(t *testing.T) {
	for _, table := range purgeOrder {
		if table == "staging_jobs" {
			t.Error("purgeOrder must not include staging_jobs")
		}
	}
	if len(purgeOrder) != 8 {
		t.Errorf("purgeOrder has %d tables, want 8", len(purgeOrder))
	}
}

// ── Insert-if-absent conflict targets ──────────────────────────────────────

func TestDimensionSQL_ConflictTargets(t *testing.T) {
	cases := []struct {
		name   string
		sql    string
		clause string
	}{
		{"companies", insertCompaniesSQL, "ON CONFLICT (company_name) DO NOTHING"},
		{"platforms", insertPlatformsSQL, "ON CONFLICT (platform_name) DO NOTHING"},
		{"schedule_types", insertScheduleTypesSQL, "ON CONFLICT (schedule_type_name) DO NOTHING"},
		{"locations", insertLocationSQL, "ON CONFLICT (main_city, main_state_province, country, full_location) DO NOTHING"},
		{"skill_categories", insertCategorySQL, "ON CONFLICT (category_name) DO NOTHING"},
		{"skills", insertSkillSQL, "ON CONFLICT (skill_name) DO NOTHING"},
		{"flat skills", insertFlatSkillsSQL, "ON CONFLICT (skill_name) DO NOTHING"},
		{"job_skills", insertJobSkillsSQL, "ON CONFLICT (job_id, skill_id) DO NOTHING"},
	}
	for _, c := range cases {
		if !strings.Contains(c.sql, c.clause) {
			t.Errorf("%s statement is missing %q", c.name, c.clause)
		}
	}
}

// ── Cleaning rules in SQL ──────────────────────────────────────────────────

func TestCompaniesSQL_BlankCollapsesToUnknown(t *testing.T) {
	if !strings.Contains(insertCompaniesSQL, `COALESCE(NULLIF(TRIM(company_name), ''), 'Unknown')`) {
		t.Error("companies statement must collapse blank/absent names to 'Unknown'")
	}
	if strings.Contains(insertCompaniesSQL, "WHERE") {
		t.Error("companies statement must not filter rows — absent names map to the Unknown row")
	}
}

func TestPlatformsSQL_StripsLocalizedPrefix(t *testing.T) {
	if !strings.Contains(insertPlatformsSQL, platformPrefixPattern) {
		t.Error("platforms statement must strip the via/melalui prefix")
	}
	if !strings.Contains(insertPlatformsSQL, "'i'") {
		t.Error("platform prefix strip must be case-insensitive")
	}
	if !strings.Contains(insertPlatformsSQL, `TRIM(job_via) <> ''`) {
		t.Error("platforms statement must exclude blank values")
	}
}

func TestScheduleTypesSQL_ExcludesBlanksWithNoFallback(t *testing.T) {
	if !strings.Contains(insertScheduleTypesSQL, `TRIM(job_schedule_type) <> ''`) {
		t.Error("schedule_types statement must exclude blank values")
	}
	if strings.Contains(insertScheduleTypesSQL, "Unknown") {
		t.Error("schedule_types has no Unknown fallback row")
	}
}

func TestLocationInsertSQL_UnknownSubstitutionAtPersistence(t *testing.T) {
	for _, clause := range []string{`COALESCE($3, 'Unknown')`, `COALESCE($4, 'Unknown')`} {
		if !strings.Contains(insertLocationSQL, clause) {
			t.Errorf("location insert is missing %q", clause)
		}
	}
}

// ── Fact and bridge statements ─────────────────────────────────────────────

func TestJobsSQL_ExclusionPredicateMatchesCount(t *testing.T) {
	if !strings.Contains(insertJobsSQL, jobExclusionPredicate) {
		t.Error("jobs insert must exclude rows with both titles NULL")
	}
	if !strings.Contains(countJobsSQL, jobExclusionPredicate) {
		t.Error("jobs count must use the same exclusion predicate as the insert")
	}
}

func TestJobsSQL_BatchWindowing(t *testing.T) {
	if !strings.Contains(insertJobsSQL, "ORDER BY s.id") {
		t.Error("jobs insert needs a stable ordering for batch tiling")
	}
	if !strings.Contains(insertJobsSQL, "LIMIT $1 OFFSET $2") {
		t.Error("jobs insert must be windowed by LIMIT/OFFSET parameters")
	}
}

func TestJobsSQL_OuterJoinsOnNaturalKeys(t *testing.T) {
	joins := []string{
		"LEFT JOIN companies",
		"LEFT JOIN locations",
		"LEFT JOIN platforms",
		"LEFT JOIN schedule_types",
	}
	for _, j := range joins {
		if !strings.Contains(insertJobsSQL, j) {
			t.Errorf("jobs insert is missing %q — unmatched dimensions must yield NULL, not drop rows", j)
		}
	}
}

func TestJobSkillsSQL_JoinsOnStagingID(t *testing.T) {
	for _, sql := range []string{insertJobSkillsSQL, countJobSkillsSQL} {
		if !strings.Contains(sql, "stg.id = j.staging_id") {
			t.Error("bridge statements must join staging via the carried staging_id, not title/date equality")
		}
	}
	if !strings.Contains(insertJobSkillsSQL, "ORDER BY j.job_id, sk.skill_id") {
		t.Error("bridge insert needs deterministic (job_id, skill_id) ordering for batch tiling")
	}
}

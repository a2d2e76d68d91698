package ingest_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"jobdata/pipeline-service/internal/ingest"
)

const csvHeader = "job_title_short,job_title,job_location,job_via,job_schedule_type," +
	"job_work_from_home,search_location,job_posted_date,job_no_degree_mention," +
	"job_health_insurance,job_country,salary_rate,salary_year_avg,salary_hour_avg," +
	"company_name,job_skills,job_type_skills"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

// ── ReadCSV ────────────────────────────────────────────────────────────────

func TestReadCSV_FullRow(t *testing.T) {
	content := csvHeader + "\n" +
		`Data Analyst,Senior Data Analyst,"Lyon, France",via LinkedIn,Full-time,` +
		`True,France,2023-06-14 13:18:59,False,True,France,year,98500.0,,TechCorp,` +
		`"['python', 'sql']","{'programming': ['python', 'sql']}"` + "\n"

	rows, err := ingest.ReadCSV(writeCSV(t, content))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}

	r := rows[0]
	if r.JobTitle == nil || *r.JobTitle != "Senior Data Analyst" {
		t.Errorf("JobTitle = %v, want Senior Data Analyst", r.JobTitle)
	}
	if r.JobVia == nil || *r.JobVia != "via LinkedIn" {
		t.Errorf("JobVia = %v, want raw 'via LinkedIn' (prefix stripped later, in SQL)", r.JobVia)
	}
	if r.JobWorkFromHome == nil || !*r.JobWorkFromHome {
		t.Errorf("JobWorkFromHome = %v, want true", r.JobWorkFromHome)
	}
	if r.JobNoDegreeMention == nil || *r.JobNoDegreeMention {
		t.Errorf("JobNoDegreeMention = %v, want false", r.JobNoDegreeMention)
	}
	if r.JobPostedDate == nil {
		t.Error("JobPostedDate = nil, want parsed timestamp")
	}
	if r.SalaryYearAvg == nil || *r.SalaryYearAvg != 98500.0 {
		t.Errorf("SalaryYearAvg = %v, want 98500", r.SalaryYearAvg)
	}
	if r.SalaryHourAvg != nil {
		t.Errorf("SalaryHourAvg = %v, want nil for empty field", *r.SalaryHourAvg)
	}
	if !reflect.DeepEqual(r.JobSkills, []string{"python", "sql"}) {
		t.Errorf("JobSkills = %v, want [python sql]", r.JobSkills)
	}
	if !reflect.DeepEqual(r.JobTypeSkills["programming"], []string{"python", "sql"}) {
		t.Errorf("JobTypeSkills = %v, want programming → [python sql]", r.JobTypeSkills)
	}
}

func TestReadCSV_EmptyFieldsBecomeNil(t *testing.T) {
	content := csvHeader + "\n" +
		",,,,,,,,,,,,,,,," + "\n"

	rows, err := ingest.ReadCSV(writeCSV(t, content))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	r := rows[0]
	if r.JobTitle != nil || r.JobTitleShort != nil || r.CompanyName != nil {
		t.Errorf("empty title/company fields should be nil: %+v", r)
	}
	if r.JobWorkFromHome != nil || r.JobPostedDate != nil || r.SalaryYearAvg != nil {
		t.Errorf("empty bool/date/float fields should be nil: %+v", r)
	}
	if r.JobSkills != nil || r.JobTypeSkills != nil {
		t.Errorf("empty skill columns should be nil: %+v", r)
	}
}

func TestReadCSV_MissingColumn(t *testing.T) {
	content := "job_title,company_name\nAnalyst,Acme\n"
	_, err := ingest.ReadCSV(writeCSV(t, content))
	if err == nil {
		t.Fatal("expected error for missing required columns, got nil")
	}
}

func TestReadCSV_BadFloatFails(t *testing.T) {
	content := csvHeader + "\n" +
		`Analyst,Analyst,,,,,,,,,,year,not-a-number,,Acme,,` + "\n"
	_, err := ingest.ReadCSV(writeCSV(t, content))
	if err == nil {
		t.Fatal("expected error for unparseable salary_year_avg, got nil")
	}
}

func TestReadCSV_UnparseableSkillsCoerceToNil(t *testing.T) {
	content := csvHeader + "\n" +
		`Analyst,Analyst,,,,,,,,,,,,,Acme,"[broken","{also broken"` + "\n"
	rows, err := ingest.ReadCSV(writeCSV(t, content))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if rows[0].JobSkills != nil || rows[0].JobTypeSkills != nil {
		t.Errorf("broken literals should coerce to nil, got %v / %v",
			rows[0].JobSkills, rows[0].JobTypeSkills)
	}
}

func TestReadCSV_BadDateCoercesToNil(t *testing.T) {
	content := csvHeader + "\n" +
		`Analyst,Analyst,,,,,,not-a-date,,,,,,,Acme,,` + "\n"
	rows, err := ingest.ReadCSV(writeCSV(t, content))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if rows[0].JobPostedDate != nil {
		t.Errorf("JobPostedDate = %v, want nil for unparseable date", rows[0].JobPostedDate)
	}
}

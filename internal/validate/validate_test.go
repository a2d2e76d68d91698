package validate_test

import (
	"strings"
	"testing"

	"jobdata/pipeline-service/internal/model"
	"jobdata/pipeline-service/internal/validate"
)

func strp(s string) *string   { return &s }
func f64p(f float64) *float64 { return &f }

// ── CheckRows ──────────────────────────────────────────────────────────────

func TestCheckRows_ValidRows(t *testing.T) {
	rows := []model.StagingJob{
		{SalaryRate: strp("year"), SalaryYearAvg: f64p(90000)},
		{SalaryRate: strp("hour"), SalaryHourAvg: f64p(45.5)},
		{}, // all-nil row is fine
	}
	if err := validate.CheckRows(rows); err != nil {
		t.Errorf("CheckRows returned unexpected error: %v", err)
	}
}

func TestCheckRows_UnknownSalaryRate(t *testing.T) {
	rows := []model.StagingJob{{SalaryRate: strp("fortnight")}}
	err := validate.CheckRows(rows)
	if err == nil {
		t.Fatal("expected error for unknown salary_rate, got nil")
	}
	if !strings.Contains(err.Error(), "fortnight") {
		t.Errorf("error should name the offending value, got: %v", err)
	}
}

func TestCheckRows_NegativeSalary(t *testing.T) {
	rows := []model.StagingJob{
		{SalaryYearAvg: f64p(-1)},
		{SalaryHourAvg: f64p(-0.5)},
	}
	err := validate.CheckRows(rows)
	if err == nil {
		t.Fatal("expected error for negative salaries, got nil")
	}
}

func TestCheckRows_ViolationsAreTruncated(t *testing.T) {
	rows := make([]model.StagingJob, 100)
	for i := range rows {
		rows[i] = model.StagingJob{SalaryRate: strp("bogus")}
	}
	err := validate.CheckRows(rows)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "truncated") {
		t.Errorf("mass violations should be truncated, got %d bytes", len(err.Error()))
	}
}

func TestCheckRows_EmptyInput(t *testing.T) {
	if err := validate.CheckRows(nil); err != nil {
		t.Errorf("CheckRows(nil) = %v, want nil", err)
	}
}

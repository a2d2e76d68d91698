package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"jobdata/pipeline-service/internal/model"
)

// RequiredColumns are the CSV headers the loader expects. Extra columns are
// ignored; a missing one aborts the run.
var RequiredColumns = []string{
	"job_title_short", "job_title", "job_location", "job_via",
	"job_schedule_type", "job_work_from_home", "search_location",
	"job_posted_date", "job_no_degree_mention", "job_health_insurance",
	"job_country", "salary_rate", "salary_year_avg", "salary_hour_avg",
	"company_name", "job_skills", "job_type_skills",
}

// dateLayouts covers the timestamp shapes seen in the dataset. Unparseable
// dates coerce to NULL rather than failing the row.
var dateLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// ReadCSV reads the postings file and decodes every record into a
// StagingJob. Semi-structured skill columns that fail to parse are stored
// as NULL; how many were dropped is logged once at the end.
func ReadCSV(path string) ([]model.StagingJob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are rejected per-record below

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var (
		rows         []model.StagingJob
		badSkills    int
		badTypeSkill int
		line         = 1
	)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line+1, err)
		}
		line++
		if len(record) < len(header) {
			return nil, fmt.Errorf("csv line %d: %d fields, want %d", line, len(record), len(header))
		}

		field := func(name string) string { return record[idx[name]] }

		row := model.StagingJob{
			JobTitleShort:      optString(field("job_title_short")),
			JobTitle:           optString(field("job_title")),
			JobLocation:        optString(field("job_location")),
			JobVia:             optString(field("job_via")),
			JobScheduleType:    optString(field("job_schedule_type")),
			JobWorkFromHome:    optBool(field("job_work_from_home")),
			SearchLocation:     optString(field("search_location")),
			JobPostedDate:      optDate(field("job_posted_date")),
			JobNoDegreeMention: optBool(field("job_no_degree_mention")),
			JobHealthInsurance: optBool(field("job_health_insurance")),
			JobCountry:         optString(field("job_country")),
			SalaryRate:         optString(field("salary_rate")),
			CompanyName:        optString(field("company_name")),
		}

		if row.SalaryYearAvg, err = optFloat(field("salary_year_avg")); err != nil {
			return nil, fmt.Errorf("csv line %d: salary_year_avg: %w", line, err)
		}
		if row.SalaryHourAvg, err = optFloat(field("salary_hour_avg")); err != nil {
			return nil, fmt.Errorf("csv line %d: salary_hour_avg: %w", line, err)
		}

		if skills, err := ParseSkillList(field("job_skills")); err != nil {
			badSkills++
		} else {
			row.JobSkills = skills
		}
		if typed, err := ParseTypedSkills(field("job_type_skills")); err != nil {
			badTypeSkill++
		} else {
			row.JobTypeSkills = typed
		}

		rows = append(rows, row)
	}

	log.Printf("[ingest] Loaded %d rows from %s", len(rows), path)
	if badSkills > 0 || badTypeSkill > 0 {
		log.Printf("[ingest] Unparseable skill literals coerced to NULL — job_skills=%d job_type_skills=%d",
			badSkills, badTypeSkill)
	}
	return rows, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range RequiredColumns {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("csv is missing required column %q", name)
		}
	}
	return idx, nil
}

// ─── Field coercion ──────────────────────────────────────────────────────────

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// optBool maps "true"/"false" (any case) to a bool; everything else,
// including empty, is NULL.
func optBool(s string) *bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}

func optFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("parse float %q: %w", s, err)
	}
	return &v, nil
}

func optDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// Package validate runs data-quality checks on parsed staging rows before
// they are loaded. Schema violations abort the pipeline; quality metrics
// are informational and only logged.
package validate

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"jobdata/pipeline-service/internal/model"
)

// maxViolations caps how many individual violations are collected before
// the check bails out; a corrupted file should not produce a megabyte error.
const maxViolations = 20

// CheckRows validates the schema-level constraints: salary_rate must be one
// of the known enum values and salary averages must be non-negative.
func CheckRows(rows []model.StagingJob) error {
	var violations []string

	for i, r := range rows {
		if r.SalaryRate != nil && !isKnownRate(*r.SalaryRate) {
			violations = append(violations, fmt.Sprintf("row %d: salary_rate %q not in %v", i+1, *r.SalaryRate, model.SalaryRates))
		}
		if r.SalaryYearAvg != nil && *r.SalaryYearAvg < 0 {
			violations = append(violations, fmt.Sprintf("row %d: salary_year_avg %.2f is negative", i+1, *r.SalaryYearAvg))
		}
		if r.SalaryHourAvg != nil && *r.SalaryHourAvg < 0 {
			violations = append(violations, fmt.Sprintf("row %d: salary_hour_avg %.2f is negative", i+1, *r.SalaryHourAvg))
		}
		if len(violations) >= maxViolations {
			violations = append(violations, "… further violations truncated")
			break
		}
	}

	if len(violations) > 0 {
		return fmt.Errorf("schema validation failed:\n%s", strings.Join(violations, "\n"))
	}
	return nil
}

func isKnownRate(rate string) bool {
	for _, r := range model.SalaryRates {
		if rate == r {
			return true
		}
	}
	return false
}

// LogProfile writes a data profile of the parsed rows to the log: null
// counts for the columns the transform keys on, unique-value counts, and
// the shape of the semi-structured skill columns.
func LogProfile(rows []model.StagingJob) {
	total := len(rows)
	if total == 0 {
		log.Println("[validate] No rows to profile")
		return
	}

	nullTitle, nullTitleShort, nullCompany, nullLocation, nullCountry := 0, 0, 0, 0, 0
	companies := map[string]struct{}{}
	countries := map[string]struct{}{}
	scheduleTypes := map[string]struct{}{}
	withSkills, withTypedSkills := 0, 0
	categories := map[string]struct{}{}

	for _, r := range rows {
		if r.JobTitle == nil {
			nullTitle++
		}
		if r.JobTitleShort == nil {
			nullTitleShort++
		}
		if r.CompanyName == nil {
			nullCompany++
		} else {
			companies[*r.CompanyName] = struct{}{}
		}
		if r.JobLocation == nil {
			nullLocation++
		}
		if r.JobCountry == nil {
			nullCountry++
		} else {
			countries[*r.JobCountry] = struct{}{}
		}
		if r.JobScheduleType != nil {
			scheduleTypes[*r.JobScheduleType] = struct{}{}
		}
		if len(r.JobSkills) > 0 {
			withSkills++
		}
		if len(r.JobTypeSkills) > 0 {
			withTypedSkills++
			for c := range r.JobTypeSkills {
				categories[c] = struct{}{}
			}
		}
	}

	log.Printf("[validate] Profile: %d rows — null title=%d title_short=%d company=%d location=%d country=%d",
		total, nullTitle, nullTitleShort, nullCompany, nullLocation, nullCountry)
	log.Printf("[validate] Unique values: companies=%d countries=%d schedule_types=%d",
		len(companies), len(countries), len(scheduleTypes))
	log.Printf("[validate] Skills: flat lists on %d rows, typed mappings on %d rows, %d categories (%s)",
		withSkills, withTypedSkills, len(categories), sampleKeys(categories, 5))
}

func sampleKeys(set map[string]struct{}, n int) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > n {
		keys = keys[:n]
	}
	return strings.Join(keys, ", ")
}

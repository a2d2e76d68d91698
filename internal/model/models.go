// Package model defines the staging-side data structures shared between
// ingestion and transformation. The dimension, fact, and bridge tables have
// no Go structs: they are populated entirely by set-based SQL.
package model

import "time"

// SalaryRates lists the values allowed in staging_jobs.salary_rate.
var SalaryRates = []string{"hour", "day", "week", "month", "year"}

// StagingJob mirrors one staging_jobs row: a raw, denormalized posting as it
// arrives from the CSV, before any 3NF transformation. Pointer fields are
// nullable columns.
type StagingJob struct {
	ID                 int64
	JobTitleShort      *string
	JobTitle           *string
	JobLocation        *string
	JobVia             *string
	JobScheduleType    *string
	JobWorkFromHome    *bool
	SearchLocation     *string
	JobPostedDate      *time.Time
	JobNoDegreeMention *bool
	JobHealthInsurance *bool
	JobCountry         *string
	SalaryRate         *string
	SalaryYearAvg      *float64
	SalaryHourAvg      *float64
	CompanyName        *string
	JobSkills          []string            // flat skill list, e.g. ["python", "sql"]
	JobTypeSkills      map[string][]string // category → skill names
}

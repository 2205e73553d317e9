package analytics

import (
	"time"

	"jobboard/internal/common"
	"jobboard/internal/domain/application"
)

const PopularJobsLimit = 5

type BucketCount struct {
	Start time.Time
	Count int64
}

type Point struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type Summary struct {
	TotalJobs               int64                        `json:"total_jobs"`
	ActiveJobs              int64                        `json:"active_jobs"`
	TotalApplications       int64                        `json:"total_applications"`
	TotalViews              int64                        `json:"total_job_views"`
	ApplicationStatusCounts map[application.Status]int64 `json:"application_status_counts"`
}

type TimeSeries struct {
	ApplicationsOverTime []Point `json:"applications_over_time"`
	JobViewsOverTime     []Point `json:"job_views_over_time"`
}

type PopularJob struct {
	JobID            common.UUID `json:"job_id"`
	Title            string      `json:"title"`
	ViewCount        int64       `json:"view_count"`
	ApplicationCount int64       `json:"application_count"`
}

type Dashboard struct {
	Period      Period       `json:"period"`
	Granularity Granularity  `json:"granularity"`
	Scope       Scope        `json:"scope"`
	Summary     Summary      `json:"summary"`
	TimeSeries  TimeSeries   `json:"time_series"`
	PopularJobs []PopularJob `json:"popular_jobs"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// EmployerMetric is the lifetime rollup snapshot of one employer.
type EmployerMetric struct {
	ID                common.UUID `json:"id"`
	EmployerID        common.UUID `json:"employer_id"`
	TotalJobs         int64       `json:"total_jobs"`
	TotalApplications int64       `json:"total_applications"`
	TotalInterviews   int64       `json:"total_interviews"`
	TotalHires        int64       `json:"total_hires"`
	AverageTimeToHire *float64    `json:"average_time_to_hire"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// SameValues compares the computed counters, ignoring identity and timestamps.
func (m EmployerMetric) SameValues(other EmployerMetric) bool {
	if m.EmployerID != other.EmployerID || m.TotalJobs != other.TotalJobs || m.TotalApplications != other.TotalApplications ||
		m.TotalInterviews != other.TotalInterviews || m.TotalHires != other.TotalHires {
		return false
	}
	if m.AverageTimeToHire == nil || other.AverageTimeToHire == nil {
		return m.AverageTimeToHire == nil && other.AverageTimeToHire == nil
	}
	return *m.AverageTimeToHire == *other.AverageTimeToHire
}

type EmployerSummary struct {
	EmployerID        common.UUID `json:"employer_id"`
	TotalJobs         int64       `json:"total_jobs"`
	TotalApplications int64       `json:"total_applications"`
	TotalInterviews   int64       `json:"total_interviews"`
	TotalHires        int64       `json:"total_hires"`
	AverageTimeToHire *float64    `json:"average_time_to_hire"`
	UpdatedAt         *time.Time  `json:"updated_at,omitempty"`
}

// EmployerActivity is the raw input for one employer's rollup.
type EmployerActivity struct {
	TotalJobs    int64
	StatusCounts map[application.Status]int64
	Hires        []application.Application
}

type Trends struct {
	MetricID     common.UUID `json:"metric_id"`
	JobID        common.UUID `json:"job_id"`
	Days         int         `json:"days"`
	Views        []Point     `json:"views"`
	Applications []Point     `json:"applications"`
}

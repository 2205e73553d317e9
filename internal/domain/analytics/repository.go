package analytics

import (
	"context"

	"jobboard/internal/common"
	"jobboard/internal/domain/application"
)

// Repository answers scope-filtered reporting queries. Restricted scopes filter by
// jobs.created_by; global scope is unfiltered. Implementations are never called with
// an empty scope.
type Repository interface {
	CountJobs(ctx context.Context, scope Scope) (int64, error)
	CountActiveJobs(ctx context.Context, scope Scope) (int64, error)
	CountViews(ctx context.Context, scope Scope) (int64, error)
	ApplicationStatusCounts(ctx context.Context, scope Scope) (map[application.Status]int64, error)
	ApplicationBuckets(ctx context.Context, scope Scope, window Window) ([]BucketCount, error)
	ViewBuckets(ctx context.Context, scope Scope, window Window) ([]BucketCount, error)
	// PopularJobCandidates returns at least the top limit jobs by views and applications.
	PopularJobCandidates(ctx context.Context, scope Scope, limit int) ([]PopularJob, error)

	JobApplicationBuckets(ctx context.Context, jobID common.UUID, window Window) ([]BucketCount, error)
	JobViewBuckets(ctx context.Context, jobID common.UUID, window Window) ([]BucketCount, error)

	EmployerActivity(ctx context.Context, employerID common.UUID) (*EmployerActivity, error)
}

type EmployerMetricRepository interface {
	// Upsert replaces the employer's snapshot in one atomic statement.
	Upsert(ctx context.Context, metric EmployerMetric) (*EmployerMetric, error)
	ListByEmployer(ctx context.Context, employerID common.UUID) ([]EmployerMetric, error)
}

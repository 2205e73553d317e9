package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"jobboard/internal/common"
	"jobboard/internal/domain/analytics"
	"jobboard/internal/domain/application"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
)

type ApplicationMetricService struct {
	metrics application.MetricRepository
	jobs    job.Repository
	repo    analytics.Repository
	clock   func() time.Time
}

func NewApplicationMetricService(metrics application.MetricRepository, jobs job.Repository, repo analytics.Repository) *ApplicationMetricService {
	return &ApplicationMetricService{
		metrics: metrics,
		jobs:    jobs,
		repo:    repo,
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// Trends returns daily view and application counts for the metric's job. The series is
// always daily, whatever the number of days.
func (s *ApplicationMetricService) Trends(ctx context.Context, caller user.Caller, metricID common.UUID, days int) (*analytics.Trends, error) {
	if !caller.Authenticated() {
		return nil, common.NewError(common.CodeUnauthorized, "authentication required", nil)
	}
	if days <= 0 {
		days = analytics.DefaultDays
	}
	if days > analytics.MaxTrendDays {
		return nil, common.NewValidationError("invalid days", map[string]string{"days": "days must be between 1 and 365"})
	}
	metric, err := s.metrics.GetByID(ctx, metricID)
	if err != nil {
		return nil, err
	}
	owner, err := s.jobs.GetByID(ctx, metric.JobID)
	if err != nil {
		return nil, err
	}
	if err := authorizeJobAnalytics(caller, owner); err != nil {
		return nil, err
	}

	window := analytics.DailyWindow(s.clock(), days)
	var views, applications []analytics.BucketCount
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		views, err = s.repo.JobViewBuckets(gctx, owner.ID, window)
		return err
	})
	g.Go(func() (err error) {
		applications, err = s.repo.JobApplicationBuckets(gctx, owner.ID, window)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &analytics.Trends{
		MetricID:     metric.ID,
		JobID:        owner.ID,
		Days:         days,
		Views:        window.Densify(views),
		Applications: window.Densify(applications),
	}, nil
}

func authorizeJobAnalytics(caller user.Caller, j *job.Job) error {
	if caller.IsStaff {
		return nil
	}
	switch caller.Role {
	case user.RoleEmployer:
		if j.CreatedBy != caller.ID {
			return common.NewError(common.CodeForbidden, "job belongs to another employer", nil)
		}
		return nil
	case user.RoleStudent, user.RoleCampus, user.RoleAdmin:
		return common.NewError(common.CodeForbidden, "analytics are available to employers only", nil)
	default:
		return common.NewError(common.CodeForbidden, "role not selected", nil)
	}
}

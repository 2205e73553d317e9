package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"jobboard/internal/cache"
	"jobboard/internal/common"
	"jobboard/internal/domain/analytics"
	"jobboard/internal/domain/application"
	"jobboard/internal/domain/user"
)

type AnalyticsService struct {
	policy   *AccessPolicy
	repo     analytics.Repository
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
	clock    func() time.Time
}

func NewAnalyticsService(policy *AccessPolicy, repo analytics.Repository, dashboards cache.Cache, cacheTTL time.Duration, logger *slog.Logger) *AnalyticsService {
	if dashboards == nil {
		dashboards = cache.NoopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{
		policy:   policy,
		repo:     repo,
		cache:    dashboards,
		cacheTTL: cacheTTL,
		logger:   logger,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *AnalyticsService) Dashboard(ctx context.Context, caller user.Caller, period analytics.Period, target *common.UUID) (*analytics.Dashboard, error) {
	scope, err := s.policy.Resolve(ctx, caller, target)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	cacheKey := "dashboard:" + string(period) + ":" + scope.Key() + ":" + analytics.Truncate(now, analytics.GranularityDay).Format("20060102")
	var cached analytics.Dashboard
	if ok, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		s.logger.Warn("dashboard cache read failed", slog.String("error", err.Error()))
	} else if ok {
		return &cached, nil
	}

	dashboard, err := s.Aggregate(ctx, scope, period)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cacheKey, dashboard, s.cacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", slog.String("error", err.Error()))
	}
	return dashboard, nil
}

// Aggregate computes the dashboard for an already resolved scope. Sub-queries run
// concurrently and the first failure fails the whole result.
func (s *AnalyticsService) Aggregate(ctx context.Context, scope analytics.Scope, period analytics.Period) (*analytics.Dashboard, error) {
	now := s.clock()
	window := period.Window(now)
	dashboard := &analytics.Dashboard{
		Period:      period,
		Granularity: window.Granularity,
		Scope:       scope,
		Summary:     analytics.Summary{ApplicationStatusCounts: completeStatusCounts(nil)},
		TimeSeries: analytics.TimeSeries{
			ApplicationsOverTime: window.Zero(),
			JobViewsOverTime:     window.Zero(),
		},
		PopularJobs: []analytics.PopularJob{},
		GeneratedAt: now,
	}
	if scope.Empty() {
		return dashboard, nil
	}

	var (
		totalJobs, activeJobs, totalViews int64
		statusCounts                      map[application.Status]int64
		appBuckets, viewBuckets           []analytics.BucketCount
		candidates                        []analytics.PopularJob
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totalJobs, err = s.repo.CountJobs(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		activeJobs, err = s.repo.CountActiveJobs(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		totalViews, err = s.repo.CountViews(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		statusCounts, err = s.repo.ApplicationStatusCounts(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		appBuckets, err = s.repo.ApplicationBuckets(gctx, scope, window)
		return err
	})
	g.Go(func() (err error) {
		viewBuckets, err = s.repo.ViewBuckets(gctx, scope, window)
		return err
	})
	g.Go(func() (err error) {
		candidates, err = s.repo.PopularJobCandidates(gctx, scope, analytics.PopularJobsLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		var appErr *common.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, common.NewError(common.CodeInternal, "failed to aggregate analytics", err)
	}

	counts := completeStatusCounts(statusCounts)
	var totalApplications int64
	for _, count := range counts {
		totalApplications += count
	}
	dashboard.Summary = analytics.Summary{
		TotalJobs:               totalJobs,
		ActiveJobs:              activeJobs,
		TotalApplications:       totalApplications,
		TotalViews:              totalViews,
		ApplicationStatusCounts: counts,
	}
	dashboard.TimeSeries = analytics.TimeSeries{
		ApplicationsOverTime: window.Densify(appBuckets),
		JobViewsOverTime:     window.Densify(viewBuckets),
	}
	dashboard.PopularJobs = analytics.RankPopularJobs(candidates, analytics.PopularJobsLimit)
	return dashboard, nil
}

// completeStatusCounts keeps known statuses only and adds a zero entry for each missing one.
func completeStatusCounts(raw map[application.Status]int64) map[application.Status]int64 {
	counts := make(map[application.Status]int64, len(application.Statuses()))
	for _, status := range application.Statuses() {
		counts[status] = raw[status]
	}
	return counts
}

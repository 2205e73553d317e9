package app

import (
	"context"
	"log/slog"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/domain/analytics"
	"jobboard/internal/domain/application"
	"jobboard/internal/domain/user"
)

type EmployerSummaryService struct {
	users    user.Repository
	activity analytics.Repository
	metrics  analytics.EmployerMetricRepository
	policy   *AccessPolicy
	logger   *slog.Logger
	clock    func() time.Time
}

func NewEmployerSummaryService(users user.Repository, activity analytics.Repository, metrics analytics.EmployerMetricRepository, policy *AccessPolicy, logger *slog.Logger) *EmployerSummaryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmployerSummaryService{
		users:    users,
		activity: activity,
		metrics:  metrics,
		policy:   policy,
		logger:   logger,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

type EmployerFailure struct {
	EmployerID common.UUID `json:"employer_id"`
	Error      string      `json:"error"`
}

type RecomputeReport struct {
	Processed int               `json:"processed"`
	Failed    int               `json:"failed"`
	Failures  []EmployerFailure `json:"failures,omitempty"`
	StartedAt time.Time         `json:"started_at"`
	Duration  time.Duration     `json:"duration"`
}

// RecomputeAll rebuilds the snapshot of every employer. A failing employer keeps its
// previous snapshot and is reported; the batch continues. Only listing employers or
// context cancellation returns an error, together with the progress made so far.
func (s *EmployerSummaryService) RecomputeAll(ctx context.Context) (*RecomputeReport, error) {
	report := &RecomputeReport{StartedAt: s.clock()}
	employers, err := s.users.ListByRole(ctx, user.RoleEmployer)
	if err != nil {
		return report, err
	}
	for _, employer := range employers {
		if err := ctx.Err(); err != nil {
			report.Duration = s.clock().Sub(report.StartedAt)
			return report, err
		}
		if _, err := s.RecomputeEmployer(ctx, employer.ID); err != nil {
			report.Failed++
			report.Failures = append(report.Failures, EmployerFailure{EmployerID: employer.ID, Error: err.Error()})
			s.logger.Error("employer metric recompute failed", slog.String("employer_id", employer.ID.String()), slog.String("error", err.Error()))
			continue
		}
		report.Processed++
	}
	report.Duration = s.clock().Sub(report.StartedAt)
	s.logger.Info("employer metrics recomputed", slog.Int("processed", report.Processed), slog.Int("failed", report.Failed), slog.Duration("duration", report.Duration))
	return report, nil
}

func (s *EmployerSummaryService) RecomputeEmployer(ctx context.Context, employerID common.UUID) (*analytics.EmployerMetric, error) {
	activity, err := s.activity.EmployerActivity(ctx, employerID)
	if err != nil {
		return nil, err
	}
	metric := ComputeEmployerMetric(employerID, *activity, s.clock())
	return s.metrics.Upsert(ctx, metric)
}

// ComputeEmployerMetric derives the lifetime counters from raw activity.
func ComputeEmployerMetric(employerID common.UUID, activity analytics.EmployerActivity, now time.Time) analytics.EmployerMetric {
	counts := completeStatusCounts(activity.StatusCounts)
	var totalApplications int64
	for _, count := range counts {
		totalApplications += count
	}
	metric := analytics.EmployerMetric{
		EmployerID:        employerID,
		TotalJobs:         activity.TotalJobs,
		TotalApplications: totalApplications,
		TotalInterviews:   counts[application.InterviewStatus],
		TotalHires:        int64(len(activity.Hires)),
		UpdatedAt:         now,
	}
	metric.AverageTimeToHire = averageTimeToHire(activity.Hires)
	return metric
}

// averageTimeToHire averages whole days between creation and decision; nil without hires.
func averageTimeToHire(hires []application.Application) *float64 {
	if len(hires) == 0 {
		return nil
	}
	var totalDays int64
	for _, hire := range hires {
		days := int64(hire.DecisionTime().Sub(hire.CreatedAt) / (24 * time.Hour))
		if days < 0 {
			days = 0
		}
		totalDays += days
	}
	avg := float64(totalDays) / float64(len(hires))
	return &avg
}

func (s *EmployerSummaryService) Summary(ctx context.Context, caller user.Caller, target *common.UUID) (*analytics.EmployerSummary, error) {
	scope, err := s.policy.Resolve(ctx, caller, target)
	if err != nil {
		return nil, err
	}
	switch scope.Kind {
	case analytics.ScopeGlobal:
		return nil, common.NewValidationError("employer_id is required", map[string]string{"employer_id": "staff callers must name an employer"})
	case analytics.ScopeEmpty:
		return &analytics.EmployerSummary{EmployerID: scope.EmployerID}, nil
	}
	rows, err := s.metrics.ListByEmployer(ctx, scope.EmployerID)
	if err != nil {
		return nil, err
	}
	return SumEmployerMetrics(scope.EmployerID, rows), nil
}

// SumEmployerMetrics adds counters across snapshots and takes the average time to hire
// from the most recently updated snapshot.
func SumEmployerMetrics(employerID common.UUID, rows []analytics.EmployerMetric) *analytics.EmployerSummary {
	summary := &analytics.EmployerSummary{EmployerID: employerID}
	var latest *analytics.EmployerMetric
	for i := range rows {
		row := rows[i]
		summary.TotalJobs += row.TotalJobs
		summary.TotalApplications += row.TotalApplications
		summary.TotalInterviews += row.TotalInterviews
		summary.TotalHires += row.TotalHires
		if latest == nil || row.UpdatedAt.After(latest.UpdatedAt) {
			latest = &rows[i]
		}
	}
	if latest != nil {
		summary.AverageTimeToHire = latest.AverageTimeToHire
		updatedAt := latest.UpdatedAt
		summary.UpdatedAt = &updatedAt
	}
	return summary
}

package app

import (
	"context"
	"log/slog"
	"strings"

	"jobboard/internal/common"
	"jobboard/internal/domain/application"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
)

type ApplicationService struct {
	repo    application.Repository
	metrics application.MetricRepository
	jobs    job.Repository
	logger  *slog.Logger
}

func NewApplicationService(repo application.Repository, metrics application.MetricRepository, jobs job.Repository, logger *slog.Logger) *ApplicationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApplicationService{repo: repo, metrics: metrics, jobs: jobs, logger: logger}
}

func (s *ApplicationService) Apply(ctx context.Context, caller user.Caller, jobID common.UUID, source string) (*application.Application, error) {
	if caller.Role != user.RoleStudent {
		return nil, common.NewError(common.CodeForbidden, "only students can apply", nil)
	}
	target, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !target.IsActive {
		return nil, common.NewError(common.CodeValidation, "job is not active", nil)
	}
	if _, err := s.repo.FindByJobAndApplicant(ctx, jobID, caller.ID); err == nil {
		return nil, common.NewError(common.CodeConflict, "already applied", nil)
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	created, err := s.repo.Create(ctx, application.Application{
		JobID:       jobID,
		ApplicantID: caller.ID,
		Status:      application.StatusPending,
	})
	if err != nil {
		return nil, err
	}
	s.syncMetric(ctx, *created, normalizeSource(source))
	return created, nil
}

func (s *ApplicationService) UpdateStatus(ctx context.Context, caller user.Caller, applicationID common.UUID, status application.Status) (*application.Application, error) {
	current, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	owner, err := s.jobs.GetByID(ctx, current.JobID)
	if err != nil {
		return nil, err
	}
	if !caller.IsStaff && owner.CreatedBy != caller.ID {
		return nil, common.NewError(common.CodeForbidden, "application belongs to another employer", nil)
	}
	next := application.Status(strings.ToLower(strings.TrimSpace(string(status))))
	if !next.Valid() {
		return nil, common.NewValidationError("invalid status", map[string]string{"status": "status must be pending, reviewing, interviewed, accepted, or rejected"})
	}
	if next == current.Status {
		return current, nil
	}
	if current.Status.Final() {
		return nil, common.NewError(common.CodeValidation, "application status is final", nil)
	}
	if !isAllowedTransition(current.Status, next) {
		return nil, common.NewError(common.CodeValidation, "invalid status transition", nil)
	}
	updated, err := s.repo.UpdateStatus(ctx, applicationID, next)
	if err != nil {
		return nil, err
	}
	s.syncMetric(ctx, *updated, "")
	return updated, nil
}

// syncMetric mirrors the application into its metric row. Failures are logged only;
// the next status change upserts the row again.
func (s *ApplicationService) syncMetric(ctx context.Context, app application.Application, source string) {
	_, err := s.metrics.Upsert(ctx, application.Metric{
		ApplicationID: app.ID,
		JobID:         app.JobID,
		Status:        app.Status,
		Source:        source,
	})
	if err != nil {
		s.logger.Error("application metric upsert failed", slog.String("application_id", app.ID.String()), slog.String("error", err.Error()))
	}
}

func isAllowedTransition(from, to application.Status) bool {
	switch from {
	case application.StatusPending:
		return to == application.StatusReviewing || to == application.StatusInterviewed || to == application.StatusAccepted || to == application.StatusRejected
	case application.StatusReviewing:
		return to == application.StatusInterviewed || to == application.StatusAccepted || to == application.StatusRejected
	case application.StatusInterviewed:
		return to == application.StatusAccepted || to == application.StatusRejected
	default:
		return false
	}
}

func normalizeSource(source string) string {
	source = strings.ToLower(strings.TrimSpace(source))
	if source == "" {
		return application.DefaultSource
	}
	if len(source) > 50 {
		source = source[:50]
	}
	return source
}

// List returns the caller's own applications: submitted ones for students, received
// ones for employers.
func (s *ApplicationService) List(ctx context.Context, caller user.Caller) ([]application.Application, error) {
	switch caller.Role {
	case user.RoleStudent:
		return s.repo.ListByApplicant(ctx, caller.ID)
	case user.RoleEmployer:
		return s.repo.ListByEmployer(ctx, caller.ID)
	default:
		return nil, common.NewError(common.CodeForbidden, "role cannot list applications", nil)
	}
}

func (s *ApplicationService) Get(ctx context.Context, id common.UUID) (*application.Application, error) {
	return s.repo.GetByID(ctx, id)
}

package app

import (
	"context"
	"strings"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
)

type JobService struct {
	repo  job.Repository
	clock func() time.Time
}

func NewJobService(repo job.Repository) *JobService {
	return &JobService{repo: repo, clock: func() time.Time { return time.Now().UTC() }}
}

func (s *JobService) Create(ctx context.Context, caller user.Caller, j job.Job) (*job.Job, error) {
	if caller.Role != user.RoleEmployer {
		return nil, common.NewError(common.CodeForbidden, "only employers can post jobs", nil)
	}
	j.Title = strings.TrimSpace(j.Title)
	j.Description = strings.TrimSpace(j.Description)
	j.Location = strings.TrimSpace(j.Location)
	if err := validateJob(j); err != nil {
		return nil, err
	}
	j.CreatedBy = caller.ID
	j.IsActive = true
	if j.PostedDate.IsZero() {
		j.PostedDate = s.clock()
	}
	return s.repo.Create(ctx, j)
}

func validateJob(j job.Job) error {
	fields := map[string]string{}
	if len(j.Title) < 4 || len(j.Title) > 200 {
		fields["title"] = "title must be between 4 and 200 characters"
	}
	if j.Description == "" {
		fields["description"] = "description is required"
	}
	if len(j.Location) > 200 {
		fields["location"] = "location must be at most 200 characters"
	}
	if len(fields) > 0 {
		return common.NewValidationError("invalid job", fields)
	}
	return nil
}

// View returns the job and records the read. Inactive jobs are visible to their owner only,
// and owner reads are not counted as views.
func (s *JobService) View(ctx context.Context, caller user.Caller, id common.UUID, ipAddress string) (*job.Job, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	isOwner := caller.Authenticated() && item.CreatedBy == caller.ID
	if !item.IsActive && !isOwner && !caller.IsStaff {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	if isOwner {
		return item, nil
	}
	view := job.View{JobID: item.ID, IPAddress: ipAddress, ViewedAt: s.clock()}
	if caller.Authenticated() {
		viewerID := caller.ID
		view.ViewerID = &viewerID
	}
	if _, err := s.repo.RecordView(ctx, view); err != nil {
		return nil, err
	}
	item.ViewCount++
	return item, nil
}

func (s *JobService) ListByCreator(ctx context.Context, caller user.Caller) ([]job.Job, error) {
	if caller.Role != user.RoleEmployer {
		return nil, common.NewError(common.CodeForbidden, "only employers have jobs", nil)
	}
	return s.repo.ListByCreator(ctx, caller.ID)
}

func (s *JobService) SetActive(ctx context.Context, caller user.Caller, id common.UUID, active bool) (*job.Job, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.CreatedBy != caller.ID && !caller.IsStaff {
		return nil, common.NewError(common.CodeForbidden, "job belongs to another employer", nil)
	}
	return s.repo.SetActive(ctx, id, item.CreatedBy, active)
}

package application

import (
	"context"

	"jobboard/internal/common"
)

type Repository interface {
	Create(ctx context.Context, app Application) (*Application, error)
	GetByID(ctx context.Context, id common.UUID) (*Application, error)
	FindByJobAndApplicant(ctx context.Context, jobID, applicantID common.UUID) (*Application, error)
	ListByApplicant(ctx context.Context, applicantID common.UUID) ([]Application, error)
	ListByEmployer(ctx context.Context, employerID common.UUID) ([]Application, error)
	// UpdateStatus stamps decided_at only when it is still empty and status is final.
	UpdateStatus(ctx context.Context, id common.UUID, status Status) (*Application, error)
}

type MetricRepository interface {
	// Upsert is keyed by application id; source is kept when the update carries an empty one.
	Upsert(ctx context.Context, metric Metric) (*Metric, error)
	GetByID(ctx context.Context, id common.UUID) (*Metric, error)
}

package job

import (
	"context"

	"jobboard/internal/common"
)

type Repository interface {
	Create(ctx context.Context, job Job) (*Job, error)
	GetByID(ctx context.Context, id common.UUID) (*Job, error)
	ListByCreator(ctx context.Context, creatorID common.UUID) ([]Job, error)
	SetActive(ctx context.Context, id, creatorID common.UUID, active bool) (*Job, error)
	// RecordView stores the view and bumps view_count atomically.
	RecordView(ctx context.Context, view View) (*View, error)
}

package user

import (
	"context"

	"jobboard/internal/common"
)

type Repository interface {
	GetByID(ctx context.Context, id common.UUID) (*User, error)
	ListByRole(ctx context.Context, role Role) ([]User, error)
}

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"jobboard/internal/common"
	"jobboard/internal/domain/user"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id common.UUID) (*user.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, role, is_staff, company_id, created_at, updated_at FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "user not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load user", err)
	}
	return u, nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, role, is_staff, company_id, created_at, updated_at FROM users WHERE role = $1 ORDER BY id`, role)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list users", err)
	}
	defer rows.Close()
	var items []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan user", err)
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list users", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*user.User, error) {
	var (
		u         user.User
		role      string
		companyID sql.NullString
	)
	if err := row.Scan(&u.ID, &role, &u.IsStaff, &companyID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	// Unknown stored roles surface as an empty role, which the access policy rejects.
	u.Role, _ = user.ParseRole(role)
	if companyID.Valid && companyID.String != "" {
		id := common.UUID(companyID.String)
		u.CompanyID = &id
	}
	return &u, nil
}

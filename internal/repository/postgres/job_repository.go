package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/domain/job"
)

const jobColumns = `id, created_by, title, description, location, is_active, posted_date, view_count, created_at, updated_at`

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, j job.Job) (*job.Job, error) {
	j.ID = common.NewUUID()
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now
	if j.PostedDate.IsZero() {
		j.PostedDate = now
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO jobs (`+jobColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9)`,
		j.ID, j.CreatedBy, j.Title, j.Description, j.Location, j.IsActive, j.PostedDate, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create job", err)
	}
	j.ViewCount = 0
	return &j, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id common.UUID) (*job.Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "job not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load job", err)
	}
	return j, nil
}

func (r *JobRepository) ListByCreator(ctx context.Context, creatorID common.UUID) ([]job.Job, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE created_by = $1 ORDER BY posted_date DESC`, creatorID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list jobs", err)
	}
	defer rows.Close()
	var items []job.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan job", err)
		}
		items = append(items, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list jobs", err)
	}
	return items, nil
}

func (r *JobRepository) SetActive(ctx context.Context, id, creatorID common.UUID, active bool) (*job.Job, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE jobs SET is_active = $1, updated_at = $2 WHERE id = $3 AND created_by = $4`,
		active, time.Now().UTC(), id, creatorID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update job", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "job not found", sql.ErrNoRows)
	}
	return r.GetByID(ctx, id)
}

// RecordView appends the view and bumps the denormalized counter in one transaction.
func (r *JobRepository) RecordView(ctx context.Context, view job.View) (*job.View, error) {
	view.ID = common.NewUUID()
	if view.ViewedAt.IsZero() {
		view.ViewedAt = time.Now().UTC()
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `UPDATE jobs SET view_count = view_count + 1 WHERE id = $1`, view.JobID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to count job view", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "job not found", sql.ErrNoRows)
	}
	var viewerID any
	if view.ViewerID != nil {
		viewerID = *view.ViewerID
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO job_views (id, job_id, viewer_id, ip_address, viewed_at, duration)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		view.ID, view.JobID, viewerID, view.IPAddress, view.ViewedAt, view.Duration); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to record job view", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to commit job view", err)
	}
	return &view, nil
}

func scanJob(row rowScanner) (*job.Job, error) {
	var j job.Job
	if err := row.Scan(&j.ID, &j.CreatedBy, &j.Title, &j.Description, &j.Location, &j.IsActive, &j.PostedDate, &j.ViewCount, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	return &j, nil
}

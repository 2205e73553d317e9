package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"jobboard/internal/common"
	"jobboard/internal/domain/application"
)

const applicationColumns = `a.id, a.job_id, a.applicant_id, a.status, a.created_at, a.updated_at, a.decided_at`

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	app.ID = common.NewUUID()
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO applications (id, job_id, applicant_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		app.ID, app.JobID, app.ApplicantID, app.Status, app.CreatedAt, app.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeConflict, "already applied", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create application", err)
	}
	return &app, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications a WHERE a.id = $1`, id)
	return getApplication(row)
}

func (r *ApplicationRepository) FindByJobAndApplicant(ctx context.Context, jobID, applicantID common.UUID) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications a WHERE a.job_id = $1 AND a.applicant_id = $2`, jobID, applicantID)
	return getApplication(row)
}

func (r *ApplicationRepository) ListByApplicant(ctx context.Context, applicantID common.UUID) ([]application.Application, error) {
	return r.list(ctx, `SELECT `+applicationColumns+` FROM applications a WHERE a.applicant_id = $1 ORDER BY a.created_at DESC`, applicantID)
}

func (r *ApplicationRepository) ListByEmployer(ctx context.Context, employerID common.UUID) ([]application.Application, error) {
	return r.list(ctx, `SELECT `+applicationColumns+`
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE j.created_by = $1
		ORDER BY a.created_at DESC`, employerID)
}

// UpdateStatus sets decided_at the first time the application reaches a final status.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id common.UUID, status application.Status) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE applications a
		SET status = $1,
			updated_at = $2,
			decided_at = CASE WHEN a.decided_at IS NULL AND $1 = ANY($3::text[]) THEN $2 ELSE a.decided_at END
		WHERE a.id = $4
		RETURNING `+applicationColumns,
		string(status), time.Now().UTC(), pq.Array(finalStatuses()), id)
	return getApplication(row)
}

func (r *ApplicationRepository) list(ctx context.Context, query string, args ...any) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	defer rows.Close()
	var items []application.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan application", err)
		}
		items = append(items, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	return items, nil
}

func getApplication(row rowScanner) (*application.Application, error) {
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "application not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load application", err)
	}
	return app, nil
}

func scanApplication(row rowScanner) (*application.Application, error) {
	var (
		app       application.Application
		decidedAt sql.NullTime
	)
	if err := row.Scan(&app.ID, &app.JobID, &app.ApplicantID, &app.Status, &app.CreatedAt, &app.UpdatedAt, &decidedAt); err != nil {
		return nil, err
	}
	if decidedAt.Valid {
		t := decidedAt.Time
		app.DecidedAt = &t
	}
	return &app, nil
}

func finalStatuses() []string {
	var out []string
	for _, status := range application.Statuses() {
		if status.Final() {
			out = append(out, string(status))
		}
	}
	return out
}

type ApplicationMetricRepository struct {
	db *sql.DB
}

func NewApplicationMetricRepository(db *sql.DB) *ApplicationMetricRepository {
	return &ApplicationMetricRepository{db: db}
}

// Upsert keys on application_id. An empty source keeps the stored one.
func (r *ApplicationMetricRepository) Upsert(ctx context.Context, metric application.Metric) (*application.Metric, error) {
	now := time.Now().UTC()
	row := r.db.QueryRowContext(ctx, `INSERT INTO job_application_metrics (id, application_id, job_id, status, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, COALESCE(NULLIF($5::text, ''), $6), $7, $7)
		ON CONFLICT (application_id) DO UPDATE SET
			job_id = EXCLUDED.job_id,
			status = EXCLUDED.status,
			source = CASE WHEN $5::text = '' THEN job_application_metrics.source ELSE EXCLUDED.source END,
			updated_at = EXCLUDED.updated_at
		RETURNING id, application_id, job_id, status, source, created_at, updated_at`,
		common.NewUUID(), metric.ApplicationID, metric.JobID, string(metric.Status), metric.Source, application.DefaultSource, now)
	out, err := scanMetric(row)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to upsert application metric", err)
	}
	return out, nil
}

func (r *ApplicationMetricRepository) GetByID(ctx context.Context, id common.UUID) (*application.Metric, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, application_id, job_id, status, source, created_at, updated_at FROM job_application_metrics WHERE id = $1`, id)
	out, err := scanMetric(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "application metric not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load application metric", err)
	}
	return out, nil
}

func scanMetric(row rowScanner) (*application.Metric, error) {
	var m application.Metric
	if err := row.Scan(&m.ID, &m.ApplicationID, &m.JobID, &m.Status, &m.Source, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

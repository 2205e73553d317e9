package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"jobboard/internal/common"
	"jobboard/internal/domain/analytics"
	"jobboard/internal/domain/application"
)

type AnalyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// scopeFilter returns a WHERE/AND fragment restricting jobs aliased j to the scope owner.
// The placeholder index continues after args. An empty scope matches nothing.
func scopeFilter(scope analytics.Scope, keyword string, args []any) (string, []any) {
	if scope.Empty() {
		return " " + keyword + " FALSE", args
	}
	if !scope.Restricted() {
		return "", args
	}
	args = append(args, scope.EmployerID)
	return fmt.Sprintf(" %s j.created_by = $%d", keyword, len(args)), args
}

func (r *AnalyticsRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to count", err)
	}
	return n, nil
}

func (r *AnalyticsRepository) CountJobs(ctx context.Context, scope analytics.Scope) (int64, error) {
	filter, args := scopeFilter(scope, "WHERE", nil)
	return r.count(ctx, `SELECT COUNT(*) FROM jobs j`+filter, args...)
}

func (r *AnalyticsRepository) CountActiveJobs(ctx context.Context, scope analytics.Scope) (int64, error) {
	filter, args := scopeFilter(scope, "AND", nil)
	return r.count(ctx, `SELECT COUNT(*) FROM jobs j WHERE j.is_active`+filter, args...)
}

func (r *AnalyticsRepository) CountViews(ctx context.Context, scope analytics.Scope) (int64, error) {
	filter, args := scopeFilter(scope, "WHERE", nil)
	return r.count(ctx, `SELECT COUNT(*) FROM job_views v JOIN jobs j ON j.id = v.job_id`+filter, args...)
}

func statusCountsQuery(scope analytics.Scope) (string, []any) {
	filter, args := scopeFilter(scope, "AND", []any{pq.Array(statusNames())})
	return `SELECT a.status, COUNT(*)
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE a.status = ANY($1::text[])` + filter + `
		GROUP BY a.status`, args
}

func (r *AnalyticsRepository) ApplicationStatusCounts(ctx context.Context, scope analytics.Scope) (map[application.Status]int64, error) {
	query, args := statusCountsQuery(scope)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to count applications by status", err)
	}
	defer rows.Close()
	counts := make(map[application.Status]int64)
	for rows.Next() {
		var (
			status application.Status
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan status count", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to count applications by status", err)
	}
	return counts, nil
}

// bucketQuery counts rows of table (aliased alias) per date_trunc bucket of column inside the window.
// Scoped queries join jobs j; job queries filter on job_id directly.
func bucketQuery(table, alias, column string, scope *analytics.Scope, jobID common.UUID, window analytics.Window) (string, []any) {
	args := []any{truncUnit(window), window.Start, window.End}
	var from, filter string
	if scope != nil {
		from = fmt.Sprintf("%s %s\n\t\tJOIN jobs j ON j.id = %s.job_id", table, alias, alias)
		filter, args = scopeFilter(*scope, "AND", args)
	} else {
		from = table + " " + alias
		args = append(args, jobID)
		filter = fmt.Sprintf(" AND %s.job_id = $%d", alias, len(args))
	}
	return fmt.Sprintf(`SELECT date_trunc($1, %[1]s.%[2]s AT TIME ZONE 'UTC') AS bucket, COUNT(*)
		FROM %[3]s
		WHERE %[1]s.%[2]s >= $2 AND %[1]s.%[2]s < $3%[4]s
		GROUP BY bucket
		ORDER BY bucket`, alias, column, from, filter), args
}

func (r *AnalyticsRepository) ApplicationBuckets(ctx context.Context, scope analytics.Scope, window analytics.Window) ([]analytics.BucketCount, error) {
	query, args := bucketQuery("applications", "a", "created_at", &scope, "", window)
	return r.buckets(ctx, query, args...)
}

func (r *AnalyticsRepository) ViewBuckets(ctx context.Context, scope analytics.Scope, window analytics.Window) ([]analytics.BucketCount, error) {
	query, args := bucketQuery("job_views", "v", "viewed_at", &scope, "", window)
	return r.buckets(ctx, query, args...)
}

func (r *AnalyticsRepository) JobApplicationBuckets(ctx context.Context, jobID common.UUID, window analytics.Window) ([]analytics.BucketCount, error) {
	query, args := bucketQuery("applications", "a", "created_at", nil, jobID, window)
	return r.buckets(ctx, query, args...)
}

func (r *AnalyticsRepository) JobViewBuckets(ctx context.Context, jobID common.UUID, window analytics.Window) ([]analytics.BucketCount, error) {
	query, args := bucketQuery("job_views", "v", "viewed_at", nil, jobID, window)
	return r.buckets(ctx, query, args...)
}

func (r *AnalyticsRepository) buckets(ctx context.Context, query string, args ...any) ([]analytics.BucketCount, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to bucket counts", err)
	}
	defer rows.Close()
	var items []analytics.BucketCount
	for rows.Next() {
		var (
			start time.Time
			n     int64
		)
		if err := rows.Scan(&start, &n); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan bucket", err)
		}
		// date_trunc on a UTC-shifted timestamp yields a zone-less wall time.
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		items = append(items, analytics.BucketCount{Start: start, Count: n})
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to bucket counts", err)
	}
	return items, nil
}

func popularJobsQuery(scope analytics.Scope, limit int) (string, []any) {
	filter, args := scopeFilter(scope, "WHERE", nil)
	args = append(args, limit)
	return fmt.Sprintf(`SELECT j.id, j.title, j.view_count, COUNT(a.id) AS application_count
		FROM jobs j
		LEFT JOIN applications a ON a.job_id = j.id%s
		GROUP BY j.id, j.title, j.view_count
		ORDER BY j.view_count DESC, application_count DESC, j.id ASC
		LIMIT $%d`, filter, len(args)), args
}

func (r *AnalyticsRepository) PopularJobCandidates(ctx context.Context, scope analytics.Scope, limit int) ([]analytics.PopularJob, error) {
	query, args := popularJobsQuery(scope, limit)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list popular jobs", err)
	}
	defer rows.Close()
	var items []analytics.PopularJob
	for rows.Next() {
		var item analytics.PopularJob
		if err := rows.Scan(&item.JobID, &item.Title, &item.ViewCount, &item.ApplicationCount); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan popular job", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list popular jobs", err)
	}
	return items, nil
}

func (r *AnalyticsRepository) EmployerActivity(ctx context.Context, employerID common.UUID) (*analytics.EmployerActivity, error) {
	scope := analytics.SelfScope(employerID)
	totalJobs, err := r.CountJobs(ctx, scope)
	if err != nil {
		return nil, err
	}
	counts, err := r.ApplicationStatusCounts(ctx, scope)
	if err != nil {
		return nil, err
	}
	query, args := hiresQuery(employerID)
	hires, err := (&ApplicationRepository{db: r.db}).list(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &analytics.EmployerActivity{TotalJobs: totalJobs, StatusCounts: counts, Hires: hires}, nil
}

func hiresQuery(employerID common.UUID) (string, []any) {
	return `SELECT ` + applicationColumns + `
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE j.created_by = $1 AND a.status = $2`, []any{employerID, string(application.HiredStatus)}
}

func truncUnit(window analytics.Window) string {
	if window.Granularity == analytics.GranularityMonth {
		return "month"
	}
	return "day"
}

func statusNames() []string {
	statuses := application.Statuses()
	names := make([]string, 0, len(statuses))
	for _, status := range statuses {
		names = append(names, string(status))
	}
	return names
}

type EmployerMetricRepository struct {
	db *sql.DB
}

func NewEmployerMetricRepository(db *sql.DB) *EmployerMetricRepository {
	return &EmployerMetricRepository{db: db}
}

// Upsert writes the whole snapshot in a single statement keyed by employer_id.
func (r *EmployerMetricRepository) Upsert(ctx context.Context, metric analytics.EmployerMetric) (*analytics.EmployerMetric, error) {
	if metric.UpdatedAt.IsZero() {
		metric.UpdatedAt = time.Now().UTC()
	}
	row := r.db.QueryRowContext(ctx, `INSERT INTO employer_metrics (id, employer_id, total_jobs, total_applications, total_interviews, total_hires, average_time_to_hire, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (employer_id) DO UPDATE SET
			total_jobs = EXCLUDED.total_jobs,
			total_applications = EXCLUDED.total_applications,
			total_interviews = EXCLUDED.total_interviews,
			total_hires = EXCLUDED.total_hires,
			average_time_to_hire = EXCLUDED.average_time_to_hire,
			updated_at = EXCLUDED.updated_at
		RETURNING id, employer_id, total_jobs, total_applications, total_interviews, total_hires, average_time_to_hire, updated_at`,
		common.NewUUID(), metric.EmployerID, metric.TotalJobs, metric.TotalApplications, metric.TotalInterviews, metric.TotalHires, metric.AverageTimeToHire, metric.UpdatedAt)
	out, err := scanEmployerMetric(row)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to upsert employer metric", err)
	}
	return out, nil
}

func (r *EmployerMetricRepository) ListByEmployer(ctx context.Context, employerID common.UUID) ([]analytics.EmployerMetric, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, employer_id, total_jobs, total_applications, total_interviews, total_hires, average_time_to_hire, updated_at
		FROM employer_metrics WHERE employer_id = $1 ORDER BY updated_at DESC`, employerID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list employer metrics", err)
	}
	defer rows.Close()
	var items []analytics.EmployerMetric
	for rows.Next() {
		m, err := scanEmployerMetric(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan employer metric", err)
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list employer metrics", err)
	}
	return items, nil
}

func scanEmployerMetric(row rowScanner) (*analytics.EmployerMetric, error) {
	var (
		m   analytics.EmployerMetric
		avg sql.NullFloat64
	)
	if err := row.Scan(&m.ID, &m.EmployerID, &m.TotalJobs, &m.TotalApplications, &m.TotalInterviews, &m.TotalHires, &avg, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if avg.Valid {
		v := avg.Float64
		m.AverageTimeToHire = &v
	}
	return &m, nil
}

package app

import (
	"context"
	"testing"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/domain/analytics"
	"jobboard/internal/domain/application"
	"jobboard/internal/domain/user"
)

func newSummaryService(store *memStore) *EmployerSummaryService {
	users := fakeUserRepo{s: store}
	service := NewEmployerSummaryService(users, fakeAnalyticsRepo{s: store}, fakeEmployerMetricRepo{s: store}, NewAccessPolicy(users), nil)
	service.clock = fixedClock(testNow)
	return service
}

func TestRecomputeScenario(t *testing.T) {
	store := newMemStore(testNow)
	employer := store.addUser(user.RoleEmployer, false, true)
	jobA := store.addJob(employer.ID, "Backend engineer", true, 0)
	jobB := store.addJob(employer.ID, "Data analyst", true, 0)
	created := time.Date(2026, time.February, 20, 9, 0, 0, 0, time.UTC)
	decided := time.Date(2026, time.March, 1, 21, 0, 0, 0, time.UTC)
	store.addApplication(jobA.ID, application.StatusAccepted, created, &decided)
	store.addApplication(jobA.ID, application.StatusInterviewed, created, nil)
	store.addApplication(jobB.ID, application.StatusPending, created, nil)

	service := newSummaryService(store)
	report, err := service.RecomputeAll(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if report.Processed != 1 || report.Failed != 0 {
		t.Fatalf("expected 1 processed and 0 failed, got %d/%d", report.Processed, report.Failed)
	}
	rows := store.employerMetrics[employer.ID]
	if len(rows) != 1 {
		t.Fatalf("expected 1 metric row, got %d", len(rows))
	}
	row := rows[0]
	if row.TotalJobs != 2 || row.TotalApplications != 3 || row.TotalInterviews != 1 || row.TotalHires != 1 {
		t.Fatalf("unexpected counters %+v", row)
	}
	if row.AverageTimeToHire == nil || *row.AverageTimeToHire != 9 {
		t.Fatalf("expected average time to hire 9, got %v", row.AverageTimeToHire)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	store := newMemStore(testNow)
	employer := store.addUser(user.RoleEmployer, false, true)
	j := store.addJob(employer.ID, "Backend engineer", true, 0)
	store.addApplication(j.ID, application.StatusRejected, testNow.AddDate(0, 0, -3), nil)

	service := newSummaryService(store)
	if _, err := service.RecomputeAll(context.Background()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	first := store.employerMetrics[employer.ID][0]
	service.clock = fixedClock(testNow.Add(time.Hour))
	if _, err := service.RecomputeAll(context.Background()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	rows := store.employerMetrics[employer.ID]
	if len(rows) != 1 {
		t.Fatalf("expected 1 metric row, got %d", len(rows))
	}
	if !rows[0].SameValues(first) {
		t.Fatalf("expected identical values, got %+v and %+v", first, rows[0])
	}
	if rows[0].ID != first.ID {
		t.Fatalf("expected the row to be updated in place")
	}
	if rows[0].AverageTimeToHire != nil {
		t.Fatalf("expected nil average without hires, got %v", *rows[0].AverageTimeToHire)
	}
}

func TestRecomputeWithoutEmployers(t *testing.T) {
	store := newMemStore(testNow)
	store.addUser(user.RoleStudent, false, false)
	report, err := newSummaryService(store).RecomputeAll(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if report.Processed != 0 || report.Failed != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
	if len(store.employerMetrics) != 0 {
		t.Fatalf("expected no metric rows, got %d", len(store.employerMetrics))
	}
}

func TestRecomputeIsolatesFailures(t *testing.T) {
	store := newMemStore(testNow)
	broken := store.addUser(user.RoleEmployer, false, true)
	healthy := store.addUser(user.RoleEmployer, false, true)
	store.addJob(healthy.ID, "Backend engineer", true, 0)
	store.failActivity[broken.ID] = true

	report, err := newSummaryService(store).RecomputeAll(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if report.Processed != 1 || report.Failed != 1 {
		t.Fatalf("expected 1 processed and 1 failed, got %d/%d", report.Processed, report.Failed)
	}
	if report.Failures[0].EmployerID != broken.ID {
		t.Fatalf("expected failure for %s, got %s", broken.ID, report.Failures[0].EmployerID)
	}
	if len(store.employerMetrics[healthy.ID]) != 1 {
		t.Fatal("expected healthy employer to be recomputed")
	}
}

func TestRecomputeStopsOnCancel(t *testing.T) {
	store := newMemStore(testNow)
	store.addUser(user.RoleEmployer, false, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := newSummaryService(store).RecomputeAll(ctx)
	if err == nil {
		t.Fatal("expected context error")
	}
	if report.Processed != 0 {
		t.Fatalf("expected nothing processed, got %d", report.Processed)
	}
}

func TestAverageTimeToHireClampsAndFallsBack(t *testing.T) {
	created := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
	decidedBefore := created.Add(-time.Hour)
	hires := []application.Application{
		{CreatedAt: created, DecidedAt: &decidedBefore},
		{CreatedAt: created, UpdatedAt: created.AddDate(0, 0, 4).Add(23 * time.Hour)},
	}
	avg := averageTimeToHire(hires)
	if avg == nil || *avg != 2 {
		t.Fatalf("expected average 2, got %v", avg)
	}
	if averageTimeToHire(nil) != nil {
		t.Fatal("expected nil average without hires")
	}
}

func TestSummarySumsRowsAndUsesLatestAverage(t *testing.T) {
	employerID := common.NewUUID()
	older, newer := 4.0, 7.5
	rows := []analytics.EmployerMetric{
		{EmployerID: employerID, TotalJobs: 1, TotalApplications: 2, TotalHires: 1, AverageTimeToHire: &newer, UpdatedAt: testNow},
		{EmployerID: employerID, TotalJobs: 2, TotalApplications: 5, TotalInterviews: 3, AverageTimeToHire: &older, UpdatedAt: testNow.Add(-time.Hour)},
	}
	summary := SumEmployerMetrics(employerID, rows)
	if summary.TotalJobs != 3 || summary.TotalApplications != 7 || summary.TotalInterviews != 3 || summary.TotalHires != 1 {
		t.Fatalf("unexpected totals %+v", summary)
	}
	if summary.AverageTimeToHire == nil || *summary.AverageTimeToHire != newer {
		t.Fatalf("expected latest average %v, got %v", newer, summary.AverageTimeToHire)
	}
}

func TestSummaryAccess(t *testing.T) {
	store := newMemStore(testNow)
	employer := store.addUser(user.RoleEmployer, false, true)
	orphan := store.addUser(user.RoleEmployer, false, false)
	student := store.addUser(user.RoleStudent, false, false)
	staff := store.addUser(user.RoleAdmin, true, false)
	store.addJob(employer.ID, "Backend engineer", true, 0)
	service := newSummaryService(store)
	if _, err := service.RecomputeAll(context.Background()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	summary, err := service.Summary(context.Background(), callerOf(employer), nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if summary.TotalJobs != 1 || summary.UpdatedAt == nil {
		t.Fatalf("unexpected summary %+v", summary)
	}

	empty, err := service.Summary(context.Background(), callerOf(orphan), nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if empty.TotalJobs != 0 || empty.AverageTimeToHire != nil {
		t.Fatalf("expected zero summary, got %+v", empty)
	}

	if _, err := service.Summary(context.Background(), callerOf(student), nil); !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := service.Summary(context.Background(), callerOf(staff), nil); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	target := employer.ID
	override, err := service.Summary(context.Background(), callerOf(staff), &target)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if override.EmployerID != employer.ID || override.TotalJobs != 1 {
		t.Fatalf("unexpected override summary %+v", override)
	}
}

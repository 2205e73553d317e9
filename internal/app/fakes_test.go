package app

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/domain/analytics"
	"jobboard/internal/domain/application"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
)

// memStore backs every fake repository so analytics see the same rows the
// job and application services write.
type memStore struct {
	mu              sync.Mutex
	users           map[common.UUID]user.User
	jobs            map[common.UUID]*job.Job
	views           []job.View
	apps            map[common.UUID]*application.Application
	metrics         map[common.UUID]*application.Metric
	employerMetrics map[common.UUID][]analytics.EmployerMetric
	failActivity    map[common.UUID]bool
	failQueries     bool
	now             time.Time
}

func newMemStore(now time.Time) *memStore {
	return &memStore{
		users:           make(map[common.UUID]user.User),
		jobs:            make(map[common.UUID]*job.Job),
		apps:            make(map[common.UUID]*application.Application),
		metrics:         make(map[common.UUID]*application.Metric),
		employerMetrics: make(map[common.UUID][]analytics.EmployerMetric),
		failActivity:    make(map[common.UUID]bool),
		now:             now,
	}
}

var errQueryFailed = errors.New("query failed")

func (s *memStore) addUser(role user.Role, staff bool, withCompany bool) user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user.User{ID: common.NewUUID(), Role: role, IsStaff: staff, CreatedAt: s.now}
	if withCompany {
		company := common.NewUUID()
		u.CompanyID = &company
	}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addJob(owner common.UUID, title string, active bool, views int64) *job.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := &job.Job{ID: common.NewUUID(), CreatedBy: owner, Title: title, IsActive: active, PostedDate: s.now, ViewCount: views, CreatedAt: s.now, UpdatedAt: s.now}
	s.jobs[j.ID] = j
	return j
}

func (s *memStore) addApplication(jobID common.UUID, status application.Status, createdAt time.Time, decidedAt *time.Time) *application.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &application.Application{ID: common.NewUUID(), JobID: jobID, ApplicantID: common.NewUUID(), Status: status, CreatedAt: createdAt, UpdatedAt: createdAt, DecidedAt: decidedAt}
	s.apps[a.ID] = a
	return a
}

func (s *memStore) addView(jobID common.UUID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = append(s.views, job.View{ID: common.NewUUID(), JobID: jobID, IPAddress: "127.0.0.1", ViewedAt: at})
}

func callerOf(u user.User) user.Caller {
	return user.Caller{ID: u.ID, Role: u.Role, IsStaff: u.IsStaff, CompanyID: u.CompanyID}
}

type fakeUserRepo struct{ s *memStore }

func (r fakeUserRepo) GetByID(ctx context.Context, id common.UUID) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "user not found", nil)
	}
	return &u, nil
}

func (r fakeUserRepo) ListByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var items []user.User
	for _, u := range r.s.users {
		if u.Role == role {
			items = append(items, u)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

type fakeJobRepo struct{ s *memStore }

func (r fakeJobRepo) Create(ctx context.Context, j job.Job) (*job.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j.ID = common.NewUUID()
	j.CreatedAt = r.s.now
	j.UpdatedAt = r.s.now
	r.s.jobs[j.ID] = &j
	out := j
	return &out, nil
}

func (r fakeJobRepo) GetByID(ctx context.Context, id common.UUID) (*job.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	out := *j
	return &out, nil
}

func (r fakeJobRepo) ListByCreator(ctx context.Context, creatorID common.UUID) ([]job.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var items []job.Job
	for _, j := range r.s.jobs {
		if j.CreatedBy == creatorID {
			items = append(items, *j)
		}
	}
	return items, nil
}

func (r fakeJobRepo) SetActive(ctx context.Context, id, creatorID common.UUID, active bool) (*job.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok || j.CreatedBy != creatorID {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	j.IsActive = active
	out := *j
	return &out, nil
}

func (r fakeJobRepo) RecordView(ctx context.Context, view job.View) (*job.View, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[view.JobID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	view.ID = common.NewUUID()
	r.s.views = append(r.s.views, view)
	j.ViewCount++
	return &view, nil
}

type fakeApplicationRepo struct{ s *memStore }

func (r fakeApplicationRepo) Create(ctx context.Context, a application.Application) (*application.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.apps {
		if existing.JobID == a.JobID && existing.ApplicantID == a.ApplicantID {
			return nil, common.NewError(common.CodeConflict, "already applied", nil)
		}
	}
	a.ID = common.NewUUID()
	a.CreatedAt = r.s.now
	a.UpdatedAt = r.s.now
	r.s.apps[a.ID] = &a
	out := a
	return &out, nil
}

func (r fakeApplicationRepo) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.apps[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	out := *a
	return &out, nil
}

func (r fakeApplicationRepo) FindByJobAndApplicant(ctx context.Context, jobID, applicantID common.UUID) (*application.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.apps {
		if a.JobID == jobID && a.ApplicantID == applicantID {
			out := *a
			return &out, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "application not found", nil)
}

func (r fakeApplicationRepo) ListByApplicant(ctx context.Context, applicantID common.UUID) ([]application.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var items []application.Application
	for _, a := range r.s.apps {
		if a.ApplicantID == applicantID {
			items = append(items, *a)
		}
	}
	return items, nil
}

func (r fakeApplicationRepo) ListByEmployer(ctx context.Context, employerID common.UUID) ([]application.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var items []application.Application
	for _, a := range r.s.apps {
		if j := r.s.jobs[a.JobID]; j != nil && j.CreatedBy == employerID {
			items = append(items, *a)
		}
	}
	return items, nil
}

func (r fakeApplicationRepo) UpdateStatus(ctx context.Context, id common.UUID, status application.Status) (*application.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.apps[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	a.Status = status
	a.UpdatedAt = r.s.now
	if status.Final() && a.DecidedAt == nil {
		decided := r.s.now
		a.DecidedAt = &decided
	}
	out := *a
	return &out, nil
}

type fakeMetricRepo struct {
	s    *memStore
	fail bool
}

func (r *fakeMetricRepo) Upsert(ctx context.Context, m application.Metric) (*application.Metric, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.fail {
		return nil, errQueryFailed
	}
	for _, existing := range r.s.metrics {
		if existing.ApplicationID == m.ApplicationID {
			existing.Status = m.Status
			existing.UpdatedAt = r.s.now
			if m.Source != "" {
				existing.Source = m.Source
			}
			out := *existing
			return &out, nil
		}
	}
	m.ID = common.NewUUID()
	if m.Source == "" {
		m.Source = application.DefaultSource
	}
	m.CreatedAt = r.s.now
	m.UpdatedAt = r.s.now
	r.s.metrics[m.ID] = &m
	out := m
	return &out, nil
}

func (r *fakeMetricRepo) GetByID(ctx context.Context, id common.UUID) (*application.Metric, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.metrics[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application metric not found", nil)
	}
	out := *m
	return &out, nil
}

func (s *memStore) metricFor(applicationID common.UUID) *application.Metric {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.metrics {
		if m.ApplicationID == applicationID {
			out := *m
			return &out
		}
	}
	return nil
}

type fakeAnalyticsRepo struct{ s *memStore }

func (r fakeAnalyticsRepo) inScope(scope analytics.Scope, j *job.Job) bool {
	if scope.Empty() {
		return false
	}
	return !scope.Restricted() || j.CreatedBy == scope.EmployerID
}

func (r fakeAnalyticsRepo) CountJobs(ctx context.Context, scope analytics.Scope) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failQueries {
		return 0, errQueryFailed
	}
	var n int64
	for _, j := range r.s.jobs {
		if r.inScope(scope, j) {
			n++
		}
	}
	return n, nil
}

func (r fakeAnalyticsRepo) CountActiveJobs(ctx context.Context, scope analytics.Scope) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, j := range r.s.jobs {
		if r.inScope(scope, j) && j.IsActive {
			n++
		}
	}
	return n, nil
}

func (r fakeAnalyticsRepo) CountViews(ctx context.Context, scope analytics.Scope) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, v := range r.s.views {
		if j := r.s.jobs[v.JobID]; j != nil && r.inScope(scope, j) {
			n++
		}
	}
	return n, nil
}

func (r fakeAnalyticsRepo) ApplicationStatusCounts(ctx context.Context, scope analytics.Scope) (map[application.Status]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[application.Status]int64{}
	for _, a := range r.s.apps {
		if j := r.s.jobs[a.JobID]; j != nil && r.inScope(scope, j) {
			counts[a.Status]++
		}
	}
	return counts, nil
}

func (r fakeAnalyticsRepo) ApplicationBuckets(ctx context.Context, scope analytics.Scope, window analytics.Window) ([]analytics.BucketCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []analytics.BucketCount
	for _, a := range r.s.apps {
		if j := r.s.jobs[a.JobID]; j != nil && r.inScope(scope, j) && window.Contains(a.CreatedAt) {
			out = append(out, analytics.BucketCount{Start: analytics.Truncate(a.CreatedAt, window.Granularity), Count: 1})
		}
	}
	return out, nil
}

func (r fakeAnalyticsRepo) ViewBuckets(ctx context.Context, scope analytics.Scope, window analytics.Window) ([]analytics.BucketCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []analytics.BucketCount
	for _, v := range r.s.views {
		if j := r.s.jobs[v.JobID]; j != nil && r.inScope(scope, j) && window.Contains(v.ViewedAt) {
			out = append(out, analytics.BucketCount{Start: analytics.Truncate(v.ViewedAt, window.Granularity), Count: 1})
		}
	}
	return out, nil
}

func (r fakeAnalyticsRepo) PopularJobCandidates(ctx context.Context, scope analytics.Scope, limit int) ([]analytics.PopularJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []analytics.PopularJob
	for _, j := range r.s.jobs {
		if !r.inScope(scope, j) {
			continue
		}
		item := analytics.PopularJob{JobID: j.ID, Title: j.Title, ViewCount: j.ViewCount}
		for _, a := range r.s.apps {
			if a.JobID == j.ID {
				item.ApplicationCount++
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (r fakeAnalyticsRepo) JobApplicationBuckets(ctx context.Context, jobID common.UUID, window analytics.Window) ([]analytics.BucketCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []analytics.BucketCount
	for _, a := range r.s.apps {
		if a.JobID == jobID && window.Contains(a.CreatedAt) {
			out = append(out, analytics.BucketCount{Start: a.CreatedAt, Count: 1})
		}
	}
	return out, nil
}

func (r fakeAnalyticsRepo) JobViewBuckets(ctx context.Context, jobID common.UUID, window analytics.Window) ([]analytics.BucketCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []analytics.BucketCount
	for _, v := range r.s.views {
		if v.JobID == jobID && window.Contains(v.ViewedAt) {
			out = append(out, analytics.BucketCount{Start: v.ViewedAt, Count: 1})
		}
	}
	return out, nil
}

func (r fakeAnalyticsRepo) EmployerActivity(ctx context.Context, employerID common.UUID) (*analytics.EmployerActivity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failActivity[employerID] {
		return nil, errQueryFailed
	}
	activity := &analytics.EmployerActivity{StatusCounts: map[application.Status]int64{}}
	for _, j := range r.s.jobs {
		if j.CreatedBy == employerID {
			activity.TotalJobs++
		}
	}
	for _, a := range r.s.apps {
		j := r.s.jobs[a.JobID]
		if j == nil || j.CreatedBy != employerID {
			continue
		}
		activity.StatusCounts[a.Status]++
		if a.Status == application.HiredStatus {
			activity.Hires = append(activity.Hires, *a)
		}
	}
	return activity, nil
}

type fakeEmployerMetricRepo struct{ s *memStore }

func (r fakeEmployerMetricRepo) Upsert(ctx context.Context, m analytics.EmployerMetric) (*analytics.EmployerMetric, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := r.s.employerMetrics[m.EmployerID]
	if len(rows) > 0 {
		m.ID = rows[0].ID
	} else {
		m.ID = common.NewUUID()
	}
	r.s.employerMetrics[m.EmployerID] = []analytics.EmployerMetric{m}
	out := m
	return &out, nil
}

func (r fakeEmployerMetricRepo) ListByEmployer(ctx context.Context, employerID common.UUID) ([]analytics.EmployerMetric, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]analytics.EmployerMetric(nil), r.s.employerMetrics[employerID]...), nil
}

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

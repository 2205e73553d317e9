package http

import (
	"net/http"
	"strings"
	"time"

	"jobboard/internal/domain/user"
	"jobboard/internal/http/handlers"
	"jobboard/internal/http/metrics"
	httpmw "jobboard/internal/http/middleware"
)

type RouterDependencies struct {
	JobHandler         *handlers.JobHandler
	ApplicationHandler *handlers.ApplicationHandler
	AnalyticsHandler   *handlers.AnalyticsHandler
	MaintenanceHandler *handlers.MaintenanceHandler
	MetricsHandler     *handlers.MetricsHandler
	AuthMiddleware     *httpmw.AuthMiddleware
	Limiter            httpmw.Limiter
	AnalyticsPerMinute int
	Metrics            *metrics.Collector
	RequestTimeout     time.Duration
}

type Router struct {
	deps    RouterDependencies
	handler http.Handler
}

const maxBodyBytes = 1 << 20

func NewRouter(deps RouterDependencies) http.Handler {
	r := &Router{deps: deps}
	r.handler = httpmw.Chain(r.baseHandler(), httpmw.RequestID, httpmw.Logging, httpmw.BodyLimit(maxBodyBytes), httpmw.Recover, httpmw.Metrics(deps.Metrics), httpmw.Timeout(deps.RequestTimeout))
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) baseHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path

		switch {
		case req.Method == http.MethodGet && path == "/health":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		case req.Method == http.MethodGet && path == "/metrics":
			r.deps.MetricsHandler.Get(w, req)
			return
		case req.Method == http.MethodPost && path == "/internal/metrics/recompute":
			r.deps.MaintenanceHandler.Recompute(w, req)
			return
		case req.Method == http.MethodGet && strings.HasPrefix(path, "/jobs/") && strings.Count(path, "/") == 2:
			r.deps.AuthMiddleware.OptionalAuthenticate(http.HandlerFunc(r.deps.JobHandler.Get)).ServeHTTP(w, req)
			return
		}

		if strings.HasPrefix(path, "/jobs") || strings.HasPrefix(path, "/employers") || strings.HasPrefix(path, "/applications") || strings.HasPrefix(path, "/analytics") {
			protected := r.deps.AuthMiddleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				r.handleProtected(w, req)
			}))
			protected.ServeHTTP(w, req)
			return
		}

		http.NotFound(w, req)
	})
}

func (r *Router) handleProtected(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path
	employerOnly := httpmw.RequireRole(user.RoleEmployer)

	switch {
	case req.Method == http.MethodPost && path == "/jobs":
		employerOnly(http.HandlerFunc(r.deps.JobHandler.Create)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPatch && strings.HasPrefix(path, "/jobs/") && strings.HasSuffix(path, "/active"):
		httpmw.RequireRoleOrStaff(user.RoleEmployer)(http.HandlerFunc(r.deps.JobHandler.SetActive)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && path == "/employers/jobs":
		employerOnly(http.HandlerFunc(r.deps.JobHandler.ListOwn)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && path == "/applications":
		httpmw.RequireRole(user.RoleStudent)(http.HandlerFunc(r.deps.ApplicationHandler.Apply)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && path == "/applications":
		r.deps.ApplicationHandler.List(w, req)
		return
	case req.Method == http.MethodPatch && strings.HasPrefix(path, "/applications/") && strings.HasSuffix(path, "/status"):
		r.deps.ApplicationHandler.UpdateStatus(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/analytics/"):
		r.analytics(w, req)
		return
	}

	http.NotFound(w, req)
}

// analytics routes share a per-caller rate limit; role checks live in the access policy
// so staff of any role get through.
func (r *Router) analytics(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path
	var handler http.HandlerFunc
	switch {
	case path == "/analytics/employer":
		handler = r.deps.AnalyticsHandler.Employer
	case path == "/analytics/employer/summary":
		handler = r.deps.AnalyticsHandler.EmployerSummary
	case strings.HasPrefix(path, "/analytics/application-metrics/") && strings.HasSuffix(path, "/trends"):
		handler = r.deps.AnalyticsHandler.Trends
	default:
		http.NotFound(w, req)
		return
	}
	limit := r.deps.AnalyticsPerMinute
	if limit <= 0 {
		handler.ServeHTTP(w, req)
		return
	}
	httpmw.RateLimit(r.deps.Limiter, httpmw.CallerKey("analytics"), limit, time.Minute)(handler).ServeHTTP(w, req)
}

package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"jobboard/internal/common"
	"jobboard/internal/domain/analytics"
	"jobboard/internal/domain/user"
	"jobboard/internal/http/middleware"
	"jobboard/internal/http/response"
)

type DashboardService interface {
	Dashboard(ctx context.Context, caller user.Caller, period analytics.Period, target *common.UUID) (*analytics.Dashboard, error)
}

type SummaryService interface {
	Summary(ctx context.Context, caller user.Caller, target *common.UUID) (*analytics.EmployerSummary, error)
}

type TrendsService interface {
	Trends(ctx context.Context, caller user.Caller, metricID common.UUID, days int) (*analytics.Trends, error)
}

type AnalyticsHandler struct {
	dashboards DashboardService
	summaries  SummaryService
	trends     TrendsService
}

func NewAnalyticsHandler(dashboards DashboardService, summaries SummaryService, trends TrendsService) *AnalyticsHandler {
	return &AnalyticsHandler{dashboards: dashboards, summaries: summaries, trends: trends}
}

// Employer serves GET /analytics/employer?period=&employer_id=.
func (h *AnalyticsHandler) Employer(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	target, err := optionalUUIDQuery(r, "employer_id")
	if err != nil {
		response.Error(w, err)
		return
	}
	period := analytics.ParsePeriod(r.URL.Query().Get("period"))
	dashboard, err := h.dashboards.Dashboard(r.Context(), caller, period, target)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, dashboard)
}

func (h *AnalyticsHandler) EmployerSummary(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	target, err := optionalUUIDQuery(r, "employer_id")
	if err != nil {
		response.Error(w, err)
		return
	}
	summary, err := h.summaries.Summary(r.Context(), caller, target)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, summary)
}

// Trends serves GET /analytics/application-metrics/{id}/trends?days=.
func (h *AnalyticsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	metricID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	days := 0
	if value := strings.TrimSpace(r.URL.Query().Get("days")); value != "" {
		days, err = strconv.Atoi(value)
		if err != nil {
			response.Error(w, common.NewValidationError("invalid days", map[string]string{"days": "days must be an integer"}))
			return
		}
	}
	trends, err := h.trends.Trends(r.Context(), caller, metricID, days)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, trends)
}

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"jobboard/internal/app"
	"jobboard/internal/common"
	"jobboard/internal/http/response"
)

type Recomputer interface {
	RecomputeAll(ctx context.Context) (*app.RecomputeReport, error)
}

type RecomputeRecorder interface {
	RecordRecompute(processed, failed int, runErr error, finishedAt time.Time)
}

type MaintenanceHandler struct {
	recomputer  Recomputer
	recorder    RecomputeRecorder
	internalKey string
	logger      *slog.Logger
}

func NewMaintenanceHandler(recomputer Recomputer, recorder RecomputeRecorder, internalKey string, logger *slog.Logger) *MaintenanceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MaintenanceHandler{recomputer: recomputer, recorder: recorder, internalKey: internalKey, logger: logger}
}

// Recompute serves POST /internal/metrics/recompute and runs the batch synchronously.
func (h *MaintenanceHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	if !requireInternalAuth(w, r, h.internalKey) {
		return
	}
	report, err := h.recomputer.RecomputeAll(r.Context())
	if h.recorder != nil && report != nil {
		h.recorder.RecordRecompute(report.Processed, report.Failed, err, time.Now().UTC())
	}
	if err != nil {
		h.logger.Error("employer metric recompute aborted", slog.String("error", err.Error()))
		response.Error(w, common.NewError(common.CodeInternal, "recompute failed", err))
		return
	}
	response.JSON(w, http.StatusOK, report)
}

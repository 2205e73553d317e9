package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	"jobboard/internal/common"
)

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    common.Code       `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorCollector counts error responses by code.
type ErrorCollector interface {
	IncError(code common.Code)
}

var collector atomic.Value

type collectorHolder struct {
	c ErrorCollector
}

func SetErrorCollector(c ErrorCollector) {
	collector.Store(collectorHolder{c: c})
}

func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, envelope{Success: true, Data: data})
}

// Error writes the failure envelope. Internal errors never expose their cause.
func Error(w http.ResponseWriter, err error) {
	var appErr *common.Error
	if !errors.As(err, &appErr) {
		appErr = common.NewError(common.CodeInternal, "internal error", err)
	}
	body := &errorBody{Code: appErr.Code, Message: appErr.Message, Fields: appErr.Fields}
	if appErr.Code == common.CodeInternal {
		body.Message = "internal error"
		body.Fields = nil
	}
	if holder, ok := collector.Load().(collectorHolder); ok && holder.c != nil {
		holder.c.IncError(appErr.Code)
	}
	write(w, StatusFor(appErr.Code), envelope{Success: false, Error: body})
}

func StatusFor(code common.Code) int {
	switch code {
	case common.CodeValidation:
		return http.StatusBadRequest
	case common.CodeUnauthorized:
		return http.StatusUnauthorized
	case common.CodeForbidden:
		return http.StatusForbidden
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeConflict:
		return http.StatusConflict
	case common.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func write(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

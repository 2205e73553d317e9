package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"jobboard/internal/common"
)

func errUnauthorized() error {
	return common.NewError(common.CodeUnauthorized, "authentication required", nil)
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return common.NewValidationError("invalid request", map[string]string{"body": "request body is required"})
		}
		return common.NewValidationError("invalid request", map[string]string{"body": "malformed json"})
	}
	return nil
}

// idFromPath parses the UUID at the given segment of the path, counting from zero
// after the leading slash.
func idFromPath(r *http.Request, index int) (common.UUID, error) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if index >= len(parts) || parts[index] == "" {
		return "", common.NewValidationError("invalid request", map[string]string{"id": "id is required"})
	}
	id, err := common.ParseUUID(parts[index])
	if err != nil {
		return "", common.NewValidationError("invalid request", map[string]string{"id": "invalid uuid"})
	}
	return id, nil
}

func optionalUUIDQuery(r *http.Request, name string) (*common.UUID, error) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return nil, nil
	}
	id, err := common.ParseUUID(value)
	if err != nil {
		return nil, common.NewValidationError("invalid "+name, map[string]string{name: "invalid uuid"})
	}
	return &id, nil
}

func newFieldError(field, message string) error {
	return common.NewValidationError("invalid request", map[string]string{field: message})
}

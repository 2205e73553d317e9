package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"jobboard/internal/http/response"
)

const (
	internalAuthHeader    = "Authorization"
	internalAuthAltHeader = "X-Internal-Key"
)

// requireInternalAuth accepts the key either as X-Internal-Key or as a bearer token.
// An unset key disables internal endpoints.
func requireInternalAuth(w http.ResponseWriter, r *http.Request, internalKey string) bool {
	key := strings.TrimSpace(internalKey)
	if key == "" {
		response.Error(w, errUnauthorized())
		return false
	}
	altValue := strings.TrimSpace(r.Header.Get(internalAuthAltHeader))
	bearer := strings.TrimPrefix(strings.TrimSpace(r.Header.Get(internalAuthHeader)), "Bearer ")
	if constantTimeEqual(altValue, key) || constantTimeEqual(bearer, key) {
		return true
	}
	response.Error(w, errUnauthorized())
	return false
}

func constantTimeEqual(a, b string) bool {
	return a != "" && subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

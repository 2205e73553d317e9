package middleware

import (
	"context"
	"net/http"
	"strings"

	"jobboard/internal/common"
	"jobboard/internal/domain/user"
	"jobboard/internal/http/response"
	"jobboard/internal/security"
)

type contextKey string

const ContextCallerKey contextKey = "caller"

type AuthMiddleware struct {
	jwt *security.JWTProvider
}

func NewAuthMiddleware(jwt *security.JWTProvider) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := m.callerFromRequest(r)
		if err != nil {
			response.Error(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

// OptionalAuthenticate attaches the caller when a valid token is present and
// continues anonymously otherwise.
func (m *AuthMiddleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}
		caller, err := m.callerFromRequest(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

func (m *AuthMiddleware) callerFromRequest(r *http.Request) (user.Caller, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return user.Caller{}, common.NewError(common.CodeUnauthorized, "missing authorization header", nil)
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return user.Caller{}, common.NewError(common.CodeUnauthorized, "invalid authorization header", nil)
	}
	claims, err := m.jwt.Parse(parts[1])
	if err != nil {
		return user.Caller{}, common.NewError(common.CodeUnauthorized, "invalid token", err)
	}
	userID, err := common.ParseUUID(claims.UserID)
	if err != nil {
		return user.Caller{}, common.NewError(common.CodeUnauthorized, "invalid user id", err)
	}
	// An unknown role leaves the caller authenticated without a role.
	role, _ := user.ParseRole(claims.Role)
	caller := user.Caller{ID: userID, Role: role, IsStaff: claims.IsStaff}
	if claims.CompanyID != "" {
		companyID, err := common.ParseUUID(claims.CompanyID)
		if err != nil {
			return user.Caller{}, common.NewError(common.CodeUnauthorized, "invalid company id", err)
		}
		caller.CompanyID = &companyID
	}
	return caller, nil
}

func RequireRole(role user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFromContext(r.Context())
			if !ok {
				response.Error(w, common.NewError(common.CodeUnauthorized, "authentication required", nil))
				return
			}
			if caller.Role == "" {
				response.Error(w, common.NewError(common.CodeForbidden, "role not selected", nil))
				return
			}
			if caller.Role != role {
				response.Error(w, common.NewError(common.CodeForbidden, "insufficient role", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoleOrStaff lets staff through regardless of role.
func RequireRoleOrStaff(role user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		byRole := RequireRole(role)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if caller, ok := CallerFromContext(r.Context()); ok && caller.IsStaff {
				next.ServeHTTP(w, r)
				return
			}
			byRole.ServeHTTP(w, r)
		})
	}
}

func WithCaller(ctx context.Context, caller user.Caller) context.Context {
	return context.WithValue(ctx, ContextCallerKey, caller)
}

func CallerFromContext(ctx context.Context) (user.Caller, bool) {
	caller, ok := ctx.Value(ContextCallerKey).(user.Caller)
	return caller, ok && caller.Authenticated()
}

func UserIDFromContext(ctx context.Context) (common.UUID, bool) {
	caller, ok := CallerFromContext(ctx)
	return caller.ID, ok
}

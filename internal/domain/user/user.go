package user

import (
	"strings"
	"time"

	"jobboard/internal/common"
)

type Role string

const (
	RoleStudent  Role = "student"
	RoleEmployer Role = "employer"
	RoleCampus   Role = "campus"
	RoleAdmin    Role = "admin"
)

var roles = []Role{RoleStudent, RoleEmployer, RoleCampus, RoleAdmin}

func Roles() []Role {
	return append([]Role(nil), roles...)
}

// ParseRole maps free-form input onto the closed role set.
func ParseRole(value string) (Role, bool) {
	normalized := Role(strings.ToLower(strings.TrimSpace(value)))
	for _, role := range roles {
		if role == normalized {
			return role, true
		}
	}
	return "", false
}

type User struct {
	ID        common.UUID  `json:"id"`
	Role      Role         `json:"role"`
	IsStaff   bool         `json:"is_staff"`
	CompanyID *common.UUID `json:"company_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Caller is the authenticated identity of an inbound request.
type Caller struct {
	ID        common.UUID
	Role      Role
	IsStaff   bool
	CompanyID *common.UUID
}

func (c Caller) Authenticated() bool {
	return !c.ID.IsZero()
}

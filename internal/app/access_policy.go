package app

import (
	"context"

	"jobboard/internal/common"
	"jobboard/internal/domain/analytics"
	"jobboard/internal/domain/user"
)

type AccessPolicy struct {
	users user.Repository
}

func NewAccessPolicy(users user.Repository) *AccessPolicy {
	return &AccessPolicy{users: users}
}

// Resolve maps a caller and an optional target employer onto the analytics scope they may see.
// Staff is checked before role; an employer without a company gets an empty scope, not an error.
func (p *AccessPolicy) Resolve(ctx context.Context, caller user.Caller, target *common.UUID) (analytics.Scope, error) {
	if !caller.Authenticated() {
		return analytics.Scope{}, common.NewError(common.CodeUnauthorized, "authentication required", nil)
	}
	if caller.IsStaff {
		if target == nil {
			return analytics.GlobalScope(), nil
		}
		employer, err := p.users.GetByID(ctx, *target)
		if err != nil {
			if common.Is(err, common.CodeNotFound) {
				return analytics.Scope{}, common.NewError(common.CodeNotFound, "employer not found", nil)
			}
			return analytics.Scope{}, err
		}
		if employer.Role != user.RoleEmployer {
			return analytics.Scope{}, common.NewError(common.CodeNotFound, "employer not found", nil)
		}
		return analytics.OverrideScope(employer.ID), nil
	}

	switch caller.Role {
	case user.RoleEmployer:
		if target != nil && *target != caller.ID {
			return analytics.Scope{}, common.NewError(common.CodeForbidden, "employer_id does not match token", nil)
		}
		if caller.CompanyID == nil || caller.CompanyID.IsZero() {
			return analytics.EmptyScope(caller.ID), nil
		}
		return analytics.SelfScope(caller.ID), nil
	case user.RoleStudent, user.RoleCampus, user.RoleAdmin:
		return analytics.Scope{}, common.NewError(common.CodeForbidden, "analytics are available to employers only", nil)
	default:
		return analytics.Scope{}, common.NewError(common.CodeForbidden, "role not selected", nil)
	}
}

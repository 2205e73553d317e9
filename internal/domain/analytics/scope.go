package analytics

import "jobboard/internal/common"

type ScopeKind string

const (
	// ScopeSelf restricts to entities owned by the calling employer.
	ScopeSelf ScopeKind = "self"
	// ScopeOverride restricts a staff caller to a named employer.
	ScopeOverride ScopeKind = "override"
	// ScopeGlobal applies no restriction.
	ScopeGlobal ScopeKind = "global"
	// ScopeEmpty is a valid caller that owns nothing; results are zero-filled.
	ScopeEmpty ScopeKind = "empty"
)

type Scope struct {
	Kind       ScopeKind   `json:"kind"`
	EmployerID common.UUID `json:"employer_id,omitempty"`
}

func SelfScope(employerID common.UUID) Scope {
	return Scope{Kind: ScopeSelf, EmployerID: employerID}
}

func OverrideScope(employerID common.UUID) Scope {
	return Scope{Kind: ScopeOverride, EmployerID: employerID}
}

func GlobalScope() Scope {
	return Scope{Kind: ScopeGlobal}
}

func EmptyScope(employerID common.UUID) Scope {
	return Scope{Kind: ScopeEmpty, EmployerID: employerID}
}

// Restricted reports whether queries must be filtered by EmployerID.
func (s Scope) Restricted() bool {
	return s.Kind == ScopeSelf || s.Kind == ScopeOverride
}

func (s Scope) Empty() bool {
	return s.Kind == ScopeEmpty
}

func (s Scope) Key() string {
	if s.EmployerID.IsZero() {
		return string(s.Kind)
	}
	return string(s.Kind) + ":" + s.EmployerID.String()
}

package application

import (
	"time"

	"jobboard/internal/common"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusReviewing   Status = "reviewing"
	StatusInterviewed Status = "interviewed"
	StatusAccepted    Status = "accepted"
	StatusRejected    Status = "rejected"
)

// HiredStatus is the status treated as a hire in employer rollups.
// There is no separate hired state; accepted is used as the hire signal.
const HiredStatus = StatusAccepted

// InterviewStatus is counted as an interview in employer rollups.
const InterviewStatus = StatusInterviewed

var statuses = []Status{StatusPending, StatusReviewing, StatusInterviewed, StatusAccepted, StatusRejected}

// Statuses returns every status in declaration order.
func Statuses() []Status {
	return append([]Status(nil), statuses...)
}

func (s Status) Valid() bool {
	for _, status := range statuses {
		if status == s {
			return true
		}
	}
	return false
}

// Final reports whether the status is a decision that can no longer change.
func (s Status) Final() bool {
	return s == StatusAccepted || s == StatusRejected
}

type Application struct {
	ID          common.UUID `json:"id"`
	JobID       common.UUID `json:"job_id"`
	ApplicantID common.UUID `json:"applicant_id"`
	Status      Status      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	DecidedAt   *time.Time  `json:"decided_at,omitempty"`
}

// DecisionTime returns decided_at, falling back to updated_at for rows written
// before decided_at existed.
func (a Application) DecisionTime() time.Time {
	if a.DecidedAt != nil {
		return *a.DecidedAt
	}
	return a.UpdatedAt
}

// Metric mirrors an application's status for attribution and reporting.
type Metric struct {
	ID            common.UUID `json:"id"`
	ApplicationID common.UUID `json:"application_id"`
	JobID         common.UUID `json:"job_id"`
	Status        Status      `json:"status"`
	Source        string      `json:"source"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

const DefaultSource = "direct"

package job

import (
	"time"

	"jobboard/internal/common"
)

type Job struct {
	ID          common.UUID `json:"id"`
	CreatedBy   common.UUID `json:"created_by"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	IsActive    bool        `json:"is_active"`
	PostedDate  time.Time   `json:"posted_date"`
	ViewCount   int64       `json:"view_count"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// View is one job-detail read. Views are append-only.
type View struct {
	ID        common.UUID  `json:"id"`
	JobID     common.UUID  `json:"job_id"`
	ViewerID  *common.UUID `json:"viewer_id,omitempty"`
	IPAddress string       `json:"ip_address"`
	ViewedAt  time.Time    `json:"viewed_at"`
	Duration  *int         `json:"duration,omitempty"`
}

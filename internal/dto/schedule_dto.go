package dto

import (
	"time"
)

// --- Schedule Policy ---

type SchedulePolicyResponse struct {
	Category    string    `json:"category"`
	GapDays     int       `json:"gap_days"`
	IsDaily     bool      `json:"is_daily"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedBy   string    `json:"updated_by"`
}

type UpdateSchedulePolicyRequest struct {
	GapDays     int    `json:"gap_days" validate:"min=0,max=30"`
	IsDaily     bool   `json:"is_daily"`
	Description string `json:"description" validate:"max=255"`
	Reason      string `json:"reason" validate:"required,max=500"`
	ActorId     string `json:"actor_id" validate:"required,max=100"`
}

type UpdateSchedulePolicyResponse struct {
	Policy           SchedulePolicyResponse `json:"policy"`
	AuditId          string                 `json:"audit_id"`
	CacheInvalidated bool                   `json:"cache_invalidated"`
}

type SchedulePolicyAuditRequest struct {
	Category string `query:"category" validate:"omitempty,oneof=dairy bakery produce"`
	Limit    int    `query:"limit" validate:"omitempty,min=1"`
}

type SchedulePolicyAuditResponse struct {
	Id         string    `json:"id"`
	Category   string    `json:"category"`
	OldGapDays int       `json:"old_gap_days"`
	NewGapDays int       `json:"new_gap_days"`
	OldIsDaily bool      `json:"old_is_daily"`
	NewIsDaily bool      `json:"new_is_daily"`
	ActorId    string    `json:"actor_id"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

type SchedulePreviewRequest struct {
	Category      string `json:"category" validate:"required,oneof=dairy bakery produce"`
	StartDate     string `json:"start_date" validate:"required,datetime=2006-01-02"`
	PreviewMonths int    `json:"preview_months" validate:"min=0,max=12"`
	GapDays       *int   `json:"gap_days,omitempty" validate:"omitempty,min=1,max=30"`
	IsDaily       *bool  `json:"is_daily,omitempty"`
}

type SchedulePreviewResponse struct {
	Category string   `json:"category"`
	GapDays  int      `json:"gap_days"`
	IsDaily  bool     `json:"is_daily"`
	Dates    []string `json:"dates"`
	Count    int      `json:"count"`
}

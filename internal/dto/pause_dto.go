package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Administrative Pause ---

// BatchItemError is one failed row of a bulk operation
type BatchItemError struct {
	SubscriptionId *uuid.UUID `json:"subscription_id"`
	Error          string     `json:"error"`
}

type CreatePauseRequest struct {
	PauseType string      `json:"pause_type" validate:"required,oneof=all selected"`
	UserIds   []uuid.UUID `json:"user_ids" validate:"required_if=PauseType selected"`
	StartDate string      `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   *string     `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Reason    string      `json:"reason" validate:"required,max=500"`
	ActorId   string      `json:"actor_id" validate:"required,max=100"`
}

type PauseResponse struct {
	PauseRecordId             uuid.UUID        `json:"pause_record_id"`
	AffectedSubscriptionCount int              `json:"affected_subscription_count"`
	ProcessedCount            int              `json:"processed_count"`
	SkippedCount              int              `json:"skipped_count"`
	FailedCount               int              `json:"failed_count"`
	Errors                    []BatchItemError `json:"errors"`
}

type PauseRecordListRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=active completed"`
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

type PauseRecordResponse struct {
	Id                        uuid.UUID   `json:"id"`
	PauseType                 string      `json:"pause_type"`
	AffectedUserIds           []uuid.UUID `json:"affected_user_ids"`
	StartDate                 string      `json:"start_date"`
	EndDate                   *string     `json:"end_date"`
	Reason                    string      `json:"reason"`
	ActorId                   string      `json:"actor_id"`
	Status                    string      `json:"status"`
	AffectedSubscriptionCount int         `json:"affected_subscription_count"`
	CompletedAt               *time.Time  `json:"completed_at"`
	CompletedBy               *string     `json:"completed_by"`
	CreatedAt                 time.Time   `json:"created_at"`
}

// PauseRecordDetailResponse adds the live number of subscriptions still held by the record
type PauseRecordDetailResponse struct {
	PauseRecordResponse
	HeldSubscriptionCount int `json:"held_subscription_count"`
}

type ReactivateRequest struct {
	PauseRecordId   *uuid.UUID  `json:"pause_record_id,omitempty"`
	Scope           string      `json:"scope" validate:"required,oneof=all selected"`
	SubscriptionIds []uuid.UUID `json:"subscription_ids" validate:"required_if=Scope selected"`
	ActorId         string      `json:"actor_id" validate:"required,max=100"`
}

// ReactivateRecordResult is the outcome for one pause record
type ReactivateRecordResult struct {
	PauseRecordId    uuid.UUID        `json:"pause_record_id"`
	ReactivatedCount int              `json:"reactivated_count"`
	ReconciledCount  int              `json:"reconciled_count"`
	SkippedCount     int              `json:"skipped_count"`
	FailedCount      int              `json:"failed_count"`
	Completed        bool             `json:"completed"`
	Errors           []BatchItemError `json:"errors"`
}

// ReactivateResponse totals the per-record results; a single-record call has one result
type ReactivateResponse struct {
	ReactivatedCount int                      `json:"reactivated_count"`
	ReconciledCount  int                      `json:"reconciled_count"`
	FailedCount      int                      `json:"failed_count"`
	Completed        bool                     `json:"completed"`
	Errors           []BatchItemError         `json:"errors"`
	Results          []ReactivateRecordResult `json:"results"`
	FailedRecords    []FailedRecord           `json:"failed_records"`
}

// FailedRecord is a pause record that could not be processed at all during a batch
type FailedRecord struct {
	PauseRecordId uuid.UUID `json:"pause_record_id"`
	Error         string    `json:"error"`
}

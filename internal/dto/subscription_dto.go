package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Subscriptions ---

type CreateSubscriptionRequest struct {
	UserId         uuid.UUID `json:"user_id" validate:"required"`
	Category       string    `json:"category" validate:"required,oneof=dairy bakery produce"`
	Cadence        string    `json:"cadence" validate:"required,oneof=weekly monthly"`
	StartDate      string    `json:"start_date" validate:"required,datetime=2006-01-02"`
	DurationMonths int       `json:"duration_months" validate:"required,min=1,max=24"`
}

type PauseSubscriptionRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type SubscriptionResponse struct {
	Id                    uuid.UUID  `json:"id"`
	UserId                uuid.UUID  `json:"user_id"`
	Category              string     `json:"category"`
	Cadence               string     `json:"cadence"`
	Status                string     `json:"status"`
	NextDeliveryDate      *string    `json:"next_delivery_date"`
	SubscriptionStartDate string     `json:"subscription_start_date"`
	SubscriptionEndDate   string     `json:"subscription_end_date"`
	PauseDate             *time.Time `json:"pause_date,omitempty"`
	PauseReason           *string    `json:"pause_reason,omitempty"`
	ReactivationDeadline  *time.Time `json:"reactivation_deadline,omitempty"`
	AdminPauseId          *uuid.UUID `json:"admin_pause_id,omitempty"`
	AdminPauseStart       *string    `json:"admin_pause_start,omitempty"`
	AdminPauseEnd         *string    `json:"admin_pause_end,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

type SubscriptionDetailResponse struct {
	SubscriptionResponse
	UpcomingDeliveries []string `json:"upcoming_deliveries"`
}

type PauseEligibilityResponse struct {
	Eligible             bool       `json:"eligible"`
	Reason               string     `json:"reason"`
	NextDeliveryDate     string     `json:"next_delivery_date"`
	ReactivationDeadline *time.Time `json:"reactivation_deadline,omitempty"`
}

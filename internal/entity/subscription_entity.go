package entity

import (
	"time"

	"delivery-scheduler-be/internal/constant"

	"github.com/google/uuid"
)

type SubscriptionStatus string
type SubscriptionCadence string

const (
	SubscriptionStatusActive      SubscriptionStatus = "active"
	SubscriptionStatusPaused      SubscriptionStatus = "paused"
	SubscriptionStatusAdminPaused SubscriptionStatus = "admin_paused"
	SubscriptionStatusCancelled   SubscriptionStatus = "cancelled"

	SubscriptionCadenceWeekly  SubscriptionCadence = "weekly"
	SubscriptionCadenceMonthly SubscriptionCadence = "monthly"
)

type Subscription struct {
	Id                    uuid.UUID
	UserId                uuid.UUID
	Category              constant.Category
	Cadence               SubscriptionCadence
	Status                SubscriptionStatus
	NextDeliveryDate      *time.Time
	SubscriptionStartDate time.Time
	SubscriptionEndDate   time.Time

	// Self-service pause bookkeeping
	PauseDate            *time.Time
	PauseReason          *string
	ReactivationDeadline *time.Time

	// Administrative pause bookkeeping; AdminPauseId references an AdminPauseRecord
	AdminPauseId    *uuid.UUID
	AdminPauseStart *time.Time
	AdminPauseEnd   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasConsistentAdminPause reports whether the admin back-reference agrees with the status
func (s *Subscription) HasConsistentAdminPause() bool {
	return (s.AdminPauseId != nil) == (s.Status == SubscriptionStatusAdminPaused)
}

// ClearPause resets every pause bookkeeping field
func (s *Subscription) ClearPause() {
	s.PauseDate = nil
	s.PauseReason = nil
	s.ReactivationDeadline = nil
	s.AdminPauseId = nil
	s.AdminPauseStart = nil
	s.AdminPauseEnd = nil
}

// AdminPauseFields is the set of columns written when an admin pause is applied to one subscription
type AdminPauseFields struct {
	PauseId    uuid.UUID
	PauseStart time.Time
	PauseEnd   *time.Time
	PausedAt   time.Time
	Reason     string
}

package entity

import (
	"time"

	"delivery-scheduler-be/internal/constant"

	"github.com/google/uuid"
)

// SchedulePolicy is the cadence rule applied to every subscription of a category
type SchedulePolicy struct {
	Category    constant.Category
	GapDays     int
	IsDaily     bool
	Description string
	UpdatedAt   time.Time
	UpdatedBy   string
}

// StepDays is the number of days between two baseline deliveries
func (p SchedulePolicy) StepDays() int {
	if p.IsDaily {
		return 1
	}
	return p.GapDays
}

// DefaultSchedulePolicy builds the built-in policy for a category
func DefaultSchedulePolicy(category constant.Category) (SchedulePolicy, bool) {
	def, ok := constant.DefaultPolicies[category]
	if !ok {
		return SchedulePolicy{}, false
	}
	return SchedulePolicy{
		Category:    category,
		GapDays:     def.GapDays,
		IsDaily:     def.IsDaily,
		Description: def.Description,
		UpdatedBy:   "system",
	}, true
}

// SchedulePolicyAudit is an immutable record of one policy change
type SchedulePolicyAudit struct {
	Id         uuid.UUID
	Category   constant.Category
	OldGapDays int
	NewGapDays int
	OldIsDaily bool
	NewIsDaily bool
	ActorId    string
	Reason     string
	CreatedAt  time.Time
}

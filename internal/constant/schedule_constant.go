package constant

import "time"

// Category selects which cadence policy applies to a subscription
type Category string

const (
	CategoryDairy   Category = "dairy"
	CategoryBakery  Category = "bakery"
	CategoryProduce Category = "produce"
)

// Categories is the closed set of subscription categories
var Categories = []Category{CategoryDairy, CategoryBakery, CategoryProduce}

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// Gap bounds enforced when a policy is not daily
const (
	MinGapDays = 1
	MaxGapDays = 30
)

// DefaultPolicy is the built-in cadence used for seeding and when the policy store is degraded
type DefaultPolicy struct {
	GapDays     int
	IsDaily     bool
	Description string
}

// DefaultPolicies keeps the conservative fallback cadence per category
var DefaultPolicies = map[Category]DefaultPolicy{
	CategoryDairy:   {GapDays: 1, IsDaily: true, Description: "Fresh dairy delivered every day"},
	CategoryBakery:  {GapDays: 2, IsDaily: false, Description: "Bakery delivered every second day"},
	CategoryProduce: {GapDays: 7, IsDaily: false, Description: "Produce box delivered weekly"},
}

const (
	// ReactivationWindowMonths is the offset from a self-service pause to its reactivation deadline
	ReactivationWindowMonths = 3

	DefaultCutoffHour      = 20
	DefaultExcludedWeekday = time.Sunday
	DefaultTimezone        = "Asia/Kolkata"

	DefaultAuditLimit = 50
	MaxAuditLimit     = 500

	MaxPreviewMonths = 12
)

// Event types published on the admin bus
const (
	EventSchedulePolicyUpdated = "SCHEDULE_POLICY_UPDATED"
	EventAdminPauseCreated     = "ADMIN_PAUSE_CREATED"
	EventAdminPauseCompleted   = "ADMIN_PAUSE_COMPLETED"
	EventSubscriptionPaused    = "SUBSCRIPTION_PAUSED"
	EventSubscriptionResumed   = "SUBSCRIPTION_RESUMED"
)

package delivery

import (
	"time"

	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/entity"
	ierr "delivery-scheduler-be/internal/errors"
)

type EligibilityReason string

const (
	EligibilityAccepted          EligibilityReason = "accepted"
	EligibilityDeliveryCommitted EligibilityReason = "delivery_committed"
	EligibilityPastCutoff        EligibilityReason = "past_cutoff"
)

// PauseEligibility is the outcome of a self-service pause check
type PauseEligibility struct {
	Eligible             bool
	Reason               EligibilityReason
	NextDeliveryDate     time.Time
	ReactivationDeadline *time.Time
}

// EvaluatePauseEligibility decides whether a self-service pause may be accepted at now.
// A delivery due today (or earlier) is committed; a delivery due tomorrow is committed
// once the local cutoff hour is reached.
func (c Calendar) EvaluatePauseEligibility(nextDeliveryDate, now time.Time) PauseEligibility {
	localNow := now.In(c.Location)
	today := c.Day(localNow)
	nextDay := c.Day(nextDeliveryDate)

	result := PauseEligibility{NextDeliveryDate: nextDay}

	switch {
	case !nextDay.After(today):
		result.Reason = EligibilityDeliveryCommitted
	case nextDay.Equal(c.addDays(today, 1)) && localNow.Hour() >= c.CutoffHour:
		result.Reason = EligibilityPastCutoff
	default:
		deadline := now.AddDate(0, constant.ReactivationWindowMonths, 0)
		result.Eligible = true
		result.Reason = EligibilityAccepted
		result.ReactivationDeadline = &deadline
	}

	return result
}

// Transition is one allowed subscription status change
type Transition struct {
	From entity.SubscriptionStatus
	To   entity.SubscriptionStatus
}

var validTransitions = map[Transition]bool{
	{entity.SubscriptionStatusActive, entity.SubscriptionStatusPaused}:      true, // self-service pause
	{entity.SubscriptionStatusActive, entity.SubscriptionStatusAdminPaused}: true, // operator pause
	{entity.SubscriptionStatusPaused, entity.SubscriptionStatusActive}:      true, // self-service resume
	{entity.SubscriptionStatusAdminPaused, entity.SubscriptionStatusActive}: true, // reactivation
	{entity.SubscriptionStatusActive, entity.SubscriptionStatusCancelled}:   true, // terminal
}

func CanTransition(from, to entity.SubscriptionStatus) bool {
	return validTransitions[Transition{from, to}]
}

// RequireTransition returns an invalid operation error for a disallowed status change
func RequireTransition(from, to entity.SubscriptionStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	return ierr.NewError("invalid subscription status transition").
		WithHintf("Subscription cannot move from %s to %s", from, to).
		WithReportableDetails(map[string]any{
			"from": from,
			"to":   to,
		}).
		Mark(ierr.ErrInvalidOperation)
}

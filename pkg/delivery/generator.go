package delivery

import (
	"time"

	"delivery-scheduler-be/internal/entity"
	ierr "delivery-scheduler-be/internal/errors"
)

// ValidatePolicy rejects cadences no date computation can run with
func ValidatePolicy(policy entity.SchedulePolicy) error {
	if !policy.IsDaily && policy.GapDays <= 0 {
		return ierr.NewError("gap days must be positive").
			WithHintf("Gap days must be positive for category %s", policy.Category).
			WithReportableDetails(map[string]any{
				"category": policy.Category,
				"gap_days": policy.GapDays,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// GenerateDeliveryDates returns every delivery date of a subscription running durationMonths
// from start. The cadence baseline advances by the policy step; a baseline date that lands on
// the excluded weekday is delivered one day later without moving the baseline.
func (c Calendar) GenerateDeliveryDates(start time.Time, durationMonths int, policy entity.SchedulePolicy) ([]time.Time, error) {
	if err := ValidatePolicy(policy); err != nil {
		return nil, err
	}
	if durationMonths < 0 {
		return nil, ierr.NewError("negative subscription duration").
			WithHint("Duration in months cannot be negative").
			Mark(ierr.ErrValidation)
	}

	dates := make([]time.Time, 0)
	if durationMonths == 0 {
		return dates, nil
	}

	baseline := c.Day(start)
	end := baseline.AddDate(0, durationMonths, 0)
	step := policy.StepDays()

	for ; baseline.Before(end); baseline = c.addDays(baseline, step) {
		candidate := c.shift(baseline)
		if !candidate.Before(end) {
			break
		}
		if n := len(dates); n > 0 && !candidate.After(dates[n-1]) {
			continue
		}
		dates = append(dates, candidate)
	}

	return dates, nil
}

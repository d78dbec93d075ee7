package delivery

import (
	"math"
	"time"

	"delivery-scheduler-be/internal/entity"
)

// NextDeliveryDate returns the first delivery strictly after the reference's calendar day.
// Feeding the result back in always yields a later date.
func (c Calendar) NextDeliveryDate(reference time.Time, policy entity.SchedulePolicy) (time.Time, error) {
	if err := ValidatePolicy(policy); err != nil {
		return time.Time{}, err
	}
	return c.shift(c.addDays(c.Day(reference), policy.StepDays())), nil
}

// UpcomingDeliveryDate returns the first date of the sequence anchored at start that falls
// on or after the reference's calendar day
func (c Calendar) UpcomingDeliveryDate(start, reference time.Time, policy entity.SchedulePolicy) (time.Time, error) {
	if err := ValidatePolicy(policy); err != nil {
		return time.Time{}, err
	}

	startDay := c.Day(start)
	refDay := c.Day(reference)
	step := policy.StepDays()

	// jump close to the reference, one step back since a shifted candidate may land on it
	periods := 0
	if refDay.After(startDay) {
		periods = daysBetween(startDay, refDay)/step - 1
		if periods < 0 {
			periods = 0
		}
	}

	baseline := c.addDays(startDay, periods*step)
	for {
		candidate := c.shift(baseline)
		if !candidate.Before(refDay) {
			return candidate, nil
		}
		baseline = c.addDays(baseline, step)
	}
}

func daysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

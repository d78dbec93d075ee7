package delivery

import (
	"time"

	"delivery-scheduler-be/internal/constant"
)

// Calendar carries the operating rules every date computation depends on.
// All methods are pure and safe for concurrent use.
type Calendar struct {
	Location        *time.Location
	ExcludedWeekday time.Weekday
	CutoffHour      int
}

func NewCalendar(location *time.Location, excludedWeekday time.Weekday, cutoffHour int) Calendar {
	if location == nil {
		location = time.UTC
	}
	return Calendar{
		Location:        location,
		ExcludedWeekday: excludedWeekday,
		CutoffHour:      cutoffHour,
	}
}

// DefaultCalendar uses the built-in timezone, off-day and cutoff
func DefaultCalendar() Calendar {
	location, err := time.LoadLocation(constant.DefaultTimezone)
	if err != nil {
		location = time.UTC
	}
	return NewCalendar(location, constant.DefaultExcludedWeekday, constant.DefaultCutoffHour)
}

// Day truncates t to local midnight in the operating timezone
func (c Calendar) Day(t time.Time) time.Time {
	local := t.In(c.Location)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location)
}

// IsDeliveryDay reports whether deliveries run on the given day
func (c Calendar) IsDeliveryDay(t time.Time) bool {
	return t.In(c.Location).Weekday() != c.ExcludedWeekday
}

// shift moves a candidate off the non-delivery weekday
func (c Calendar) shift(day time.Time) time.Time {
	if !c.IsDeliveryDay(day) {
		return day.AddDate(0, 0, 1)
	}
	return day
}

func (c Calendar) addDays(day time.Time, n int) time.Time {
	return day.AddDate(0, 0, n)
}

package schedule

import (
	"fmt"
	"time"
)

// BusinessHours describes one weekday. Start and End are nil when the day is closed.
type BusinessHours struct {
	Open  bool       `json:"open"`
	Start *TimeOfDay `json:"start,omitempty"`
	End   *TimeOfDay `json:"end,omitempty"`
}

// Closed returns the hours of a day the business does not operate.
func Closed() BusinessHours {
	return BusinessHours{}
}

// OpenBetween returns hours for a day open over [start, end).
func OpenBetween(start, end TimeOfDay) BusinessHours {
	return BusinessHours{Open: true, Start: &start, End: &end}
}

// Policy answers which hours apply to a weekday.
type Policy interface {
	HoursFor(weekday time.Weekday) BusinessHours
}

// WeeklyHours is the policy as data, indexed by time.Weekday (Sunday = 0).
type WeeklyHours [7]BusinessHours

// DefaultWeeklyHours is the shipped shape: Sunday to Thursday 08:00-19:00,
// a short Friday closing at 17:00, Saturday closed.
func DefaultWeeklyHours() WeeklyHours {
	full := OpenBetween(MustTimeOfDay(8, 0), MustTimeOfDay(19, 0))
	var w WeeklyHours
	for day := time.Sunday; day <= time.Thursday; day++ {
		w[day] = full
	}
	w[time.Friday] = OpenBetween(MustTimeOfDay(8, 0), MustTimeOfDay(17, 0))
	w[time.Saturday] = Closed()
	return w
}

// HoursFor is total: weekdays outside 0..6 are reported closed.
func (w WeeklyHours) HoursFor(weekday time.Weekday) BusinessHours {
	if weekday < time.Sunday || weekday > time.Saturday {
		return Closed()
	}
	return w[weekday]
}

// Validate checks each open day has start < end and both fall on the step grid.
func (w WeeklyHours) Validate(stepMinutes int) error {
	if stepMinutes <= 0 {
		return fmt.Errorf("step must be positive, got %d", stepMinutes)
	}
	for day, hours := range w {
		weekday := time.Weekday(day)
		if !hours.Open {
			if hours.Start != nil || hours.End != nil {
				return fmt.Errorf("%s: closed day cannot carry hours", weekday)
			}
			continue
		}
		if hours.Start == nil || hours.End == nil {
			return fmt.Errorf("%s: open day requires start and end", weekday)
		}
		if !hours.Start.Before(*hours.End) {
			return fmt.Errorf("%s: start %s must be before end %s", weekday, hours.Start, hours.End)
		}
		if hours.Start.Minutes()%stepMinutes != 0 || hours.End.Minutes()%stepMinutes != 0 {
			return fmt.Errorf("%s: hours must align to %d minute slots", weekday, stepMinutes)
		}
	}
	return nil
}

package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// TimeOfDay is a wall-clock time without a date, minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a 24h "HH:MM" value.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", raw, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// MustTimeOfDay builds a TimeOfDay and panics on out-of-range input. Intended for static tables.
func MustTimeOfDay(hour, minute int) TimeOfDay {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		panic(fmt.Sprintf("schedule: invalid time of day %02d:%02d", hour, minute))
	}
	return TimeOfDay{Hour: hour, Minute: minute}
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is strictly earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Minutes() < other.Minutes()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TimeSlot is one bookable start time. Its label ("8:00 AM") is the identity used everywhere
// outside this package, including persistence.
type TimeSlot struct {
	Hour   int
	Minute int
}

// Label renders the slot in 12-hour form with meridiem.
func (s TimeSlot) Label() string {
	meridiem := "AM"
	if s.Hour >= 12 {
		meridiem = "PM"
	}
	hour := s.Hour % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, s.Minute, meridiem)
}

func (s TimeSlot) String() string {
	return s.Label()
}

// TimeOfDay converts the slot back to a wall-clock value.
func (s TimeSlot) TimeOfDay() TimeOfDay {
	return TimeOfDay{Hour: s.Hour, Minute: s.Minute}
}

// MarshalJSON encodes the slot as its label.
func (s TimeSlot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Label())
}

// UnmarshalJSON accepts a slot label.
func (s *TimeSlot) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSlotLabel(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSlotLabel parses "h:mm AM" labels. Input is normalized for spacing and case.
func ParseSlotLabel(label string) (TimeSlot, error) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(label), " "))
	t, err := time.Parse("3:04 PM", normalized)
	if err != nil {
		return TimeSlot{}, fmt.Errorf("parse slot label %q: %w", label, err)
	}
	return TimeSlot{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Date is a calendar date with no time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ErrInvalidDate is returned when a date string is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return DateOf(t), nil
}

// NewDate normalizes overflowing components the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight of the date in loc.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// At returns the instant the slot starts on this date in loc.
func (d Date) At(slot TimeSlot, loc *time.Location) time.Time {
	return d.Time(loc).Add(time.Duration(slot.Hour)*time.Hour + time.Duration(slot.Minute)*time.Minute)
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

// AddDays returns the date n days later (or earlier when negative).
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.compare(other) < 0
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.compare(other) > 0
}

func (d Date) compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return d.Year - other.Year
	case d.Month != other.Month:
		return int(d.Month) - int(other.Month)
	default:
		return d.Day - other.Day
	}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON encodes the date as YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts YYYY-MM-DD.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

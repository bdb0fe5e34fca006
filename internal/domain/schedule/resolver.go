package schedule

import (
	"time"

	"github.com/yanqian/roofbook/pkg/util"
)

const (
	// DefaultStepMinutes is the slot granularity.
	DefaultStepMinutes = 30
	// DefaultMaxPerDay is the shared daily capacity.
	DefaultMaxPerDay = 20
	// DefaultLimitedThreshold marks a day as nearly full for display.
	DefaultLimitedThreshold = 15
)

// Config tunes the resolver. Zero values fall back to the defaults above.
type Config struct {
	Location         *time.Location
	StepMinutes      int
	MaxPerDay        int
	LimitedThreshold int
	Now              util.Clock
}

// DayAvailability summarizes one date.
type DayAvailability struct {
	Date              Date `json:"date"`
	BookedCount       int  `json:"bookedCount"`
	CapacityRemaining int  `json:"capacityRemaining"`
	IsOpen            bool `json:"isOpen"`
	IsBookable        bool `json:"isBookable"`
	Limited           bool `json:"limited"`
}

// SlotAvailability marks one slot of an open day.
type SlotAvailability struct {
	Time     TimeSlot `json:"time"`
	IsBooked bool     `json:"isBooked"`
	IsHeld   bool     `json:"isHeld"`
}

// Available reports whether the slot can be chosen.
func (s SlotAvailability) Available() bool {
	return !s.IsBooked && !s.IsHeld
}

// LabelSet is a set of slot labels.
type LabelSet map[string]struct{}

// NewLabelSet builds a set from labels.
func NewLabelSet(labels ...string) LabelSet {
	set := make(LabelSet, len(labels))
	for _, label := range labels {
		set[label] = struct{}{}
	}
	return set
}

// Has reports membership. A nil set is empty.
func (s LabelSet) Has(label string) bool {
	_, ok := s[label]
	return ok
}

// Resolver derives bookable days and slots from the policy and current bookings.
type Resolver struct {
	policy Policy
	cfg    Config
}

// NewResolver constructs a Resolver.
func NewResolver(policy Policy, cfg Config) *Resolver {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.StepMinutes <= 0 {
		cfg.StepMinutes = DefaultStepMinutes
	}
	if cfg.MaxPerDay <= 0 {
		cfg.MaxPerDay = DefaultMaxPerDay
	}
	if cfg.LimitedThreshold <= 0 {
		cfg.LimitedThreshold = DefaultLimitedThreshold
	}
	if cfg.Now == nil {
		cfg.Now = util.NowUTC
	}
	return &Resolver{policy: policy, cfg: cfg}
}

// Location is the business time zone.
func (r *Resolver) Location() *time.Location {
	return r.cfg.Location
}

// MaxPerDay is the daily capacity.
func (r *Resolver) MaxPerDay() int {
	return r.cfg.MaxPerDay
}

// Today returns the current date in the business time zone.
func (r *Resolver) Today() Date {
	return DateOf(r.cfg.Now().In(r.cfg.Location))
}

// HoursFor returns the policy hours for the date's weekday.
func (r *Resolver) HoursFor(date Date) BusinessHours {
	return r.policy.HoursFor(date.Weekday())
}

// IsDateBookable is false for past dates, closed weekdays and full days.
func (r *Resolver) IsDateBookable(date Date, count int) bool {
	if date.Before(r.Today()) {
		return false
	}
	if !r.HoursFor(date).Open {
		return false
	}
	return count < r.cfg.MaxPerDay
}

// DayAvailability builds the day summary for count active appointments.
func (r *Resolver) DayAvailability(date Date, count int) DayAvailability {
	open := r.HoursFor(date).Open
	remaining := r.cfg.MaxPerDay - count
	if remaining < 0 || !open {
		remaining = 0
	}
	return DayAvailability{
		Date:              date,
		BookedCount:       count,
		CapacityRemaining: remaining,
		IsOpen:            open,
		IsBookable:        r.IsDateBookable(date, count),
		Limited:           open && count >= r.cfg.LimitedThreshold,
	}
}

// Slots returns the generated slots of the date, ignoring bookings.
func (r *Resolver) Slots(date Date) []TimeSlot {
	return SlotsForHours(r.HoursFor(date), r.cfg.StepMinutes)
}

// SlotsFor marks every generated slot booked when its label is in booked.
// Closed days yield an empty list.
func (r *Resolver) SlotsFor(date Date, booked LabelSet) []SlotAvailability {
	slots := r.Slots(date)
	out := make([]SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		out = append(out, SlotAvailability{
			Time:     slot,
			IsBooked: booked.Has(slot.Label()),
		})
	}
	return out
}

// IsSlot reports whether label is one of the date's generated slots.
func (r *Resolver) IsSlot(date Date, label string) bool {
	for _, slot := range r.Slots(date) {
		if slot.Label() == label {
			return true
		}
	}
	return false
}

// MarkHeld flags slots held by someone else. Booked slots keep IsHeld false.
func MarkHeld(slots []SlotAvailability, held LabelSet) []SlotAvailability {
	out := make([]SlotAvailability, len(slots))
	for i, slot := range slots {
		slot.IsHeld = !slot.IsBooked && held.Has(slot.Time.Label())
		out[i] = slot
	}
	return out
}

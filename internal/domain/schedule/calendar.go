package schedule

import (
	"fmt"
	"strings"
	"time"
)

// MonthView is the calendar state a client holds: which month is shown and
// which date, if any, is selected.
type MonthView struct {
	Year     int
	Month    time.Month
	Selected Date
	Today    Date
}

// ParseMonth reads "YYYY-MM".
func ParseMonth(raw string) (MonthView, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(raw))
	if err != nil {
		return MonthView{}, fmt.Errorf("month must be formatted as YYYY-MM: %q", raw)
	}
	return MonthView{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the view containing date.
func MonthOf(date Date) MonthView {
	return MonthView{Year: date.Year, Month: date.Month}
}

// First is the first day of the month.
func (v MonthView) First() Date {
	return Date{Year: v.Year, Month: v.Month, Day: 1}
}

// Last is the last day of the month.
func (v MonthView) Last() Date {
	return NewDate(v.Year, v.Month+1, 0)
}

// Next returns the following month with the same selection and today.
func (v MonthView) Next() MonthView {
	first := NewDate(v.Year, v.Month+1, 1)
	v.Year, v.Month = first.Year, first.Month
	return v
}

// Prev returns the preceding month with the same selection and today.
func (v MonthView) Prev() MonthView {
	first := NewDate(v.Year, v.Month-1, 1)
	v.Year, v.Month = first.Year, first.Month
	return v
}

func (v MonthView) String() string {
	return fmt.Sprintf("%04d-%02d", v.Year, int(v.Month))
}

// CalendarCell is one square of the grid. Padding cells from adjacent months have
// InMonth false and no availability.
type CalendarCell struct {
	Date         Date             `json:"date"`
	InMonth      bool             `json:"inMonth"`
	IsToday      bool             `json:"isToday"`
	IsSelected   bool             `json:"isSelected"`
	IsPast       bool             `json:"isPast"`
	Availability *DayAvailability `json:"availability,omitempty"`
}

// Selectable reports whether the cell can be clicked to start a booking.
func (c CalendarCell) Selectable() bool {
	return c.InMonth && c.Availability != nil && c.Availability.IsBookable
}

// MonthGrid is a Sunday-first grid of whole weeks.
type MonthGrid struct {
	Month string            `json:"month"`
	Prev  string            `json:"prev"`
	Next  string            `json:"next"`
	Weeks [][7]CalendarCell `json:"weeks"`
}

// BuildMonth lays out the month and attaches the availability of in-month days.
// Days missing from days get no availability and are not selectable.
func BuildMonth(view MonthView, days []DayAvailability) MonthGrid {
	byDate := make(map[Date]DayAvailability, len(days))
	for _, day := range days {
		byDate[day.Date] = day
	}

	first, last := view.First(), view.Last()
	cursor := first.AddDays(-int(first.Weekday()))
	grid := MonthGrid{
		Month: view.String(),
		Prev:  view.Prev().String(),
		Next:  view.Next().String(),
	}
	for !cursor.After(last) {
		var week [7]CalendarCell
		for i := range week {
			cell := CalendarCell{
				Date:    cursor,
				InMonth: cursor.Year == view.Year && cursor.Month == view.Month,
			}
			if cell.InMonth {
				cell.IsToday = !view.Today.IsZero() && cursor == view.Today
				cell.IsSelected = !view.Selected.IsZero() && cursor == view.Selected
				cell.IsPast = !view.Today.IsZero() && cursor.Before(view.Today)
				if day, ok := byDate[cursor]; ok {
					cell.Availability = &day
				}
			}
			week[i] = cell
			cursor = cursor.AddDays(1)
		}
		grid.Weeks = append(grid.Weeks, week)
	}
	return grid
}

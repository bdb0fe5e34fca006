package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildMonth_Layout(t *testing.T) {
	view, err := ParseMonth("2026-10")
	require.NoError(t, err)
	view.Today = NewDate(2026, 10, 15)
	view.Selected = NewDate(2026, 10, 19)

	r := newTestResolver()
	var days []DayAvailability
	for d := view.First(); !d.After(view.Last()); d = d.AddDays(1) {
		days = append(days, r.DayAvailability(d, 0))
	}

	grid := BuildMonth(view, days)
	require.Equal(t, "2026-10", grid.Month)
	require.Equal(t, "2026-09", grid.Prev)
	require.Equal(t, "2026-11", grid.Next)
	// October 2026 starts on a Thursday and ends on a Saturday.
	require.Len(t, grid.Weeks, 5)

	first := grid.Weeks[0]
	require.Equal(t, time.Sunday, first[0].Date.Weekday())
	require.False(t, first[0].InMonth)
	require.Nil(t, first[0].Availability)
	require.True(t, first[4].InMonth)
	require.Equal(t, 1, first[4].Date.Day)

	var today, selected CalendarCell
	for _, week := range grid.Weeks {
		for _, cell := range week {
			if cell.IsToday {
				today = cell
			}
			if cell.IsSelected {
				selected = cell
			}
		}
	}
	require.Equal(t, view.Today, today.Date)
	require.True(t, today.Selectable())
	require.Equal(t, view.Selected, selected.Date)

	past := grid.Weeks[1][3]
	require.Equal(t, NewDate(2026, 10, 7), past.Date)
	require.True(t, past.IsPast)
	require.False(t, past.Selectable())

	saturday := grid.Weeks[2][6]
	require.Equal(t, NewDate(2026, 10, 17), saturday.Date)
	require.False(t, saturday.Selectable())
}

func TestMonthView_Navigation(t *testing.T) {
	view, err := ParseMonth("2026-12")
	require.NoError(t, err)
	require.Equal(t, "2027-01", view.Next().String())
	require.Equal(t, "2026-11", view.Prev().String())
	require.Equal(t, 31, view.Last().Day)

	feb := MonthOf(NewDate(2028, 2, 10))
	require.Equal(t, 29, feb.Last().Day)

	_, err = ParseMonth("2026/12")
	require.Error(t, err)
}

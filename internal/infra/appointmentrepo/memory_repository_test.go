package appointmentrepo

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/roofbook/internal/domain/booking"
	"github.com/yanqian/roofbook/internal/domain/schedule"
)

var day = schedule.NewDate(2026, 10, 19)

func newAppointment(id, label string) booking.Appointment {
	return booking.Appointment{
		ID:                 id,
		Date:               day,
		Time:               label,
		Status:             booking.StatusConfirmed,
		ConfirmationNumber: "RR-" + id,
	}
}

func TestMemoryRepository_CreateGuards(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, newAppointment("a", "9:00 AM"), 2)
	require.NoError(t, err)

	_, err = repo.Create(ctx, newAppointment("b", "9:00 AM"), 2)
	require.ErrorIs(t, err, booking.ErrDuplicateSlot)

	dup := newAppointment("c", "10:00 AM")
	dup.ConfirmationNumber = "RR-a"
	_, err = repo.Create(ctx, dup, 2)
	require.ErrorIs(t, err, booking.ErrDuplicateConfirmation)

	_, err = repo.Create(ctx, newAppointment("d", "9:30 AM"), 2)
	require.NoError(t, err)
	_, err = repo.Create(ctx, newAppointment("e", "11:00 AM"), 2)
	require.ErrorIs(t, err, booking.ErrDayFull)
}

func TestMemoryRepository_CancelReleasesSlotAndCapacity(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, newAppointment("a", "9:00 AM"), 1)
	require.NoError(t, err)
	_, err = repo.UpdateStatus(ctx, "a", booking.StatusCancelled)
	require.NoError(t, err)

	counts, err := repo.CountByDateRange(ctx, day, day)
	require.NoError(t, err)
	require.Zero(t, counts[day])

	_, err = repo.Create(ctx, newAppointment("b", "9:00 AM"), 1)
	require.NoError(t, err)

	_, err = repo.UpdateStatus(ctx, "a", booking.StatusCompleted)
	require.ErrorIs(t, err, booking.ErrTerminalStatus)
	_, err = repo.UpdateStatus(ctx, "zzz", booking.StatusCompleted)
	require.ErrorIs(t, err, booking.ErrNotFound)
}

func TestMemoryRepository_ListFiltersAndOrders(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	for i, label := range []string{"2:00 PM", "8:00 AM", "10:30 AM"} {
		_, err := repo.Create(ctx, newAppointment(fmt.Sprint(i), label), 20)
		require.NoError(t, err)
	}
	other := newAppointment("x", "8:00 AM")
	other.Date = day.AddDays(1)
	_, err := repo.Create(ctx, other, 20)
	require.NoError(t, err)
	_, err = repo.UpdateStatus(ctx, "2", booking.StatusCancelled)
	require.NoError(t, err)

	active, err := repo.List(ctx, booking.Filter{Date: day, StatusIn: booking.ActiveStatuses})
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, "8:00 AM", active[0].Time)
	require.Equal(t, "2:00 PM", active[1].Time)

	all, err := repo.List(ctx, booking.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, other.Date, all[3].Date)
}

func TestMemoryRepository_ConcurrentCreateSameSlot(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := repo.Create(ctx, newAppointment(fmt.Sprint(i), "9:00 AM"), 20); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	require.Equal(t, 1, wins)
}

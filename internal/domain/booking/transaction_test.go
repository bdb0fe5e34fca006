package booking

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/roofbook/internal/domain/schedule"
	apperrors "github.com/yanqian/roofbook/pkg/errors"
)

var testCfg = Config{DurationMinutes: 60, UnitRate: 4.5, MaxSpecialRequests: 1000}

func openDay() schedule.DayAvailability {
	return schedule.DayAvailability{
		Date:              schedule.NewDate(2026, 10, 19),
		BookedCount:       1,
		CapacityRemaining: 19,
		IsOpen:            true,
		IsBookable:        true,
	}
}

func daySlots() []schedule.SlotAvailability {
	return []schedule.SlotAvailability{
		{Time: schedule.TimeSlot{Hour: 8}},
		{Time: schedule.TimeSlot{Hour: 8, Minute: 30}, IsBooked: true},
		{Time: schedule.TimeSlot{Hour: 9}},
		{Time: schedule.TimeSlot{Hour: 9, Minute: 30}, IsHeld: true},
	}
}

func validDetails() Details {
	return Details{
		Customer: Customer{
			Name:  "Dana Whitfield",
			Email: "Dana@Example.com ",
			Phone: "(555) 010-2030",
		},
		PropertyAddress: "12 Elm St, Springfield",
		RoofAreaSqft:    2000,
		TermsAccepted:   true,
	}
}

func reviewed(t *testing.T) Transaction {
	t.Helper()
	tx, err := Begin().SelectDate(openDay())
	require.NoError(t, err)
	tx, err = tx.WithSlots(daySlots())
	require.NoError(t, err)
	tx, err = tx.SelectSlot("9:00 AM")
	require.NoError(t, err)
	tx, err = tx.Review(validDetails(), testCfg)
	require.NoError(t, err)
	return tx
}

func TestTransaction_HappyPath(t *testing.T) {
	tx := reviewed(t)
	require.Equal(t, StateReviewPending, tx.State())

	summary, ok := tx.Summary()
	require.True(t, ok)
	require.Equal(t, "9:00 AM", summary.Time)
	require.Equal(t, "dana@example.com", summary.Contact.Email)
	require.Equal(t, &Estimate{AreaSqft: 2000, Low: 8100, High: 9900}, summary.Estimate)

	committing, err := tx.BeginCommit()
	require.NoError(t, err)
	require.Equal(t, StateCommitting, committing.State())
	require.Equal(t, StateReviewPending, tx.State())

	done, err := committing.Succeed(Appointment{ID: "a-1", ConfirmationNumber: "RR-X-1", Date: tx.Date(), Time: tx.Slot()})
	require.NoError(t, err)
	confirmation, ok := done.Confirmation()
	require.True(t, ok)
	require.Equal(t, "a-1", confirmation.AppointmentID)
	require.Equal(t, "RR-X-1", confirmation.ConfirmationNumber)

	_, err = done.SelectDate(openDay())
	require.True(t, apperrors.IsCode(err, CodeInvalidTransition))
}

func TestTransaction_SelectDateRejectsUnbookable(t *testing.T) {
	day := openDay()
	day.IsBookable = false

	tx := Begin()
	next, err := tx.SelectDate(day)
	require.True(t, apperrors.IsCode(err, CodeDateUnavailable))
	require.Equal(t, StateStart, next.State())

	var zero Transaction
	_, err = zero.SelectDate(openDay())
	require.NoError(t, err)
}

func TestTransaction_SelectSlot(t *testing.T) {
	tx, err := Begin().SelectDate(openDay())
	require.NoError(t, err)
	tx, err = tx.WithSlots(daySlots())
	require.NoError(t, err)

	_, err = tx.SelectSlot("8:30 AM")
	require.True(t, apperrors.IsCode(err, CodeSlotUnavailable))
	_, err = tx.SelectSlot("9:30 AM")
	require.True(t, apperrors.IsCode(err, CodeSlotUnavailable))
	_, err = tx.SelectSlot("7:00 PM")
	require.True(t, apperrors.IsCode(err, CodeSlotUnavailable))
	_, err = tx.SelectSlot("nine")
	require.True(t, apperrors.IsCode(err, CodeValidation))

	chosen, err := tx.SelectSlot("8:00 am")
	require.NoError(t, err)
	require.Equal(t, StateSlotChosen, chosen.State())
	require.Equal(t, "8:00 AM", chosen.Slot())
}

func TestTransaction_ReviewValidation(t *testing.T) {
	tx, err := Begin().SelectDate(openDay())
	require.NoError(t, err)
	tx, err = tx.WithSlots(daySlots())
	require.NoError(t, err)
	tx, err = tx.SelectSlot("9:00 AM")
	require.NoError(t, err)

	noTerms := validDetails()
	noTerms.TermsAccepted = false
	noTerms.Customer.Name = ""
	_, err = tx.Review(noTerms, testCfg)
	require.True(t, apperrors.IsCode(err, CodeTermsNotAccepted))

	cases := map[string]func(d *Details){
		"name":    func(d *Details) { d.Customer.Name = " " },
		"email":   func(d *Details) { d.Customer.Email = "not-an-email" },
		"phone":   func(d *Details) { d.Customer.Phone = "12" },
		"address": func(d *Details) { d.PropertyAddress = "" },
		"special": func(d *Details) { d.SpecialRequests = strings.Repeat("x", 1001) },
	}
	for name, mutate := range cases {
		d := validDetails()
		mutate(&d)
		_, err := tx.Review(d, testCfg)
		require.True(t, apperrors.IsCode(err, CodeValidation), name)
	}

	d := validDetails()
	d.SpecialRequests = strings.Repeat("é", 1000)
	_, err = tx.Review(d, testCfg)
	require.NoError(t, err)
}

func TestTransaction_ReviewRequiresSlot(t *testing.T) {
	tx, err := Begin().SelectDate(openDay())
	require.NoError(t, err)
	_, err = tx.Review(validDetails(), testCfg)
	require.True(t, apperrors.IsCode(err, CodeInvalidTransition))

	_, err = tx.BeginCommit()
	require.True(t, apperrors.IsCode(err, CodeInvalidTransition))
}

func TestTransaction_FailRouting(t *testing.T) {
	committing, err := reviewed(t).BeginCommit()
	require.NoError(t, err)

	persistence := committing.Fail(apperrors.Wrap(CodePersistenceFailure, "db down", errors.New("conn reset")))
	require.Equal(t, StateFailed, persistence.State())
	require.Equal(t, "9:00 AM", persistence.Slot())
	retry, err := persistence.BeginCommit()
	require.NoError(t, err)
	require.Equal(t, StateCommitting, retry.State())

	lostSlot := committing.Fail(apperrors.Wrap(CodeSlotUnavailable, "taken", nil))
	require.Equal(t, StateSelecting, lostSlot.State())
	require.Empty(t, lostSlot.Slot())
	_, ok := lostSlot.Summary()
	require.False(t, ok)
	_, err = lostSlot.BeginCommit()
	require.True(t, apperrors.IsCode(err, CodeInvalidTransition))

	lostDate := committing.Fail(apperrors.Wrap(CodeDateUnavailable, "full", nil))
	require.Equal(t, StateStart, lostDate.State())
	require.True(t, lostDate.Date().IsZero())
}

func TestEstimateCost(t *testing.T) {
	require.Nil(t, EstimateCost(0, 4.5))
	require.Equal(t, &Estimate{AreaSqft: 1234, Low: 4998, High: 6108}, EstimateCost(1234, 4.5))
}

func TestNewConfirmationNumber(t *testing.T) {
	a := NewConfirmationNumber(testNow)
	b := NewConfirmationNumber(testNow)
	require.True(t, strings.HasPrefix(a, "RR-"))
	require.Len(t, strings.Split(a, "-"), 3)
	require.NotEqual(t, a, b)
}

package lead

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/roofbook/internal/domain/booking"
	apperrors "github.com/yanqian/roofbook/pkg/errors"
)

func TestService_CreateAndGet(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, newTestLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{
		Name:            " Lee Park ",
		Email:           "LEE@example.com",
		PropertyAddress: "4 Oak Ave",
		TotalSqft:       1850,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Lee Park", created.Name)
	require.Equal(t, "lee@example.com", created.Email)
	require.Equal(t, StatusNew, created.Status)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	_, err = svc.Get(ctx, "missing")
	require.True(t, apperrors.IsCode(err, booking.CodeNotFound))
}

func TestService_CreateValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), newTestLogger())

	_, err := svc.Create(context.Background(), CreateRequest{Email: "a@b.com"})
	require.True(t, apperrors.IsCode(err, booking.CodeValidation))

	_, err = svc.Create(context.Background(), CreateRequest{PropertyAddress: "x", Email: "nope"})
	require.True(t, apperrors.IsCode(err, booking.CodeValidation))
}

func TestBookingLeads(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, newTestLogger())
	ctx := context.Background()
	created, err := svc.Create(ctx, CreateRequest{PropertyAddress: "4 Oak Ave", TotalSqft: 900})
	require.NoError(t, err)

	adapter := NewBookingLeads(repo)
	record, err := adapter.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 900.0, record.TotalSqft)

	_, err = adapter.Get(ctx, "missing")
	require.ErrorIs(t, err, booking.ErrNotFound)

	require.NoError(t, adapter.MarkBooked(ctx, created.ID, "appt-1"))
	require.NoError(t, svc.MarkPaid(ctx, created.ID, "pi_123"))
	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, got.Status)
	require.Equal(t, "appt-1", got.AppointmentID)
	require.Equal(t, "pi_123", got.PaymentRef)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memoryRepo struct {
	mu    sync.Mutex
	items map[string]Lead
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[string]Lead{}}
}

func (r *memoryRepo) Create(_ context.Context, lead Lead) (Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[lead.ID] = lead
	return lead, nil
}

func (r *memoryRepo) Get(_ context.Context, id string) (Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead, ok := r.items[id]
	if !ok {
		return Lead{}, ErrNotFound
	}
	return lead, nil
}

func (r *memoryRepo) MarkBooked(_ context.Context, id, appointmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	lead.Status = StatusBooked
	lead.AppointmentID = appointmentID
	r.items[id] = lead
	return nil
}

func (r *memoryRepo) MarkPaid(_ context.Context, id, paymentRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	lead.Status = StatusPaid
	lead.PaymentRef = paymentRef
	r.items[id] = lead
	return nil
}

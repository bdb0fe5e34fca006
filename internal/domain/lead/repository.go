package lead

import "context"

// Repository abstracts lead persistence.
type Repository interface {
	Create(ctx context.Context, lead Lead) (Lead, error)
	Get(ctx context.Context, id string) (Lead, error)
	MarkBooked(ctx context.Context, id, appointmentID string) error
	MarkPaid(ctx context.Context, id, paymentRef string) error
}

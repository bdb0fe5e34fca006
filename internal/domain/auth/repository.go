package auth

import "context"

// Repository abstracts staff account lookup.
type Repository interface {
	Add(ctx context.Context, email, name, passwordHash string) (Staff, error)
	GetByEmail(ctx context.Context, email string) (Staff, bool, error)
	GetByID(ctx context.Context, id int64) (Staff, bool, error)
}

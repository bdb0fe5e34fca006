package staffrepo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/roofbook/internal/domain/auth"
	"github.com/yanqian/roofbook/internal/infra/postgres"
)

// PostgresRepository persists staff accounts in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Add inserts a new staff row.
func (r *PostgresRepository) Add(ctx context.Context, email, name, passwordHash string) (auth.Staff, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO staff (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, password_hash, created_at
	`, email, name, passwordHash)
	staff, err := scanStaff(row)
	if postgres.IsUniqueViolation(err, postgres.ConstraintStaffEmail) {
		return auth.Staff{}, auth.ErrEmailExists
	}
	return staff, err
}

// GetByEmail fetches a staff account by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (auth.Staff, bool, error) {
	return r.getOne(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM staff
		WHERE email = $1
		LIMIT 1
	`, email)
}

// GetByID fetches by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (auth.Staff, bool, error) {
	return r.getOne(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM staff
		WHERE id = $1
		LIMIT 1
	`, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (auth.Staff, bool, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return auth.Staff{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return auth.Staff{}, false, rows.Err()
	}
	staff, err := scanStaff(rows)
	if err != nil {
		return auth.Staff{}, false, err
	}
	return staff, true, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStaff(row rowScanner) (auth.Staff, error) {
	var staff auth.Staff
	if err := row.Scan(&staff.ID, &staff.Email, &staff.Name, &staff.PasswordHash, &staff.CreatedAt); err != nil {
		return auth.Staff{}, err
	}
	return staff, nil
}

var _ auth.Repository = (*PostgresRepository)(nil)

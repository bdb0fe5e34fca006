package staffrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/yanqian/roofbook/internal/domain/auth"
	"github.com/yanqian/roofbook/internal/infra/config"
)

// Seed adds the configured staff accounts; existing emails are left untouched.
func Seed(ctx context.Context, repo auth.Repository, staff []config.StaffConfig) (int, error) {
	added := 0
	for _, s := range staff {
		email, err := auth.NormalizeEmail(s.Email)
		if err != nil {
			return added, fmt.Errorf("staff %q: %w", s.Email, err)
		}
		if s.PasswordHash == "" {
			return added, fmt.Errorf("staff %q: password hash required", email)
		}
		if _, err := repo.Add(ctx, email, s.Name, s.PasswordHash); err != nil {
			if errors.Is(err, auth.ErrEmailExists) {
				continue
			}
			return added, err
		}
		added++
	}
	return added, nil
}

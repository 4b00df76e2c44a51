package ports

import (
	"context"
	"time"

	"github.com/zabotech/ops-system/internal/core/domain"
)

// UserRepository defines persistence operations for staff accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// SetResetToken stores the hashed recovery token and its absolute expiry.
	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error
	// FindByResetToken matches the hashed token against users whose reset
	// credential has not expired as of now.
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)
	// ResetPassword replaces the password hash and clears the reset fields in
	// one write, making the token single-use.
	ResetPassword(ctx context.Context, id, passwordHash string) error
}

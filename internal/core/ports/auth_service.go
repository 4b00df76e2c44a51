package ports

import (
	"context"

	"github.com/zabotech/ops-system/internal/core/domain"
)

// AuthService implements registration, login, and the password-reset
// token lifecycle.
type AuthService interface {
	// Register creates the account and returns it with a session token.
	Register(ctx context.Context, name, email, password string) (*domain.User, string, error)
	// Login authenticates and returns the user with a session token. Unknown
	// email and wrong password both fail with ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
	// ForgotPassword issues a time-boxed single-use reset token and emails
	// the recovery link. A failed send fails the whole operation.
	ForgotPassword(ctx context.Context, email string) error
	// ResetPassword consumes a raw reset token and sets the new password.
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
}

package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/zabotech/ops-system/internal/core/domain"
	"github.com/zabotech/ops-system/internal/core/ports"
)

const resetTokenBytes = 32

// AuthService implements registration, login, and the password-reset
// token lifecycle.
type AuthService struct {
	users     ports.UserRepository
	mailer    ports.Mailer
	jwtSecret string
	tokenTTL  time.Duration
	resetTTL  time.Duration
	baseURL   string
	logger    zerolog.Logger
}

func NewAuthService(users ports.UserRepository, mailer ports.Mailer, jwtSecret, baseURL string, tokenTTL, resetTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	if resetTTL <= 0 {
		resetTTL = 10 * time.Minute
	}
	return &AuthService{
		users:     users,
		mailer:    mailer,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		resetTTL:  resetTTL,
		baseURL:   baseURL,
		logger:    logger,
	}
}

// Register creates a new account. The raw password is stored only as a
// bcrypt hash.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}

	token, err := s.generateToken(created)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Str("user_id", created.ID).Msg("user registered")
	return created, token, nil
}

// Login authenticates by email and password. A missing account and a wrong
// password produce the same error so the response never reveals whether the
// email is registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Profile returns the identity of the bearer.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// ForgotPassword issues a reset token for the account and emails the
// recovery link. The raw token is delivered out-of-band only; at rest we
// keep its sha256 plus a 10-minute expiry. A failed send fails the request —
// the token row stays behind but is unusable to anyone without the email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	rawToken := hex.EncodeToString(raw)

	expires := time.Now().UTC().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, hashResetToken(rawToken), expires); err != nil {
		return err
	}

	resetLink := s.baseURL + "/users/reset-password/" + rawToken
	if err := s.mailer.SendPasswordReset(ctx, user.Email, ports.ResetEmailData{
		Name:      user.Name,
		ResetLink: resetLink,
	}); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to send password reset email")
		return fmt.Errorf("send reset email: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("password reset token issued")
	return nil
}

// ResetPassword consumes a raw reset token: the stored hash must match and
// the expiry must not have passed. On success the password is replaced and
// the reset fields are cleared so the token cannot be used twice.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	user, err := s.users.FindByResetToken(ctx, hashResetToken(rawToken), time.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidResetToken
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.users.ResetPassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("password reset completed")
	return nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

package ports

import (
	"context"
	"time"
)

// WelcomeEmailData feeds the welcome template sent after client creation.
type WelcomeEmailData struct {
	Name                    string
	Company                 string
	SubscriptionRenewalDate *time.Time
	SubscriptionAmount      *float64
}

// ResetEmailData feeds the password-recovery template.
type ResetEmailData struct {
	Name      string
	ResetLink string
}

// Mailer delivers transactional email.
type Mailer interface {
	SendWelcome(ctx context.Context, to string, data WelcomeEmailData) error
	SendPasswordReset(ctx context.Context, to string, data ResetEmailData) error
}

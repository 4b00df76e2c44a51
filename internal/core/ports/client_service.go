package ports

import (
	"context"
	"time"

	"github.com/zabotech/ops-system/internal/core/domain"
)

// CreateClientInput carries all data needed to register a new client.
type CreateClientInput struct {
	Name                    string
	Email                   string
	Phone                   string
	Company                 string
	SubscriptionRenewalDate time.Time
	SubscriptionAmount      float64
	Notes                   string
}

// UpdateClientInput carries the full-update payload (PUT semantics: every
// field is written as given).
type UpdateClientInput struct {
	Name                    string
	Email                   string
	Phone                   string
	Company                 string
	SubscriptionRenewalDate *time.Time
	SubscriptionAmount      *float64
	Notes                   string
}

// ListClientsResult is returned by List.
type ListClientsResult struct {
	Items       []*domain.Client
	Total       int64
	CurrentPage int
	TotalPages  int
	HasNext     bool
	HasPrev     bool
}

// ClientService defines use-case operations for clients.
type ClientService interface {
	// Create registers the client and, on success, sends a welcome email in
	// the background. Email failures never affect the returned result.
	Create(ctx context.Context, input CreateClientInput) (*domain.Client, error)
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	GetByEmail(ctx context.Context, email string) (*domain.Client, error)
	List(ctx context.Context, page, limit int) (*ListClientsResult, error)
	Update(ctx context.Context, id string, input UpdateClientInput) (*domain.Client, error)
	Patch(ctx context.Context, id string, patch ClientPatch) (*domain.Client, error)
	Delete(ctx context.Context, id string) error
}

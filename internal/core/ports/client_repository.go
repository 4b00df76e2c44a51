package ports

import (
	"context"
	"time"

	"github.com/zabotech/ops-system/internal/core/domain"
)

// ClientPatch holds the mutable client fields for partial updates. Nil
// pointers leave the stored value untouched.
type ClientPatch struct {
	Name                    *string
	Email                   *string
	Phone                   *string
	Company                 *string
	SubscriptionRenewalDate *time.Time
	SubscriptionAmount      *float64
	Notes                   *string
}

// ClientRepository defines persistence operations for clients.
type ClientRepository interface {
	Create(ctx context.Context, c *domain.Client) (*domain.Client, error)
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	FindByEmail(ctx context.Context, email string) (*domain.Client, error)
	List(ctx context.Context, page, limit int) ([]*domain.Client, int64, error)
	// Replace overwrites all mutable fields (full update).
	Replace(ctx context.Context, id string, c *domain.Client) (*domain.Client, error)
	Patch(ctx context.Context, id string, patch ClientPatch) (*domain.Client, error)
	Delete(ctx context.Context, id string) error
}

package ports

import (
	"context"
	"time"

	"github.com/zabotech/ops-system/internal/core/domain"
)

// ListOrdersFilter carries all query parameters for listing orders.
// All string filters are exact-match; empty means no filter.
type ListOrdersFilter struct {
	Status     string
	Priority   string
	Category   string
	ClientID   string
	CreatedBy  string
	AssignedTo string
	SortBy     string // defaults to createdAt
	SortDesc   bool
	Page       int // 1-based
	Limit      int
}

// OrderUpdate holds the mutable order fields for the generic update path.
// Nil pointers leave the stored value untouched. Status is deliberately
// absent: status changes go through UpdateStatus so the history append and
// the field set land in a single write.
type OrderUpdate struct {
	Title             *string
	Description       *string
	Category          *domain.OrderCategory
	Priority          *domain.OrderPriority
	AssignedTo        *string
	EstimatedCost     *float64
	ActualCost        *float64
	EstimatedDuration *float64
	ActualDuration    *float64
	ScheduledDate     *time.Time
	DueDate           *time.Time
	Materials         *[]domain.Material
	Attachments       *[]domain.Attachment
	Notes             *string
	InternalNotes     *string
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) (*domain.Order, error)
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	// List returns a page of orders matching filter and the total count.
	List(ctx context.Context, filter ListOrdersFilter) ([]*domain.Order, int64, error)
	// ListByClient returns a page of a client's orders, newest first, plus the total.
	ListByClient(ctx context.Context, clientID string, page, limit int) ([]*domain.Order, int64, error)
	Update(ctx context.Context, id string, upd OrderUpdate) (*domain.Order, error)
	// UpdateStatus atomically sets the new status, appends the history entry,
	// and stamps completedAt when non-nil. Returns the updated order.
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, entry domain.StatusChange, completedAt *time.Time) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
	CountByPriority(ctx context.Context) (map[string]int64, error)
	CountOverdue(ctx context.Context, now time.Time) (int64, error)
	FindRecent(ctx context.Context, limit int) ([]*domain.Order, error)
}

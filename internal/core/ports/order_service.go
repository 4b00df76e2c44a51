package ports

import (
	"context"
	"time"

	"github.com/zabotech/ops-system/internal/core/domain"
)

// MaterialInput holds one embedded line item on order creation.
type MaterialInput struct {
	Name     string
	Quantity int
	Cost     float64
}

// CreateOrderInput carries all data needed to create a new order. The
// creator id comes from the authenticated request, not the payload.
type CreateOrderInput struct {
	ClientID          string
	Title             string
	Description       string
	Category          string
	Priority          string
	AssignedTo        string // defaults to the creator when empty
	EstimatedCost     *float64
	EstimatedDuration *float64
	ScheduledDate     *time.Time
	DueDate           *time.Time
	Materials         []MaterialInput
	Notes             string
	InternalNotes     string
}

// AttachmentInput is a file reference added to an order; the upload
// timestamp is stamped by the service.
type AttachmentInput struct {
	Filename string
	URL      string
}

// UpdateOrderInput mirrors OrderUpdate at the use-case boundary. Status is
// not updatable here.
type UpdateOrderInput struct {
	Title             *string
	Description       *string
	Category          *string
	Priority          *string
	AssignedTo        *string
	EstimatedCost     *float64
	ActualCost        *float64
	EstimatedDuration *float64
	ActualDuration    *float64
	ScheduledDate     *time.Time
	DueDate           *time.Time
	Materials         *[]MaterialInput
	Attachments       *[]AttachmentInput
	Notes             *string
	InternalNotes     *string
}

// ClientRef is the populated client summary embedded in order views.
type ClientRef struct {
	ID      string
	Name    string
	Email   string
	Company string
}

// UserRef is the populated user summary embedded in order views.
type UserRef struct {
	ID    string
	Name  string
	Email string
}

// OrderDetail is an order together with its resolved references. Actors maps
// the id of each history entry's changed-by user to its summary; entries
// whose user has since been deleted are simply absent from the map.
type OrderDetail struct {
	Order      *domain.Order
	Client     *ClientRef
	CreatedBy  *UserRef
	AssignedTo *UserRef
	Actors     map[string]UserRef
}

// Pagination describes the page window of a list result.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalOrders int64
	HasNext     bool
	HasPrev     bool
}

// ListOrdersInput carries all parameters for the list endpoint.
type ListOrdersInput struct {
	Status     string
	Priority   string
	Category   string
	ClientID   string
	CreatedBy  string
	AssignedTo string
	SortBy     string
	SortOrder  string // "asc" or "desc" (default)
	Page       int
	Limit      int
}

// ListOrdersResult is returned by ListOrders.
type ListOrdersResult struct {
	Items      []OrderDetail
	Pagination Pagination
}

// ClientOrdersResult is returned by ListByClient.
type ClientOrdersResult struct {
	Client      ClientRef
	Orders      []OrderDetail
	TotalOrders int64
}

// StatusCount is one bucket of a grouped aggregate.
type StatusCount struct {
	Value string
	Count int64
}

// OrderStats is the dashboard aggregate view.
type OrderStats struct {
	StatusCounts   []StatusCount
	PriorityCounts []StatusCount
	RecentOrders   []OrderDetail
	OverdueOrders  int64
}

// OrderService defines use-case operations for orders.
type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput, creatorID string) (*OrderDetail, error)
	GetOrder(ctx context.Context, id string) (*OrderDetail, error)
	ListOrders(ctx context.Context, input ListOrdersInput) (*ListOrdersResult, error)
	ListByClient(ctx context.Context, clientID string, page, limit int) (*ClientOrdersResult, error)
	UpdateOrder(ctx context.Context, id string, input UpdateOrderInput) (*OrderDetail, error)
	// ChangeStatus is the sole sanctioned status-mutation path.
	ChangeStatus(ctx context.Context, id, status, comment, actorID string) (*OrderDetail, error)
	DeleteOrder(ctx context.Context, id string) error
	Stats(ctx context.Context) (*OrderStats, error)
}

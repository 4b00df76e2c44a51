package domain

import (
	"errors"
	"time"
)

// OrderStatus represents the lifecycle state of a work order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusInProgress OrderStatus = "in-progress"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
	StatusOnHold     OrderStatus = "on-hold"
)

// Valid reports whether s is a member of the closed status set.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled, StatusOnHold:
		return true
	}
	return false
}

// OrderPriority represents the urgency of a work order.
type OrderPriority string

const (
	PriorityLow    OrderPriority = "low"
	PriorityMedium OrderPriority = "medium"
	PriorityHigh   OrderPriority = "high"
	PriorityUrgent OrderPriority = "urgent"
)

// OrderCategory classifies the kind of work an order covers.
type OrderCategory string

const (
	CategoryMaintenance  OrderCategory = "maintenance"
	CategoryRepair       OrderCategory = "repair"
	CategoryInstallation OrderCategory = "installation"
	CategoryConsultation OrderCategory = "consultation"
	CategorySubscription OrderCategory = "subscription"
	CategoryOther        OrderCategory = "other"
)

var ErrOrderNotFound = errors.New("order not found")
var ErrDuplicateOrderNumber = errors.New("order number already exists")
var ErrInvalidStatus = errors.New("invalid order status")
var ErrAssignedUserNotFound = errors.New("assigned user not found")

// Material is an embedded line item consumed by an order.
type Material struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Cost     float64 `json:"cost,omitempty"`
}

// Attachment is a file reference stored on an order.
type Attachment struct {
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// StatusChange is a single entry in an order's append-only status history.
// ChangedBy holds the id of the user who performed the transition.
type StatusChange struct {
	Status    OrderStatus `json:"status"`
	ChangedBy string      `json:"changedBy"`
	ChangedAt time.Time   `json:"changedAt"`
	Comment   string      `json:"comment,omitempty"`
}

// Order is a unit of work tied to exactly one client. The current Status and
// the last StatusHistory entry always agree: ChangeStatus is the only
// mutation path and appends the entry in the same write that sets the field.
type Order struct {
	ID                string         `json:"_id"`
	OrderNumber       string         `json:"orderNumber"`
	ClientID          string         `json:"client"`
	CreatedBy         string         `json:"createdBy"`
	AssignedTo        string         `json:"assignedTo,omitempty"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Category          OrderCategory  `json:"category"`
	Priority          OrderPriority  `json:"priority"`
	Status            OrderStatus    `json:"status"`
	EstimatedCost     *float64       `json:"estimatedCost,omitempty"`
	ActualCost        *float64       `json:"actualCost,omitempty"`
	EstimatedDuration *float64       `json:"estimatedDuration,omitempty"` // hours
	ActualDuration    *float64       `json:"actualDuration,omitempty"`    // hours
	ScheduledDate     *time.Time     `json:"scheduledDate,omitempty"`
	DueDate           *time.Time     `json:"dueDate,omitempty"`
	CompletedDate     *time.Time     `json:"completedDate,omitempty"`
	Materials         []Material     `json:"materials"`
	Attachments       []Attachment   `json:"attachments,omitempty"`
	Notes             string         `json:"notes,omitempty"`
	InternalNotes     string         `json:"internalNotes,omitempty"`
	StatusHistory     []StatusChange `json:"statusHistory"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// Overdue reports whether the order is past its due date without having
// been completed.
func (o *Order) Overdue(now time.Time) bool {
	return o.DueDate != nil && o.DueDate.Before(now) && o.Status != StatusCompleted
}

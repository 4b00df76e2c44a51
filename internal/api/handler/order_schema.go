package handler

import (
	"time"
)

type materialRequest struct {
	Name     string  `json:"name"     validate:"required"`
	Quantity int     `json:"quantity" validate:"required,min=1"`
	Cost     float64 `json:"cost"     validate:"gte=0"`
}

type attachmentRequest struct {
	Filename string `json:"filename" validate:"required"`
	URL      string `json:"url"      validate:"required,url"`
}

type createOrderRequest struct {
	Client            string            `json:"client"      validate:"required"`
	Title             string            `json:"title"       validate:"required,min=3,max=100"`
	Description       string            `json:"description" validate:"required,min=10,max=1000"`
	Category          string            `json:"category"    validate:"required,oneof=maintenance repair installation consultation subscription other"`
	Priority          string            `json:"priority"    validate:"required,oneof=low medium high urgent"`
	AssignedTo        string            `json:"assignedTo"`
	EstimatedCost     *float64          `json:"estimatedCost"     validate:"omitempty,gte=0"`
	EstimatedDuration *float64          `json:"estimatedDuration" validate:"omitempty,gte=0"`
	ScheduledDate     *time.Time        `json:"scheduledDate"`
	DueDate           *time.Time        `json:"dueDate"`
	Materials         []materialRequest `json:"materials"     validate:"omitempty,dive"`
	Notes             string            `json:"notes"         validate:"max=1000"`
	InternalNotes     string            `json:"internalNotes" validate:"max=1000"`
}

// updateOrderRequest deliberately has no status field: status transitions go
// through the dedicated status endpoint so the history stays consistent.
type updateOrderRequest struct {
	Title             *string            `json:"title"       validate:"omitempty,min=3,max=100"`
	Description       *string            `json:"description" validate:"omitempty,min=10,max=1000"`
	Category          *string            `json:"category"    validate:"omitempty,oneof=maintenance repair installation consultation subscription other"`
	Priority          *string            `json:"priority"    validate:"omitempty,oneof=low medium high urgent"`
	AssignedTo        *string            `json:"assignedTo"`
	EstimatedCost     *float64           `json:"estimatedCost"     validate:"omitempty,gte=0"`
	ActualCost        *float64           `json:"actualCost"        validate:"omitempty,gte=0"`
	EstimatedDuration *float64           `json:"estimatedDuration" validate:"omitempty,gte=0"`
	ActualDuration    *float64           `json:"actualDuration"    validate:"omitempty,gte=0"`
	ScheduledDate     *time.Time         `json:"scheduledDate"`
	DueDate           *time.Time         `json:"dueDate"`
	Materials         *[]materialRequest   `json:"materials"     validate:"omitempty,dive"`
	Attachments       *[]attachmentRequest `json:"attachments"   validate:"omitempty,dive"`
	Notes             *string              `json:"notes"         validate:"omitempty,max=1000"`
	InternalNotes     *string              `json:"internalNotes" validate:"omitempty,max=1000"`
}

// changeStatusRequest carries the target status. Membership in the status set
// is enforced by the service so the endpoint answers 422, not 400, for an
// unknown value.
type changeStatusRequest struct {
	Status  string `json:"status" validate:"required"`
	Comment string `json:"comment" validate:"max=500"`
}

type clientRefResponse struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
}

type userRefResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type materialResponse struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Cost     float64 `json:"cost"`
}

type attachmentResponse struct {
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type statusChangeResponse struct {
	Status    string           `json:"status"`
	ChangedBy *userRefResponse `json:"changedBy,omitempty"`
	ChangedAt time.Time        `json:"changedAt"`
	Comment   string           `json:"comment,omitempty"`
}

type orderResponse struct {
	ID                string                 `json:"_id"`
	OrderNumber       string                 `json:"orderNumber"`
	Client            *clientRefResponse     `json:"client"`
	CreatedBy         *userRefResponse       `json:"createdBy"`
	AssignedTo        *userRefResponse       `json:"assignedTo,omitempty"`
	Title             string                 `json:"title"`
	Description       string                 `json:"description"`
	Category          string                 `json:"category"`
	Priority          string                 `json:"priority"`
	Status            string                 `json:"status"`
	EstimatedCost     *float64               `json:"estimatedCost,omitempty"`
	ActualCost        *float64               `json:"actualCost,omitempty"`
	EstimatedDuration *float64               `json:"estimatedDuration,omitempty"`
	ActualDuration    *float64               `json:"actualDuration,omitempty"`
	ScheduledDate     *time.Time             `json:"scheduledDate,omitempty"`
	DueDate           *time.Time             `json:"dueDate,omitempty"`
	CompletedDate     *time.Time             `json:"completedDate,omitempty"`
	Materials         []materialResponse     `json:"materials"`
	Attachments       []attachmentResponse   `json:"attachments,omitempty"`
	Notes             string                 `json:"notes,omitempty"`
	InternalNotes     string                 `json:"internalNotes,omitempty"`
	StatusHistory     []statusChangeResponse `json:"statusHistory"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

type orderPagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalOrders int64 `json:"totalOrders"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

type createOrderResponse struct {
	Message string        `json:"message"`
	Order   orderResponse `json:"order"`
}

type listOrdersResponse struct {
	Orders     []orderResponse `json:"orders"`
	Pagination orderPagination `json:"pagination"`
}

type clientOrdersResponse struct {
	Client      clientRefResponse `json:"client"`
	Orders      []orderResponse   `json:"orders"`
	TotalOrders int64             `json:"totalOrders"`
}

type statCountResponse struct {
	ID    string `json:"_id"`
	Count int64  `json:"count"`
}

type orderStatsResponse struct {
	StatusStats   []statCountResponse `json:"statusStats"`
	PriorityStats []statCountResponse `json:"priorityStats"`
	RecentOrders  []orderResponse     `json:"recentOrders"`
	OverdueOrders int64               `json:"overdueOrders"`
}

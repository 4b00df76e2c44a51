package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/zabotech/ops-system/internal/core/domain"
	"github.com/zabotech/ops-system/internal/core/ports"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// OrderService owns the order lifecycle, including the status-history
// invariant: status never changes without a matching history entry.
type OrderService struct {
	orders  ports.OrderRepository
	clients ports.ClientRepository
	users   ports.UserRepository
	logger  zerolog.Logger
}

func NewOrderService(orders ports.OrderRepository, clients ports.ClientRepository, users ports.UserRepository, logger zerolog.Logger) *OrderService {
	return &OrderService{orders: orders, clients: clients, users: users, logger: logger}
}

// CreateOrder validates the client and optional assignee references, then
// persists a new order with status pending and an empty history.
func (s *OrderService) CreateOrder(ctx context.Context, input ports.CreateOrderInput, creatorID string) (*ports.OrderDetail, error) {
	if _, err := s.clients.FindByID(ctx, input.ClientID); err != nil {
		return nil, err
	}

	assignedTo := input.AssignedTo
	if assignedTo == "" {
		assignedTo = creatorID
	} else if _, err := s.users.FindByID(ctx, assignedTo); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrAssignedUserNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		OrderNumber:       generateOrderNumber(now),
		ClientID:          input.ClientID,
		CreatedBy:         creatorID,
		AssignedTo:        assignedTo,
		Title:             input.Title,
		Description:       input.Description,
		Category:          domain.OrderCategory(input.Category),
		Priority:          domain.OrderPriority(input.Priority),
		Status:            domain.StatusPending,
		EstimatedCost:     input.EstimatedCost,
		EstimatedDuration: input.EstimatedDuration,
		ScheduledDate:     input.ScheduledDate,
		DueDate:           input.DueDate,
		Materials:         toMaterials(input.Materials),
		Notes:             input.Notes,
		InternalNotes:     input.InternalNotes,
		StatusHistory:     []domain.StatusChange{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	created, err := s.orders.Create(ctx, order)
	if err != nil {
		s.logger.Error().Err(err).Str("client_id", input.ClientID).Msg("failed to create order")
		return nil, err
	}

	s.logger.Info().
		Str("order_number", created.OrderNumber).
		Str("client_id", created.ClientID).
		Str("created_by", creatorID).
		Msg("order created")

	return s.populate(ctx, created)
}

// GetOrder returns the order with populated client and user references.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*ports.OrderDetail, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, order)
}

// ListOrders returns a filtered, sorted page of orders plus pagination flags.
func (s *OrderService) ListOrders(ctx context.Context, input ports.ListOrdersInput) (*ports.ListOrdersResult, error) {
	page, limit := normalizePage(input.Page, input.Limit)

	filter := ports.ListOrdersFilter{
		Status:     input.Status,
		Priority:   input.Priority,
		Category:   input.Category,
		ClientID:   input.ClientID,
		CreatedBy:  input.CreatedBy,
		AssignedTo: input.AssignedTo,
		SortBy:     input.SortBy,
		SortDesc:   input.SortOrder != "asc",
		Page:       page,
		Limit:      limit,
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items, err := s.populateAll(ctx, orders)
	if err != nil {
		return nil, err
	}

	return &ports.ListOrdersResult{
		Items:      items,
		Pagination: buildPagination(page, limit, total),
	}, nil
}

// ListByClient verifies the client exists and returns its orders newest first.
func (s *OrderService) ListByClient(ctx context.Context, clientID string, page, limit int) (*ports.ClientOrdersResult, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	page, limit = normalizePage(page, limit)
	orders, total, err := s.orders.ListByClient(ctx, clientID, page, limit)
	if err != nil {
		return nil, err
	}

	items, err := s.populateAll(ctx, orders)
	if err != nil {
		return nil, err
	}

	return &ports.ClientOrdersResult{
		Client: ports.ClientRef{
			ID:      client.ID,
			Name:    client.Name,
			Email:   client.Email,
			Company: client.Company,
		},
		Orders:      items,
		TotalOrders: total,
	}, nil
}

// UpdateOrder applies a partial field update. The status field is not part of
// the input type: transitions must go through ChangeStatus so the history
// stays in lockstep with the field.
func (s *OrderService) UpdateOrder(ctx context.Context, id string, input ports.UpdateOrderInput) (*ports.OrderDetail, error) {
	if input.AssignedTo != nil && *input.AssignedTo != "" {
		if _, err := s.users.FindByID(ctx, *input.AssignedTo); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil, domain.ErrAssignedUserNotFound
			}
			return nil, err
		}
	}

	upd := ports.OrderUpdate{
		Title:             input.Title,
		Description:       input.Description,
		AssignedTo:        input.AssignedTo,
		EstimatedCost:     input.EstimatedCost,
		ActualCost:        input.ActualCost,
		EstimatedDuration: input.EstimatedDuration,
		ActualDuration:    input.ActualDuration,
		ScheduledDate:     input.ScheduledDate,
		DueDate:           input.DueDate,
		Notes:             input.Notes,
		InternalNotes:     input.InternalNotes,
	}
	if input.Category != nil {
		c := domain.OrderCategory(*input.Category)
		upd.Category = &c
	}
	if input.Priority != nil {
		p := domain.OrderPriority(*input.Priority)
		upd.Priority = &p
	}
	if input.Materials != nil {
		m := toMaterials(*input.Materials)
		upd.Materials = &m
	}
	if input.Attachments != nil {
		now := time.Now().UTC()
		a := make([]domain.Attachment, 0, len(*input.Attachments))
		for _, att := range *input.Attachments {
			a = append(a, domain.Attachment{Filename: att.Filename, URL: att.URL, UploadedAt: now})
		}
		upd.Attachments = &a
	}

	order, err := s.orders.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, order)
}

// ChangeStatus appends a history entry and sets the status in one atomic
// write. Reaching completed stamps completedDate; the stamp is never cleared
// when the status later regresses.
func (s *OrderService) ChangeStatus(ctx context.Context, id, status, comment, actorID string) (*ports.OrderDetail, error) {
	newStatus := domain.OrderStatus(status)
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	now := time.Now().UTC()
	entry := domain.StatusChange{
		Status:    newStatus,
		ChangedBy: actorID,
		ChangedAt: now,
		Comment:   comment,
	}

	var completedAt *time.Time
	if newStatus == domain.StatusCompleted {
		completedAt = &now
	}

	order, err := s.orders.UpdateStatus(ctx, id, newStatus, entry, completedAt)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("status", status).
		Str("changed_by", actorID).
		Msg("order status changed")

	return s.populate(ctx, order)
}

func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	return s.orders.Delete(ctx, id)
}

// Stats returns the dashboard aggregates: counts grouped by status and
// priority, the five most recent orders, and the overdue count.
func (s *OrderService) Stats(ctx context.Context) (*ports.OrderStats, error) {
	byStatus, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.orders.CountByPriority(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.orders.FindRecent(ctx, 5)
	if err != nil {
		return nil, err
	}
	overdue, err := s.orders.CountOverdue(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	recentItems, err := s.populateAll(ctx, recent)
	if err != nil {
		return nil, err
	}

	return &ports.OrderStats{
		StatusCounts:   toCounts(byStatus),
		PriorityCounts: toCounts(byPriority),
		RecentOrders:   recentItems,
		OverdueOrders:  overdue,
	}, nil
}

// populate resolves the client and user references of a single order.
// Dangling references (entity deleted after the order was written) resolve
// to nil rather than failing the read.
func (s *OrderService) populate(ctx context.Context, order *domain.Order) (*ports.OrderDetail, error) {
	clients := map[string]*ports.ClientRef{}
	users := map[string]*ports.UserRef{}
	detail := s.resolve(ctx, order, clients, users)
	return detail, nil
}

func (s *OrderService) populateAll(ctx context.Context, orders []*domain.Order) ([]ports.OrderDetail, error) {
	clients := map[string]*ports.ClientRef{}
	users := map[string]*ports.UserRef{}
	items := make([]ports.OrderDetail, 0, len(orders))
	for _, o := range orders {
		items = append(items, *s.resolve(ctx, o, clients, users))
	}
	return items, nil
}

func (s *OrderService) resolve(ctx context.Context, order *domain.Order, clients map[string]*ports.ClientRef, users map[string]*ports.UserRef) *ports.OrderDetail {
	detail := &ports.OrderDetail{
		Order:  order,
		Actors: make(map[string]ports.UserRef),
	}

	detail.Client = s.clientRef(ctx, order.ClientID, clients)
	detail.CreatedBy = s.userRef(ctx, order.CreatedBy, users)
	if order.AssignedTo != "" {
		detail.AssignedTo = s.userRef(ctx, order.AssignedTo, users)
	}
	for _, entry := range order.StatusHistory {
		if ref := s.userRef(ctx, entry.ChangedBy, users); ref != nil {
			detail.Actors[entry.ChangedBy] = *ref
		}
	}
	return detail
}

func (s *OrderService) clientRef(ctx context.Context, id string, cache map[string]*ports.ClientRef) *ports.ClientRef {
	if id == "" {
		return nil
	}
	if ref, ok := cache[id]; ok {
		return ref
	}
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		cache[id] = nil
		return nil
	}
	ref := &ports.ClientRef{ID: client.ID, Name: client.Name, Email: client.Email, Company: client.Company}
	cache[id] = ref
	return ref
}

func (s *OrderService) userRef(ctx context.Context, id string, cache map[string]*ports.UserRef) *ports.UserRef {
	if id == "" {
		return nil
	}
	if ref, ok := cache[id]; ok {
		return ref
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		cache[id] = nil
		return nil
	}
	ref := &ports.UserRef{ID: user.ID, Name: user.Name, Email: user.Email}
	cache[id] = ref
	return ref
}

// generateOrderNumber returns a human-referenceable identifier in the format
// ORD-<unix-ms>-<0..999>. Collisions are possible but the unique index on
// order_number fails the write instead of corrupting data.
func generateOrderNumber(now time.Time) string {
	var b [2]byte
	n := int(now.UnixNano() % 1000)
	if _, err := rand.Read(b[:]); err == nil {
		n = int(binary.BigEndian.Uint16(b[:])) % 1000
	}
	return fmt.Sprintf("ORD-%d-%d", now.UnixMilli(), n)
}

func toMaterials(in []ports.MaterialInput) []domain.Material {
	out := make([]domain.Material, 0, len(in))
	for _, m := range in {
		out = append(out, domain.Material{Name: m.Name, Quantity: m.Quantity, Cost: m.Cost})
	}
	return out
}

func toCounts(m map[string]int64) []ports.StatusCount {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]ports.StatusCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, ports.StatusCount{Value: k, Count: m[k]})
	}
	return out
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func buildPagination(page, limit int, total int64) ports.Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return ports.Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalOrders: total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

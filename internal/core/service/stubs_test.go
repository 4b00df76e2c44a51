package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zabotech/ops-system/internal/core/domain"
	"github.com/zabotech/ops-system/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory order repository
// ---------------------------------------------------------------------------

type stubOrderRepo struct {
	byID      map[string]*domain.Order
	seq       int
	createErr error
	updateErr error
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{byID: make(map[string]*domain.Order)}
}

func (r *stubOrderRepo) Create(_ context.Context, o *domain.Order) (*domain.Order, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.seq++
	clone := *o
	clone.ID = fmt.Sprintf("order_%d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	clone := *o
	return &clone, nil
}

// List applies the same exact-match filters the real Mongo repo would use.
func (r *stubOrderRepo) List(_ context.Context, f ports.ListOrdersFilter) ([]*domain.Order, int64, error) {
	var matched []*domain.Order
	for _, o := range r.byID {
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		if f.Priority != "" && string(o.Priority) != f.Priority {
			continue
		}
		if f.Category != "" && string(o.Category) != f.Category {
			continue
		}
		if f.ClientID != "" && o.ClientID != f.ClientID {
			continue
		}
		if f.CreatedBy != "" && o.CreatedBy != f.CreatedBy {
			continue
		}
		if f.AssignedTo != "" && o.AssignedTo != f.AssignedTo {
			continue
		}
		clone := *o
		matched = append(matched, &clone)
	}
	sortNewestFirst(matched)
	total := int64(len(matched))
	return pageSlice(matched, f.Page, f.Limit), total, nil
}

func (r *stubOrderRepo) ListByClient(_ context.Context, clientID string, page, limit int) ([]*domain.Order, int64, error) {
	var matched []*domain.Order
	for _, o := range r.byID {
		if o.ClientID == clientID {
			clone := *o
			matched = append(matched, &clone)
		}
	}
	sortNewestFirst(matched)
	total := int64(len(matched))
	return pageSlice(matched, page, limit), total, nil
}

func (r *stubOrderRepo) Update(_ context.Context, id string, upd ports.OrderUpdate) (*domain.Order, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if upd.Title != nil {
		o.Title = *upd.Title
	}
	if upd.Description != nil {
		o.Description = *upd.Description
	}
	if upd.Category != nil {
		o.Category = *upd.Category
	}
	if upd.Priority != nil {
		o.Priority = *upd.Priority
	}
	if upd.AssignedTo != nil {
		o.AssignedTo = *upd.AssignedTo
	}
	if upd.EstimatedCost != nil {
		o.EstimatedCost = upd.EstimatedCost
	}
	if upd.ActualCost != nil {
		o.ActualCost = upd.ActualCost
	}
	if upd.EstimatedDuration != nil {
		o.EstimatedDuration = upd.EstimatedDuration
	}
	if upd.ActualDuration != nil {
		o.ActualDuration = upd.ActualDuration
	}
	if upd.ScheduledDate != nil {
		o.ScheduledDate = upd.ScheduledDate
	}
	if upd.DueDate != nil {
		o.DueDate = upd.DueDate
	}
	if upd.Materials != nil {
		o.Materials = *upd.Materials
	}
	if upd.Attachments != nil {
		o.Attachments = *upd.Attachments
	}
	if upd.Notes != nil {
		o.Notes = *upd.Notes
	}
	if upd.InternalNotes != nil {
		o.InternalNotes = *upd.InternalNotes
	}
	o.UpdatedAt = time.Now().UTC()
	clone := *o
	return &clone, nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus, entry domain.StatusChange, completedAt *time.Time) (*domain.Order, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	o.Status = status
	o.StatusHistory = append(o.StatusHistory, entry)
	if completedAt != nil {
		o.CompletedDate = completedAt
	}
	o.UpdatedAt = entry.ChangedAt
	clone := *o
	return &clone, nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubOrderRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, o := range r.byID {
		counts[string(o.Status)]++
	}
	return counts, nil
}

func (r *stubOrderRepo) CountByPriority(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, o := range r.byID {
		counts[string(o.Priority)]++
	}
	return counts, nil
}

func (r *stubOrderRepo) CountOverdue(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, o := range r.byID {
		if o.Overdue(now) {
			n++
		}
	}
	return n, nil
}

func (r *stubOrderRepo) FindRecent(_ context.Context, limit int) ([]*domain.Order, error) {
	var all []*domain.Order
	for _, o := range r.byID {
		clone := *o
		all = append(all, &clone)
	}
	sortNewestFirst(all)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func sortNewestFirst(orders []*domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

func pageSlice(orders []*domain.Order, page, limit int) []*domain.Order {
	if limit <= 0 {
		return orders
	}
	skip := (page - 1) * limit
	if skip < 0 {
		skip = 0
	}
	if skip >= len(orders) {
		return []*domain.Order{}
	}
	end := skip + limit
	if end > len(orders) {
		end = len(orders)
	}
	return orders[skip:end]
}

// ---------------------------------------------------------------------------
// In-memory client repository
// ---------------------------------------------------------------------------

type stubClientRepo struct {
	byID      map[string]*domain.Client
	seq       int
	createErr error
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{byID: make(map[string]*domain.Client)}
}

func (r *stubClientRepo) seed(name, email, company string) *domain.Client {
	r.seq++
	now := time.Now().UTC()
	c := &domain.Client{
		ID:        fmt.Sprintf("client_%d", r.seq),
		Name:      name,
		Email:     email,
		Company:   company,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.byID[c.ID] = c
	return c
}

func (r *stubClientRepo) Create(_ context.Context, c *domain.Client) (*domain.Client, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.byID {
		if existing.Email == c.Email {
			return nil, domain.ErrClientExists
		}
	}
	r.seq++
	clone := *c
	clone.ID = fmt.Sprintf("client_%d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id string) (*domain.Client, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubClientRepo) FindByEmail(_ context.Context, email string) (*domain.Client, error) {
	for _, c := range r.byID {
		if c.Email == email {
			clone := *c
			return &clone, nil
		}
	}
	return nil, domain.ErrClientNotFound
}

func (r *stubClientRepo) List(_ context.Context, page, limit int) ([]*domain.Client, int64, error) {
	var all []*domain.Client
	for _, c := range r.byID {
		clone := *c
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))

	skip := (page - 1) * limit
	if skip >= len(all) {
		return []*domain.Client{}, total, nil
	}
	end := skip + limit
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end], total, nil
}

func (r *stubClientRepo) Replace(_ context.Context, id string, c *domain.Client) (*domain.Client, error) {
	stored, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	stored.Name = c.Name
	stored.Email = c.Email
	stored.Phone = c.Phone
	stored.Company = c.Company
	stored.SubscriptionRenewalDate = c.SubscriptionRenewalDate
	stored.SubscriptionAmount = c.SubscriptionAmount
	stored.Notes = c.Notes
	stored.UpdatedAt = time.Now().UTC()
	clone := *stored
	return &clone, nil
}

func (r *stubClientRepo) Patch(_ context.Context, id string, patch ports.ClientPatch) (*domain.Client, error) {
	stored, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	if patch.Name != nil {
		stored.Name = *patch.Name
	}
	if patch.Email != nil {
		stored.Email = *patch.Email
	}
	if patch.Phone != nil {
		stored.Phone = *patch.Phone
	}
	if patch.Company != nil {
		stored.Company = *patch.Company
	}
	if patch.SubscriptionRenewalDate != nil {
		stored.SubscriptionRenewalDate = patch.SubscriptionRenewalDate
	}
	if patch.SubscriptionAmount != nil {
		stored.SubscriptionAmount = patch.SubscriptionAmount
	}
	if patch.Notes != nil {
		stored.Notes = *patch.Notes
	}
	stored.UpdatedAt = time.Now().UTC()
	clone := *stored
	return &clone, nil
}

func (r *stubClientRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrClientNotFound
	}
	delete(r.byID, id)
	return nil
}

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID map[string]*domain.User
	seq  int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func (r *stubUserRepo) seed(name, email string) *domain.User {
	r.seq++
	now := time.Now().UTC()
	u := &domain.User{
		ID:        fmt.Sprintf("user_%d", r.seq),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.byID[u.ID] = u
	return u
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, existing := range r.byID {
		if existing.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	clone := *user
	clone.ID = fmt.Sprintf("user_%d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) SetResetToken(_ context.Context, id, tokenHash string, expires time.Time) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ResetPasswordToken = tokenHash
	u.ResetPasswordExpires = &expires
	return nil
}

func (r *stubUserRepo) FindByResetToken(_ context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	for _, u := range r.byID {
		if u.ResetPasswordToken == tokenHash && tokenHash != "" &&
			u.ResetPasswordExpires != nil && u.ResetPasswordExpires.After(now) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ResetPassword(_ context.Context, id, passwordHash string) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetPasswordToken = ""
	u.ResetPasswordExpires = nil
	return nil
}

// ---------------------------------------------------------------------------
// Mailer stub
// ---------------------------------------------------------------------------

type stubMailer struct {
	mu          sync.Mutex
	welcomeErr  error
	resetErr    error
	welcomeSent chan ports.WelcomeEmailData
	resets      []ports.ResetEmailData
	resetTo     string
}

func newStubMailer() *stubMailer {
	return &stubMailer{welcomeSent: make(chan ports.WelcomeEmailData, 4)}
}

func (m *stubMailer) SendWelcome(_ context.Context, _ string, data ports.WelcomeEmailData) error {
	m.welcomeSent <- data
	return m.welcomeErr
}

func (m *stubMailer) SendPasswordReset(_ context.Context, to string, data ports.ResetEmailData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resetErr != nil {
		return m.resetErr
	}
	m.resetTo = to
	m.resets = append(m.resets, data)
	return nil
}

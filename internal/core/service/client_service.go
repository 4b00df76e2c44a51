package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/zabotech/ops-system/internal/core/domain"
	"github.com/zabotech/ops-system/internal/core/ports"
)

const welcomeEmailTimeout = 15 * time.Second

// ClientService implements client CRUD with a unique-email invariant and a
// best-effort welcome email on creation.
type ClientService struct {
	clients ports.ClientRepository
	mailer  ports.Mailer
	logger  zerolog.Logger
}

func NewClientService(clients ports.ClientRepository, mailer ports.Mailer, logger zerolog.Logger) *ClientService {
	return &ClientService{clients: clients, mailer: mailer, logger: logger}
}

// Create registers a new client. The welcome email is sent in the
// background after the write succeeds; a failed send is logged and counted
// but never surfaces in the response.
func (s *ClientService) Create(ctx context.Context, input ports.CreateClientInput) (*domain.Client, error) {
	if _, err := s.clients.FindByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrClientExists
	} else if !errors.Is(err, domain.ErrClientNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	renewal := input.SubscriptionRenewalDate
	amount := input.SubscriptionAmount
	client := &domain.Client{
		Name:                    input.Name,
		Email:                   input.Email,
		Phone:                   input.Phone,
		Company:                 input.Company,
		SubscriptionRenewalDate: &renewal,
		SubscriptionAmount:      &amount,
		Notes:                   input.Notes,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	created, err := s.clients.Create(ctx, client)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("client_id", created.ID).Str("company", created.Company).Msg("client created")

	go s.sendWelcome(created)

	return created, nil
}

func (s *ClientService) sendWelcome(client *domain.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), welcomeEmailTimeout)
	defer cancel()

	err := s.mailer.SendWelcome(ctx, client.Email, ports.WelcomeEmailData{
		Name:                    client.Name,
		Company:                 client.Company,
		SubscriptionRenewalDate: client.SubscriptionRenewalDate,
		SubscriptionAmount:      client.SubscriptionAmount,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("client_id", client.ID).Msg("welcome email failed")
		return
	}
	s.logger.Info().Str("client_id", client.ID).Msg("welcome email sent")
}

func (s *ClientService) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	return s.clients.FindByID(ctx, id)
}

func (s *ClientService) GetByEmail(ctx context.Context, email string) (*domain.Client, error) {
	return s.clients.FindByEmail(ctx, email)
}

func (s *ClientService) List(ctx context.Context, page, limit int) (*ports.ListClientsResult, error) {
	page, limit = normalizePage(page, limit)
	clients, total, err := s.clients.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListClientsResult{
		Items:       clients,
		Total:       total,
		CurrentPage: page,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}, nil
}

// Update applies PUT semantics: every mutable field is written as given.
func (s *ClientService) Update(ctx context.Context, id string, input ports.UpdateClientInput) (*domain.Client, error) {
	client := &domain.Client{
		Name:                    input.Name,
		Email:                   input.Email,
		Phone:                   input.Phone,
		Company:                 input.Company,
		SubscriptionRenewalDate: input.SubscriptionRenewalDate,
		SubscriptionAmount:      input.SubscriptionAmount,
		Notes:                   input.Notes,
	}
	return s.clients.Replace(ctx, id, client)
}

// Patch applies partial semantics: only non-nil fields change.
func (s *ClientService) Patch(ctx context.Context, id string, patch ports.ClientPatch) (*domain.Client, error) {
	return s.clients.Patch(ctx, id, patch)
}

func (s *ClientService) Delete(ctx context.Context, id string) error {
	return s.clients.Delete(ctx, id)
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zabotech/ops-system/internal/core/domain"
	"github.com/zabotech/ops-system/internal/core/ports"
)

type stubClientService struct {
	createFn     func(ctx context.Context, input ports.CreateClientInput) (*domain.Client, error)
	getByIDFn    func(ctx context.Context, id string) (*domain.Client, error)
	getByEmailFn func(ctx context.Context, email string) (*domain.Client, error)
	listFn       func(ctx context.Context, page, limit int) (*ports.ListClientsResult, error)
	updateFn     func(ctx context.Context, id string, input ports.UpdateClientInput) (*domain.Client, error)
	patchFn      func(ctx context.Context, id string, patch ports.ClientPatch) (*domain.Client, error)
	deleteFn     func(ctx context.Context, id string) error
}

func (s *stubClientService) Create(ctx context.Context, input ports.CreateClientInput) (*domain.Client, error) {
	return s.createFn(ctx, input)
}

func (s *stubClientService) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubClientService) GetByEmail(ctx context.Context, email string) (*domain.Client, error) {
	return s.getByEmailFn(ctx, email)
}

func (s *stubClientService) List(ctx context.Context, page, limit int) (*ports.ListClientsResult, error) {
	return s.listFn(ctx, page, limit)
}

func (s *stubClientService) Update(ctx context.Context, id string, input ports.UpdateClientInput) (*domain.Client, error) {
	return s.updateFn(ctx, id, input)
}

func (s *stubClientService) Patch(ctx context.Context, id string, patch ports.ClientPatch) (*domain.Client, error) {
	return s.patchFn(ctx, id, patch)
}

func (s *stubClientService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func sampleClient() *domain.Client {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	renewal := now.AddDate(1, 0, 0)
	amount := 499.99
	return &domain.Client{
		ID:                      "client_1",
		Name:                    "Acme",
		Email:                   "acme@example.com",
		Phone:                   "+52 555 0100",
		Company:                 "Acme Corp",
		SubscriptionRenewalDate: &renewal,
		SubscriptionAmount:      &amount,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

func TestClientHandler_Create_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubClientService{
		createFn: func(_ context.Context, input ports.CreateClientInput) (*domain.Client, error) {
			if input.Email != "acme@example.com" || input.SubscriptionAmount != 499.99 {
				t.Fatalf("unexpected input: %+v", input)
			}
			return sampleClient(), nil
		},
	}
	h := NewClientHandler(stub)

	body := strings.NewReader(`{
		"name": "Acme",
		"email": "acme@example.com",
		"phone": "+52 555 0100",
		"company": "Acme Corp",
		"subscriptionRenewalDate": "2027-08-30T10:00:00Z",
		"subscriptionAmount": 499.99
	}`)
	req := httptest.NewRequest(http.MethodPost, "/clients", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["_id"] != "client_1" || resp["company"] != "Acme Corp" {
		t.Errorf("unexpected payload: %v", resp)
	}
	if resp["subscriptionAmount"] != float64(499.99) {
		t.Errorf("subscriptionAmount: want 499.99, got %v", resp["subscriptionAmount"])
	}
}

func TestClientHandler_Create_MissingFields(t *testing.T) {
	e := newTestEcho()
	stub := &stubClientService{
		createFn: func(context.Context, ports.CreateClientInput) (*domain.Client, error) {
			t.Fatal("service must not be called on invalid input")
			return nil, nil
		},
	}
	h := NewClientHandler(stub)

	body := strings.NewReader(`{"name":"Acme"}`)
	req := httptest.NewRequest(http.MethodPost, "/clients", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestClientHandler_Create_DuplicatePropagates(t *testing.T) {
	e := newTestEcho()
	stub := &stubClientService{
		createFn: func(context.Context, ports.CreateClientInput) (*domain.Client, error) {
			return nil, domain.ErrClientExists
		},
	}
	h := NewClientHandler(stub)

	body := strings.NewReader(`{
		"name": "Acme",
		"email": "acme@example.com",
		"phone": "+52 555 0100",
		"company": "Acme Corp",
		"subscriptionRenewalDate": "2027-08-30T10:00:00Z",
		"subscriptionAmount": 499.99
	}`)
	req := httptest.NewRequest(http.MethodPost, "/clients", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); !errors.Is(err, domain.ErrClientExists) {
		t.Fatalf("expected ErrClientExists to propagate, got %v", err)
	}
}

func TestClientHandler_List(t *testing.T) {
	e := newTestEcho()
	stub := &stubClientService{
		listFn: func(_ context.Context, page, limit int) (*ports.ListClientsResult, error) {
			if page != 2 || limit != 5 {
				t.Fatalf("unexpected pagination: page=%d limit=%d", page, limit)
			}
			return &ports.ListClientsResult{
				Items:       []*domain.Client{sampleClient()},
				Total:       11,
				CurrentPage: 2,
				TotalPages:  3,
				HasNext:     true,
				HasPrev:     true,
			}, nil
		},
	}
	h := NewClientHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/clients?page=2&limit=5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	pagination := resp["pagination"].(map[string]any)
	if pagination["totalClients"] != float64(11) || pagination["currentPage"] != float64(2) {
		t.Errorf("unexpected pagination: %v", pagination)
	}
	clients := resp["clients"].([]any)
	if len(clients) != 1 {
		t.Errorf("expected 1 client, got %d", len(clients))
	}
}

func TestClientHandler_GetByID_NotFoundPropagates(t *testing.T) {
	e := newTestEcho()
	stub := &stubClientService{
		getByIDFn: func(context.Context, string) (*domain.Client, error) {
			return nil, domain.ErrClientNotFound
		},
	}
	h := NewClientHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/clients/client_ghost", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("client_ghost")

	if err := h.GetByID(c); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound to propagate, got %v", err)
	}
}

func TestClientHandler_Patch_OnlyBoundFields(t *testing.T) {
	e := newTestEcho()
	var captured ports.ClientPatch
	stub := &stubClientService{
		patchFn: func(_ context.Context, id string, patch ports.ClientPatch) (*domain.Client, error) {
			captured = patch
			return sampleClient(), nil
		},
	}
	h := NewClientHandler(stub)

	body := strings.NewReader(`{"phone":"+52 555 0300"}`)
	req := httptest.NewRequest(http.MethodPatch, "/clients/client_1", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("client_1")

	if err := h.Patch(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if captured.Phone == nil || *captured.Phone != "+52 555 0300" {
		t.Errorf("phone not captured: %v", captured.Phone)
	}
	if captured.Name != nil || captured.Email != nil {
		t.Errorf("absent fields must stay nil: %+v", captured)
	}
}

func TestClientHandler_Delete(t *testing.T) {
	e := newTestEcho()
	stub := &stubClientService{
		deleteFn: func(_ context.Context, id string) error {
			if id != "client_1" {
				t.Fatalf("unexpected id: %s", id)
			}
			return nil
		},
	}
	h := NewClientHandler(stub)

	req := httptest.NewRequest(http.MethodDelete, "/clients/client_1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("client_1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "deleted") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/zabotech/ops-system/internal/core/domain"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, name, email, password string) (*domain.User, string, error)
	loginFn    func(ctx context.Context, email, password string) (*domain.User, string, error)
	profileFn  func(ctx context.Context, userID string) (*domain.User, error)
	forgotFn   func(ctx context.Context, email string) error
	resetFn    func(ctx context.Context, rawToken, newPassword string) error
}

func (s *stubAuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	return s.registerFn(ctx, name, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.profileFn(ctx, userID)
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, email string) error {
	return s.forgotFn(ctx, email)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	return s.resetFn(ctx, rawToken, newPassword)
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, name, email, password string) (*domain.User, string, error) {
			if name != "Alice" || email != "alice@example.com" || password != "secret123" {
				t.Fatalf("unexpected args: %s %s", name, email)
			}
			return &domain.User{ID: "user_1", Name: name, Email: email}, "token123", nil
		},
	}
	h := NewAuthHandler(stub)

	body := strings.NewReader(`{"name":"Alice","email":"alice@example.com","password":"secret123"}`)
	req := httptest.NewRequest(http.MethodPost, "/users/registerUser", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["_id"] != "user_1" || resp["token"] != "token123" {
		t.Errorf("unexpected payload: %v", resp)
	}
	if _, leaked := resp["password"]; leaked {
		t.Error("password must never appear in the response")
	}
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, string, string, string) (*domain.User, string, error) {
			t.Fatal("service must not be called on invalid input")
			return nil, "", nil
		},
	}
	h := NewAuthHandler(stub)

	body := strings.NewReader(`{"name":"Alice","email":"alice@example.com","password":"abc"}`)
	req := httptest.NewRequest(http.MethodPost, "/users/registerUser", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Register_DuplicatePropagates(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, string, string, string) (*domain.User, string, error) {
			return nil, "", domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub)

	body := strings.NewReader(`{"name":"Alice","email":"alice@example.com","password":"secret123"}`)
	req := httptest.NewRequest(http.MethodPost, "/users/registerUser", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists to propagate, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*domain.User, string, error) {
			return &domain.User{ID: "user_1", Name: "Alice", Email: email}, "token123", nil
		},
	}
	h := NewAuthHandler(stub)

	body := strings.NewReader(`{"email":"alice@example.com","password":"secret123"}`)
	req := httptest.NewRequest(http.MethodPost, "/users/loginUser", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" || resp["email"] != "alice@example.com" {
		t.Errorf("unexpected payload: %v", resp)
	}
}

func TestAuthHandler_Login_BadCredentialsPropagate(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*domain.User, string, error) {
			return nil, "", domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	body := strings.NewReader(`{"email":"alice@example.com","password":"wrong1"}`)
	req := httptest.NewRequest(http.MethodPost, "/users/loginUser", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials to propagate, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/users/logoutUser", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "logged out") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthHandler_Profile(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		profileFn: func(_ context.Context, userID string) (*domain.User, error) {
			if userID != "user_1" {
				t.Fatalf("unexpected user id: %s", userID)
			}
			return &domain.User{ID: userID, Name: "Alice", Email: "alice@example.com"}, nil
		},
	}
	h := NewAuthHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/users/getProfile", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "user_1")

	if err := h.Profile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["_id"] != "user_1" || resp["name"] != "Alice" {
		t.Errorf("unexpected payload: %v", resp)
	}
	if _, leaked := resp["token"]; leaked {
		t.Error("profile must not mint a token")
	}
}

func TestAuthHandler_Profile_NoClaims(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/users/getProfile", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Profile(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		forgotFn: func(_ context.Context, email string) error {
			if email != "alice@example.com" {
				t.Fatalf("unexpected email: %s", email)
			}
			return nil
		},
	}
	h := NewAuthHandler(stub)

	body := strings.NewReader(`{"email":"alice@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/users/forgot-password", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ForgotPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Reset token sent") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		resetFn: func(_ context.Context, rawToken, newPassword string) error {
			if rawToken != "rawtoken123" || newPassword != "new-password" {
				t.Fatalf("unexpected args: %s %s", rawToken, newPassword)
			}
			return nil
		},
	}
	h := NewAuthHandler(stub)

	body := strings.NewReader(`{"password":"new-password"}`)
	req := httptest.NewRequest(http.MethodPost, "/users/reset-password/rawtoken123", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("token")
	c.SetParamValues("rawtoken123")

	if err := h.ResetPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Password has been reset") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthHandler_ResetPassword_InvalidTokenPropagates(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		resetFn: func(context.Context, string, string) error {
			return domain.ErrInvalidResetToken
		},
	}
	h := NewAuthHandler(stub)

	body := strings.NewReader(`{"password":"new-password"}`)
	req := httptest.NewRequest(http.MethodPost, "/users/reset-password/bogus", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("token")
	c.SetParamValues("bogus")

	if err := h.ResetPassword(c); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken to propagate, got %v", err)
	}
}

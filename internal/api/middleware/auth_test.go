package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/platformlab/identity-service/internal/core/domain"
)

type stubTokenService struct {
	verifyFn func(tokenString string) (*domain.AccessClaims, error)
}

func (s *stubTokenService) IssueAccessToken(*domain.User) (string, error)  { return "", nil }
func (s *stubTokenService) IssueRefreshToken(*domain.User) (string, error) { return "", nil }
func (s *stubTokenService) IssuePair(*domain.User) (*domain.TokenPair, error) {
	return nil, nil
}
func (s *stubTokenService) Refresh(context.Context, string) (string, error) { return "", nil }
func (s *stubTokenService) Verify(tokenString string) (*domain.AccessClaims, error) {
	return s.verifyFn(tokenString)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	tokens := &stubTokenService{
		verifyFn: func(tokenString string) (*domain.AccessClaims, error) {
			if tokenString != "good-token" {
				t.Fatalf("unexpected token: %s", tokenString)
			}
			return &domain.AccessClaims{
				Subject:   "jack",
				Roles:     []string{domain.RoleAdmin},
				TokenType: domain.TokenTypeAccess,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(tokens)(func(c echo.Context) error {
		called = true
		claims := ClaimsFrom(c)
		if claims == nil || claims.Subject != "jack" {
			t.Fatalf("claims not injected: %+v", claims)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(&stubTokenService{})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(&stubTokenService{})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	e := echo.New()
	tokens := &stubTokenService{
		verifyFn: func(string) (*domain.AccessClaims, error) {
			return nil, domain.ErrTokenInvalid
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(tokens)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RefreshTokenRejected(t *testing.T) {
	e := echo.New()
	tokens := &stubTokenService{
		verifyFn: func(string) (*domain.AccessClaims, error) {
			return &domain.AccessClaims{
				Subject:   "jack",
				TokenType: domain.TokenTypeRefresh,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer refresh-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(tokens)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

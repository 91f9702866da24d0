package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/platformlab/identity-service/internal/api/metrics"
	"github.com/platformlab/identity-service/internal/api/middleware"
	"github.com/platformlab/identity-service/internal/core/domain"
	"github.com/platformlab/identity-service/internal/core/ports"
)

// AuthHandler owns the authentication endpoints: login and token refresh.
type AuthHandler struct {
	identity ports.IdentityService
	tokens   ports.TokenService
	audit    ports.AuditSink
}

func NewAuthHandler(identity ports.IdentityService, tokens ports.TokenService, audit ports.AuditSink) *AuthHandler {
	return &AuthHandler{identity: identity, tokens: tokens, audit: audit}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

// Login authenticates a username/password pair and returns an access token
// plus a refresh token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  domain.TokenPair
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.identity.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}

	pair, err := h.tokens.IssuePair(user)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues(domain.TokenTypeAccess).Inc()
	metrics.TokensIssuedTotal.WithLabelValues(domain.TokenTypeRefresh).Inc()
	h.audit.Record(domain.AuthEvent{Username: user.Username, Action: "login"})

	return c.JSON(http.StatusOK, pair)
}

// Refresh exchanges a Bearer refresh token for a brand-new access token.
// The new token carries the subject's current role set, not the roles that
// were in force when the refresh token was issued.
//
// @Summary      Refresh access token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  refreshResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /auth/token/refresh [get]
func (h *AuthHandler) Refresh(c echo.Context) error {
	token, err := middleware.BearerToken(c)
	if err != nil {
		return err
	}

	timer := metrics.NewRefreshTimer()
	access, err := h.tokens.Refresh(c.Request().Context(), token)
	if err != nil {
		timer.Observe("failure")
		return err
	}
	timer.Observe("success")
	metrics.TokensIssuedTotal.WithLabelValues(domain.TokenTypeAccess).Inc()

	claims, err := h.tokens.Verify(access)
	if err == nil {
		h.audit.Record(domain.AuthEvent{Username: claims.Subject, Action: "refresh"})
	}

	return c.JSON(http.StatusOK, refreshResponse{AccessToken: access})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/platformlab/identity-service/internal/api/metrics"
	"github.com/platformlab/identity-service/internal/core/domain"
	"github.com/platformlab/identity-service/internal/core/ports"
)

// UserHandler owns user and role administration endpoints.
type UserHandler struct {
	identity ports.IdentityService
	audit    ports.AuditSink
}

func NewUserHandler(identity ports.IdentityService, audit ports.AuditSink) *UserHandler {
	return &UserHandler{identity: identity, audit: audit}
}

type createUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=4"`
}

type createRoleRequest struct {
	Name string `json:"name" validate:"required"`
}

type assignRoleRequest struct {
	Username string `json:"username" validate:"required"`
	RoleName string `json:"role_name" validate:"required"`
}

// List returns every user with their materialized role sets.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {array}  domain.User
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.identity.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Create registers a new user.
//
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.identity.CreateUser(c.Request().Context(), req.Name, req.Username, req.Password)
	if err != nil {
		return err
	}

	metrics.UsersCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, user)
}

// CreateRole registers a new role.
//
// @Summary      Create role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        body  body      createRoleRequest  true  "Role name"
// @Success      201   {object}  domain.Role
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/roles [post]
func (h *UserHandler) CreateRole(c echo.Context) error {
	var req createRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, err := h.identity.CreateRole(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, role)
}

// AssignRole adds an existing role to an existing user.
//
// @Summary      Assign role to user
// @Tags         roles
// @Accept       json
// @Param        body  body  assignRoleRequest  true  "Assignment"
// @Success      204
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/roles/assign [post]
func (h *UserHandler) AssignRole(c echo.Context) error {
	var req assignRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.identity.AssignRole(c.Request().Context(), req.Username, req.RoleName); err != nil {
		return err
	}

	metrics.RoleAssignmentsTotal.Inc()
	h.audit.Record(domain.AuthEvent{
		Username: req.Username,
		Action:   "role_assigned",
		Detail:   req.RoleName,
	})

	return c.NoContent(http.StatusNoContent)
}

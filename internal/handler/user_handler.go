package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "flytrap/internal/errors"
	"flytrap/internal/guard"
	"flytrap/internal/model"
	"flytrap/internal/service"
)

// UserHandler bundles user management handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// CreateUserRequest represents a new user submitted by a root user.
type CreateUserRequest struct {
	FirstName         string `json:"first_name" validate:"required"`
	LastName          string `json:"last_name" validate:"required"`
	Email             string `json:"email" validate:"required"`
	Password          string `json:"password" validate:"required"`
	ConfirmedPassword string `json:"confirmed_password" validate:"required"`
}

// CreatedUserResponse is returned after a user is created.
type CreatedUserResponse struct {
	UUID      string `json:"uuid"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UpdatePasswordRequest replaces the caller's password.
type UpdatePasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// ProjectSummary is the short form of a project.
type ProjectSummary struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// ProjectListResponse wraps a list of projects.
type ProjectListResponse struct {
	Projects []ProjectSummary `json:"projects"`
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return apperrors.Respond(err)
	}
	if users == nil {
		users = []model.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUser godoc
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "User payload"
// @Success 201 {object} CreatedUserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Respond(apperrors.ErrBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Respond(apperrors.ErrBadRequest)
	}

	user, err := h.svc.CreateUser(c.Request().Context(), service.CreateUserInput{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Password:          req.Password,
		ConfirmedPassword: req.ConfirmedPassword,
	})
	if err != nil {
		return apperrors.Respond(err)
	}
	return c.JSON(http.StatusCreated, CreatedUserResponse{
		UUID:      user.UUID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// Me godoc
// @Summary Profile of the caller
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	identity, ok := guard.IdentityFrom(c)
	if !ok {
		return apperrors.Respond(apperrors.ErrMissingToken)
	}
	user, err := h.svc.GetUser(c.Request().Context(), identity.UserUUID)
	if err != nil {
		return apperrors.Respond(err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete user
// @Tags users
// @Security BearerAuth
// @Param user_uuid path string true "User UUID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{user_uuid} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	if err := h.svc.DeleteUser(c.Request().Context(), c.Param("user_uuid")); err != nil {
		return apperrors.Respond(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdatePassword godoc
// @Summary Change own password
// @Tags users
// @Accept json
// @Security BearerAuth
// @Param user_uuid path string true "User UUID"
// @Param request body UpdatePasswordRequest true "New password"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users/{user_uuid} [patch]
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	var req UpdatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Respond(apperrors.ErrBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Respond(apperrors.ErrBadRequest)
	}
	if err := h.svc.UpdatePassword(c.Request().Context(), c.Param("user_uuid"), req.Password); err != nil {
		return apperrors.Respond(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListUserProjects godoc
// @Summary Projects visible to a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param user_uuid path string true "User UUID"
// @Success 200 {object} ProjectListResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{user_uuid}/projects [get]
func (h *UserHandler) ListUserProjects(c echo.Context) error {
	projects, err := h.svc.ListUserProjects(c.Request().Context(), c.Param("user_uuid"))
	if err != nil {
		return apperrors.Respond(err)
	}
	return c.JSON(http.StatusOK, ProjectListResponse{Projects: summarize(projects)})
}

func summarize(projects []model.Project) []ProjectSummary {
	out := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		out = append(out, ProjectSummary{UUID: p.UUID, Name: p.Name})
	}
	return out
}

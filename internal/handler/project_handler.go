package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "flytrap/internal/errors"
	"flytrap/internal/model"
	"flytrap/internal/service"
)

// ProjectHandler handles project and membership endpoints.
type ProjectHandler struct {
	svc service.ProjectService
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(svc service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// ProjectRequest carries a project name.
type ProjectRequest struct {
	Name string `json:"name" validate:"required"`
}

// MemberRequest names the user to add to a project.
type MemberRequest struct {
	UserUUID string `json:"user_uuid" validate:"required"`
}

// ListProjects godoc
// @Summary List projects
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProjectListResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /projects [get]
func (h *ProjectHandler) ListProjects(c echo.Context) error {
	projects, err := h.svc.ListProjects(c.Request().Context())
	if err != nil {
		return apperrors.Respond(err)
	}
	return c.JSON(http.StatusOK, ProjectListResponse{Projects: summarize(projects)})
}

// CreateProject godoc
// @Summary Create project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProjectRequest true "Project"
// @Success 201 {object} ProjectSummary
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /projects [post]
func (h *ProjectHandler) CreateProject(c echo.Context) error {
	var req ProjectRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Respond(apperrors.ErrBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Respond(apperrors.ErrBadRequest)
	}

	project, err := h.svc.CreateProject(c.Request().Context(), req.Name)
	if err != nil {
		return apperrors.Respond(err)
	}
	return c.JSON(http.StatusCreated, ProjectSummary{UUID: project.UUID, Name: project.Name})
}

// GetProject godoc
// @Summary Get project
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param project_uuid path string true "Project UUID"
// @Success 200 {object} model.Project
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{project_uuid} [get]
func (h *ProjectHandler) GetProject(c echo.Context) error {
	project, err := h.svc.GetProject(c.Request().Context(), c.Param("project_uuid"))
	if err != nil {
		return apperrors.Respond(err)
	}
	return c.JSON(http.StatusOK, project)
}

// RenameProject godoc
// @Summary Rename project
// @Tags projects
// @Accept json
// @Security BearerAuth
// @Param project_uuid path string true "Project UUID"
// @Param request body ProjectRequest true "Project"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{project_uuid} [patch]
func (h *ProjectHandler) RenameProject(c echo.Context) error {
	var req ProjectRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Respond(apperrors.ErrBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Respond(apperrors.ErrBadRequest)
	}
	if err := h.svc.RenameProject(c.Request().Context(), c.Param("project_uuid"), req.Name); err != nil {
		return apperrors.Respond(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteProject godoc
// @Summary Delete project
// @Tags projects
// @Security BearerAuth
// @Param project_uuid path string true "Project UUID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{project_uuid} [delete]
func (h *ProjectHandler) DeleteProject(c echo.Context) error {
	if err := h.svc.DeleteProject(c.Request().Context(), c.Param("project_uuid")); err != nil {
		return apperrors.Respond(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMembers godoc
// @Summary List project members
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param project_uuid path string true "Project UUID"
// @Success 200 {array} model.User
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{project_uuid}/users [get]
func (h *ProjectHandler) ListMembers(c echo.Context) error {
	users, err := h.svc.ListMembers(c.Request().Context(), c.Param("project_uuid"))
	if err != nil {
		return apperrors.Respond(err)
	}
	if users == nil {
		users = []model.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// AddMember godoc
// @Summary Add project member
// @Tags projects
// @Accept json
// @Security BearerAuth
// @Param project_uuid path string true "Project UUID"
// @Param request body MemberRequest true "Member"
// @Success 201
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{project_uuid}/users [post]
func (h *ProjectHandler) AddMember(c echo.Context) error {
	var req MemberRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Respond(apperrors.ErrBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Respond(apperrors.ErrBadRequest)
	}
	if err := h.svc.AddMember(c.Request().Context(), c.Param("project_uuid"), req.UserUUID); err != nil {
		return apperrors.Respond(err)
	}
	return c.NoContent(http.StatusCreated)
}

// RemoveMember godoc
// @Summary Remove project member
// @Tags projects
// @Security BearerAuth
// @Param project_uuid path string true "Project UUID"
// @Param user_uuid path string true "User UUID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{project_uuid}/users/{user_uuid} [delete]
func (h *ProjectHandler) RemoveMember(c echo.Context) error {
	if err := h.svc.RemoveMember(c.Request().Context(), c.Param("project_uuid"), c.Param("user_uuid")); err != nil {
		return apperrors.Respond(err)
	}
	return c.NoContent(http.StatusNoContent)
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"flytrap/internal/config"
	apperrors "flytrap/internal/errors"
	"flytrap/internal/guard"
	"flytrap/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	cookie      config.CookieConfig
	refreshTTL  time.Duration
}

// NewAuthHandler creates a new auth handler. refreshTTL is used as the cookie Max-Age.
func NewAuthHandler(authService service.AuthService, cookie config.CookieConfig, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
		refreshTTL:  refreshTTL,
	}
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserSummary is the public part of a user returned on login.
type UserSummary struct {
	UUID      string `json:"uuid"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsRoot    bool   `json:"is_root"`
}

// LoginResponse represents a successful login. The refresh token travels in a cookie only.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	User        UserSummary `json:"user"`
}

// TokenResponse carries a freshly issued access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Login godoc
// @Summary Login user
// @Description Verifies credentials, returns an access token and sets the refresh_token cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Respond(apperrors.ErrBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Respond(apperrors.ErrBadRequest)
	}

	accessToken, refreshToken, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return apperrors.Respond(err)
	}

	c.SetCookie(refreshCookie(h.cookie, refreshToken, h.refreshTTL))
	return c.JSON(http.StatusOK, LoginResponse{
		AccessToken: accessToken,
		User: UserSummary{
			UUID:      user.UUID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			IsRoot:    user.IsRoot,
		},
	})
}

// Logout godoc
// @Summary Logout user
// @Description Clears the refresh_token cookie. Issued tokens stay valid until they expire.
// @Tags auth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(expiredRefreshCookie(h.cookie))
	return c.NoContent(http.StatusNoContent)
}

// Refresh godoc
// @Summary Refresh access token
// @Description Exchanges the refresh_token cookie for a new access token carrying the current root status.
// @Tags auth
// @Produce json
// @Success 200 {object} TokenResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	accessToken, err := h.authService.Refresh(c.Request().Context(), c.Request())
	if err != nil {
		return apperrors.Respond(err)
	}
	return c.JSON(http.StatusOK, TokenResponse{AccessToken: accessToken})
}

// Status godoc
// @Summary Current identity
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.Identity
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/status [get]
func (h *AuthHandler) Status(c echo.Context) error {
	identity, ok := guard.IdentityFrom(c)
	if !ok {
		return apperrors.Respond(apperrors.ErrMissingToken)
	}
	return c.JSON(http.StatusOK, identity)
}

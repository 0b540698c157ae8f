package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"flytrap/internal/guard"
	"flytrap/internal/handler"
	"flytrap/internal/logging"
	"flytrap/internal/metrics"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Projects *handler.ProjectHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, g *guard.Guard, m *metrics.Metrics, log *zap.Logger, h Handlers) {
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(m.Middleware())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", m.Handler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	authn := g.Authenticate()
	root := []echo.MiddlewareFunc{authn, g.RequireRoot()}

	authGroup := api.Group("/auth")
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/logout", h.Auth.Logout)
	authGroup.POST("/refresh", h.Auth.Refresh)
	authGroup.GET("/status", h.Auth.Status, authn)

	users := api.Group("/users")
	users.GET("", h.Users.ListUsers, root...)
	users.POST("", h.Users.CreateUser, root...)
	users.GET("/me", h.Users.Me, authn)
	users.DELETE("/:user_uuid", h.Users.DeleteUser, root...)
	users.PATCH("/:user_uuid", h.Users.UpdatePassword, authn, g.RequireSelf("user_uuid"))
	users.GET("/:user_uuid/projects", h.Users.ListUserProjects, authn, g.RequireSelf("user_uuid"))

	projects := api.Group("/projects")
	projects.GET("", h.Projects.ListProjects, root...)
	projects.POST("", h.Projects.CreateProject, root...)
	projects.GET("/:project_uuid", h.Projects.GetProject, authn, g.RequireProjectMember("project_uuid"))
	projects.PATCH("/:project_uuid", h.Projects.RenameProject, root...)
	projects.DELETE("/:project_uuid", h.Projects.DeleteProject, root...)
	projects.GET("/:project_uuid/users", h.Projects.ListMembers, root...)
	projects.POST("/:project_uuid/users", h.Projects.AddMember, root...)
	projects.DELETE("/:project_uuid/users/:user_uuid", h.Projects.RemoveMember, root...)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

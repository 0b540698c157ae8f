// Package guard authenticates requests from a bearer access token and authorizes them with
// composable predicates. Predicates are plain echo middleware, so a route lists them in the
// order they must run:
//
//	users.DELETE("/:user_uuid", h.Delete, g.Authenticate(), g.RequireRoot())
//	projects.GET("/:project_uuid", h.Get, g.Authenticate(), g.RequireProjectMember("project_uuid"))
//	users.PATCH("/:user_uuid", h.UpdatePassword, g.Authenticate(), g.RequireSelf("user_uuid"))
//
// Nothing is retained between requests: the identity lives in the echo context only.
package guard

import (
	"context"
	"errors"
	"slices"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"flytrap/internal/auth"
	apperrors "flytrap/internal/errors"
	"flytrap/internal/metrics"
)

const identityKey = "identity"

// MembershipSource lists the users explicitly granted access to a project.
type MembershipSource interface {
	ListProjectMembers(ctx context.Context, projectUUID string) ([]string, error)
}

// Guard holds the collaborators shared by all predicates.
type Guard struct {
	tokens  *auth.Manager
	members MembershipSource
	metrics *metrics.Metrics
	log     *zap.Logger
}

// New creates a guard. metrics and log may be nil.
func New(tokens *auth.Manager, members MembershipSource, m *metrics.Metrics, log *zap.Logger) *Guard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{tokens: tokens, members: members, metrics: m, log: log.Named("guard")}
}

// Authenticate requires a valid "Authorization: Bearer <access token>" header and stores the
// caller's identity in the context. It never refreshes tokens: an expired access token is
// answered with SessionExpired and the client is expected to call the refresh endpoint.
func (g *Guard) Authenticate() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:  identityKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return g.tokens.DecodeAccessToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return g.reject(c, authenticationError(err))
		},
	})
}

// authenticationError classifies echo-jwt failures. Anything that is not a token verification
// failure means no usable token was supplied.
func authenticationError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return apperrors.ErrSessionExpired
	case errors.Is(err, auth.ErrInvalidToken):
		return apperrors.ErrInvalidSession
	default:
		return apperrors.ErrMissingToken
	}
}

// RequireRoot passes only callers whose access token carries is_root.
func (g *Guard) RequireRoot() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return g.reject(c, apperrors.ErrMissingToken)
			}
			if !identity.IsRoot {
				return g.reject(c, apperrors.ErrForbidden)
			}
			return next(c)
		}
	}
}

// RequireProjectMember passes root callers and callers listed as members of the project named
// by the route parameter param.
func (g *Guard) RequireProjectMember(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return g.reject(c, apperrors.ErrMissingToken)
			}
			projectUUID := c.Param(param)
			if projectUUID == "" {
				return g.reject(c, apperrors.ErrBadRequest)
			}
			if identity.IsRoot {
				return next(c)
			}

			members, err := g.members.ListProjectMembers(c.Request().Context(), projectUUID)
			if err != nil {
				return apperrors.Respond(err)
			}
			if !slices.Contains(members, identity.UserUUID) {
				return g.reject(c, apperrors.ErrForbidden)
			}
			return next(c)
		}
	}
}

// RequireSelf passes only when the route parameter param equals the caller's uuid.
// Root callers get no exemption.
func (g *Guard) RequireSelf(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return g.reject(c, apperrors.ErrMissingToken)
			}
			userUUID := c.Param(param)
			if userUUID == "" {
				return g.reject(c, apperrors.ErrBadRequest)
			}
			if userUUID != identity.UserUUID {
				return g.reject(c, apperrors.ErrForbidden)
			}
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by Authenticate.
func IdentityFrom(c echo.Context) (auth.Identity, bool) {
	identity, ok := c.Get(identityKey).(auth.Identity)
	return identity, ok
}

func (g *Guard) reject(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	g.metrics.ObserveRejection(httpErr.Code)
	g.log.Debug("request rejected",
		zap.String("path", c.Path()),
		zap.String("code", httpErr.Code),
	)
	return apperrors.Respond(err)
}

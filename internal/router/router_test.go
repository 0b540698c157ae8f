package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"flytrap/internal/auth"
	"flytrap/internal/cache"
	"flytrap/internal/config"
	apperrors "flytrap/internal/errors"
	"flytrap/internal/guard"
	"flytrap/internal/handler"
	"flytrap/internal/metrics"
	"flytrap/internal/model"
	"flytrap/internal/service"
)

type app struct {
	echo  *echo.Echo
	users fakeUsers
	store *store
	redis *miniredis.Miniredis
}

func newApp(t *testing.T) *app {
	t.Helper()

	st := newStore()
	users := fakeUsers{st}
	projects := fakeProjects{st}
	m := metrics.New(prometheus.NewRegistry())

	mr := miniredis.RunT(t)
	cacheClient := cache.New(mr.Addr(), "", 0, nil)
	t.Cleanup(func() { _ = cacheClient.Close() })
	roots := auth.NewCachedRootStatus(users, cacheClient, 15*time.Minute)

	tokens := auth.NewManager(auth.NewCodec("e2e-secret"), roots, time.Minute, time.Hour)
	cookie := config.CookieConfig{HTTPOnly: true, SameSite: "Lax", Path: "/"}

	e := echo.New()
	Register(e, guard.New(tokens, projects, m, nil), m, zap.NewNop(), Handlers{
		Auth:     handler.NewAuthHandler(service.NewAuthService(users, tokens, m), cookie, tokens.RefreshTTL()),
		Users:    handler.NewUserHandler(service.NewUserService(users, projects, roots)),
		Projects: handler.NewProjectHandler(service.NewProjectService(projects)),
	})

	a := &app{echo: e, users: users, store: st, redis: mr}
	a.addUser(t, "root-uuid", "root@example.com", "rootpw", true)
	a.addUser(t, "user-uuid", "user@example.com", "userpw", false)
	a.addUser(t, "other-uuid", "other@example.com", "otherpw", false)
	return a
}

func (a *app) addUser(t *testing.T, userUUID, email, password string, isRoot bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, a.users.Create(context.Background(), &model.User{
		UUID: userUUID, FirstName: "F", LastName: "L", Email: email, PasswordHash: string(hash), IsRoot: isRoot,
	}))
}

type call struct {
	method string
	path   string
	body   string
	bearer string
	cookie *http.Cookie
}

func (a *app) do(c call) *httptest.ResponseRecorder {
	var req *http.Request
	if c.body != "" {
		req = httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(c.method, c.path, nil)
	}
	if c.bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+c.bearer)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

// login returns the access token and the refresh cookie.
func (a *app) login(t *testing.T, email, password string) (string, *http.Cookie) {
	t.Helper()
	rec := a.do(call{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   `{"email":"` + email + `","password":"` + password + `"}`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body handler.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.RefreshTokenCookie {
			return body.AccessToken, c
		}
	}
	t.Fatal("no refresh cookie")
	return "", nil
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestHealthz(t *testing.T) {
	a := newApp(t)

	rec := a.do(call{method: http.MethodGet, path: "/healthz"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestLoginSetsHTTPOnlyRefreshCookie(t *testing.T) {
	a := newApp(t)

	rec := a.do(call{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   `{"email":"root@example.com","password":"rootpw"}`,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token"`)
	assert.Contains(t, rec.Body.String(), `"is_root":true`)
	header := rec.Header().Get(echo.HeaderSetCookie)
	assert.True(t, strings.HasPrefix(header, auth.RefreshTokenCookie+"="))
	assert.Contains(t, header, "HttpOnly")
	assert.Contains(t, header, "Max-Age=3600")
}

func TestLoginWrongPassword(t *testing.T) {
	a := newApp(t)

	for _, body := range []string{
		`{"email":"root@example.com","password":"wrong"}`,
		`{"email":"nobody@example.com","password":"rootpw"}`,
	} {
		rec := a.do(call{method: http.MethodPost, path: "/api/auth/login", body: body})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, rec))
		assert.Empty(t, rec.Header().Get(echo.HeaderSetCookie))
	}
}

func TestRootOnlyRoutes(t *testing.T) {
	a := newApp(t)
	rootToken, _ := a.login(t, "root@example.com", "rootpw")
	userToken, _ := a.login(t, "user@example.com", "userpw")

	rec := a.do(call{method: http.MethodGet, path: "/api/users", bearer: userToken})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))

	rec = a.do(call{method: http.MethodGet, path: "/api/users"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "MISSING_TOKEN", errorCode(t, rec))

	rec = a.do(call{method: http.MethodGet, path: "/api/users", bearer: rootToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

// refreshedIdentity refreshes with cookie and returns the new access token and the identity it carries.
func (a *app) refreshedIdentity(t *testing.T, cookie *http.Cookie) (string, auth.Identity) {
	t.Helper()
	rec := a.do(call{method: http.MethodPost, path: "/api/auth/refresh", cookie: cookie})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body handler.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	rec = a.do(call{method: http.MethodGet, path: "/api/auth/status", bearer: body.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	var identity auth.Identity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &identity))
	return body.AccessToken, identity
}

func TestRefreshIssuesNewTokenWithCurrentRootStatus(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	access, cookie := a.login(t, "user@example.com", "userpw")

	require.NoError(t, a.users.SetRoot(ctx, "user-uuid", true))

	refreshed, identity := a.refreshedIdentity(t, cookie)
	assert.NotEqual(t, access, refreshed)
	assert.Equal(t, auth.Identity{UserUUID: "user-uuid", IsRoot: true}, identity)
	cached, err := a.redis.Get("is_root:user-uuid")
	require.NoError(t, err)
	assert.Equal(t, "1", cached)

	require.NoError(t, a.users.SetRoot(ctx, "user-uuid", false))

	_, identity = a.refreshedIdentity(t, cookie)
	assert.Equal(t, auth.Identity{UserUUID: "user-uuid", IsRoot: false}, identity)
	cached, err = a.redis.Get("is_root:user-uuid")
	require.NoError(t, err)
	assert.Equal(t, "0", cached)
}

func TestRefreshFailures(t *testing.T) {
	a := newApp(t)
	_, cookie := a.login(t, "other@example.com", "otherpw")

	rec := a.do(call{method: http.MethodPost, path: "/api/auth/refresh"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "NO_REFRESH_TOKEN", errorCode(t, rec))

	rec = a.do(call{method: http.MethodPost, path: "/api/auth/refresh",
		cookie: &http.Cookie{Name: auth.RefreshTokenCookie, Value: "garbage"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", errorCode(t, rec))

	require.NoError(t, a.users.DeleteByUUID(context.Background(), "other-uuid"))
	rec = a.do(call{method: http.MethodPost, path: "/api/auth/refresh", cookie: cookie})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", errorCode(t, rec))
}

func TestLogoutClearsCookie(t *testing.T) {
	a := newApp(t)
	_, cookie := a.login(t, "user@example.com", "userpw")

	for _, c := range []*http.Cookie{nil, cookie} {
		rec := a.do(call{method: http.MethodPost, path: "/api/auth/logout", cookie: c})

		assert.Equal(t, http.StatusNoContent, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "", cookies[0].Value)
		assert.True(t, cookies[0].Expires.Before(time.Now()))
	}
}

func TestSelfOnlyRoutes(t *testing.T) {
	a := newApp(t)
	userToken, _ := a.login(t, "user@example.com", "userpw")
	rootToken, _ := a.login(t, "root@example.com", "rootpw")

	rec := a.do(call{method: http.MethodPatch, path: "/api/users/other-uuid", body: `{"password":"x"}`, bearer: userToken})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(call{method: http.MethodPatch, path: "/api/users/user-uuid", body: `{"password":"x"}`, bearer: rootToken})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(call{method: http.MethodPatch, path: "/api/users/user-uuid", body: `{}`, bearer: userToken})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(call{method: http.MethodPatch, path: "/api/users/user-uuid", body: `{"password":"n3w"}`, bearer: userToken})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	a.login(t, "user@example.com", "n3w")
}

func TestProjectMembership(t *testing.T) {
	a := newApp(t)
	rootToken, _ := a.login(t, "root@example.com", "rootpw")
	userToken, _ := a.login(t, "user@example.com", "userpw")

	rec := a.do(call{method: http.MethodPost, path: "/api/projects", body: `{"name":"backend"}`, bearer: rootToken})
	require.Equal(t, http.StatusCreated, rec.Code)
	var project handler.ProjectSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))
	projectPath := "/api/projects/" + project.UUID

	rec = a.do(call{method: http.MethodGet, path: projectPath, bearer: userToken})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(call{method: http.MethodGet, path: "/api/projects/unknown", bearer: userToken})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(call{method: http.MethodPost, path: projectPath + "/users", body: `{"user_uuid":"user-uuid"}`, bearer: userToken})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(call{method: http.MethodPost, path: projectPath + "/users", body: `{"user_uuid":"user-uuid"}`, bearer: rootToken})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(call{method: http.MethodGet, path: projectPath, bearer: userToken})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"backend"`)

	rec = a.do(call{method: http.MethodGet, path: "/api/users/user-uuid/projects", bearer: userToken})
	require.Equal(t, http.StatusOK, rec.Code)
	var list handler.ProjectListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, []handler.ProjectSummary{project}, list.Projects)

	rec = a.do(call{method: http.MethodDelete, path: projectPath + "/users/user-uuid", bearer: rootToken})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(call{method: http.MethodDelete, path: projectPath + "/users/user-uuid", bearer: rootToken})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PROJECT_OR_USER_NOT_FOUND", errorCode(t, rec))

	rec = a.do(call{method: http.MethodGet, path: projectPath, bearer: rootToken})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAndDeleteUser(t *testing.T) {
	a := newApp(t)
	rootToken, _ := a.login(t, "root@example.com", "rootpw")

	body := `{"first_name":"N","last_name":"U","email":"new@example.com","password":"pw","confirmed_password":"pw"}`
	rec := a.do(call{method: http.MethodPost, path: "/api/users", body: body, bearer: rootToken})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created handler.CreatedUserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = a.do(call{method: http.MethodPost, path: "/api/users", body: body, bearer: rootToken})
	assert.Equal(t, http.StatusConflict, rec.Code)

	newToken, _ := a.login(t, "new@example.com", "pw")
	rec = a.do(call{method: http.MethodGet, path: "/api/users/me", bearer: newToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.UUID)

	rec = a.do(call{method: http.MethodDelete, path: "/api/users/" + created.UUID, bearer: rootToken})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(call{method: http.MethodGet, path: "/api/users/me", bearer: newToken})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

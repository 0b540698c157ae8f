package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	apperrors "flytrap/internal/errors"
)

const (
	// DefaultAccessTokenExpiry is the access token lifetime when none is configured.
	DefaultAccessTokenExpiry = 20 * time.Minute
	// DefaultRefreshTokenExpiry is the refresh token lifetime when none is configured.
	DefaultRefreshTokenExpiry = 7 * 24 * time.Hour

	// RefreshTokenCookie is the name of the HTTP-only cookie carrying the refresh token.
	RefreshTokenCookie = "refresh_token"

	claimUserUUID = "user_uuid"
	claimIsRoot   = "is_root"
	claimType     = "typ"
	claimID       = "jti"

	typeAccess  = "access"
	typeRefresh = "refresh"
)

// Identity is the authenticated caller, taken from a verified access token.
type Identity struct {
	UserUUID string `json:"user_uuid"`
	IsRoot   bool   `json:"is_root"`
}

// RootStatusSource answers whether a user currently holds root privileges.
// Implementations return apperrors.ErrUserNotFound for unknown users.
type RootStatusSource interface {
	IsRoot(ctx context.Context, userUUID string) (bool, error)
}

// Manager is the only component that mints or interprets access and refresh tokens.
type Manager struct {
	codec      *Codec
	roots      RootStatusSource
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager creates a token manager. Non-positive TTLs fall back to the defaults.
func NewManager(codec *Codec, roots RootStatusSource, accessTTL, refreshTTL time.Duration) *Manager {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenExpiry
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenExpiry
	}
	return &Manager{
		codec:      codec,
		roots:      roots,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL returns the configured access token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

// CreateAccessToken issues an access token carrying the user's uuid and a snapshot of is_root.
func (m *Manager) CreateAccessToken(userUUID string, isRoot bool, expiresIn time.Duration) (string, error) {
	return m.codec.Encode(map[string]any{
		claimUserUUID: userUUID,
		claimIsRoot:   isRoot,
		claimType:     typeAccess,
		claimID:       uuid.NewString(),
	}, expiresIn)
}

// CreateRefreshToken issues a refresh token. It intentionally omits is_root: privilege
// is looked up again every time the token is exchanged.
func (m *Manager) CreateRefreshToken(userUUID string, expiresIn time.Duration) (string, error) {
	return m.codec.Encode(map[string]any{
		claimUserUUID: userUUID,
		claimType:     typeRefresh,
		claimID:       uuid.NewString(),
	}, expiresIn)
}

// DecodeToken verifies token and returns its raw payload.
func (m *Manager) DecodeToken(token string) (map[string]any, error) {
	return m.codec.Decode(token)
}

// DecodeAccessToken verifies an access token and returns the identity it carries.
// Refresh tokens are rejected with ErrInvalidToken.
func (m *Manager) DecodeAccessToken(token string) (Identity, error) {
	payload, err := m.DecodeToken(token)
	if err != nil {
		return Identity{}, err
	}
	if typ, _ := payload[claimType].(string); typ != typeAccess {
		return Identity{}, fmt.Errorf("%w: not an access token", ErrInvalidToken)
	}
	userUUID, _ := payload[claimUserUUID].(string)
	if userUUID == "" {
		return Identity{}, fmt.Errorf("%w: missing user_uuid", ErrInvalidToken)
	}
	isRoot, _ := payload[claimIsRoot].(bool)
	return Identity{UserUUID: userUUID, IsRoot: isRoot}, nil
}

// ValidateToken reports whether token is a currently valid access token.
func (m *Manager) ValidateToken(token string) bool {
	_, err := m.DecodeAccessToken(token)
	return err == nil
}

// RefreshAccessToken exchanges the refresh token cookie of r for a new access token.
// The current is_root is read from the root status source, so privilege changes apply
// on the next refresh. Token failures are reported as ErrNoRefreshToken,
// ErrExpiredRefreshToken or ErrInvalidRefreshToken; store failures are returned as is.
func (m *Manager) RefreshAccessToken(ctx context.Context, r *http.Request) (string, error) {
	cookie, err := r.Cookie(RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		return "", apperrors.ErrNoRefreshToken
	}

	userUUID, err := m.decodeRefreshToken(cookie.Value)
	if err != nil {
		return "", err
	}

	isRoot, err := m.roots.IsRoot(ctx, userUUID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return "", apperrors.ErrInvalidRefreshToken
	}
	if err != nil {
		return "", fmt.Errorf("lookup root status: %w", err)
	}

	return m.CreateAccessToken(userUUID, isRoot, m.accessTTL)
}

func (m *Manager) decodeRefreshToken(token string) (string, error) {
	payload, err := m.DecodeToken(token)
	switch {
	case errors.Is(err, ErrExpiredToken):
		return "", apperrors.ErrExpiredRefreshToken
	case err != nil:
		return "", apperrors.ErrInvalidRefreshToken
	}
	if typ, _ := payload[claimType].(string); typ != typeRefresh {
		return "", apperrors.ErrInvalidRefreshToken
	}
	userUUID, _ := payload[claimUserUUID].(string)
	if userUUID == "" {
		return "", apperrors.ErrInvalidRefreshToken
	}
	return userUUID, nil
}

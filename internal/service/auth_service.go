package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"flytrap/internal/auth"
	apperrors "flytrap/internal/errors"
	"flytrap/internal/metrics"
	"flytrap/internal/model"
	"flytrap/internal/repository"
)

const bcryptCost = 10

// dummyPasswordHash is compared against on unknown emails so that login takes
// the same time whether or not the account exists.
var dummyPasswordHash, _ = bcrypt.GenerateFromPassword([]byte("flytrap-no-such-user"), bcryptCost)

var compareHash = bcrypt.CompareHashAndPassword

// AuthService handles authentication operations.
type AuthService interface {
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error)
	Refresh(ctx context.Context, r *http.Request) (accessToken string, err error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *auth.Manager
	metrics  *metrics.Metrics
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.Manager, m *metrics.Metrics) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		metrics:  m,
	}
}

// Login verifies the credentials and issues an access token and a refresh token.
// Unknown email and wrong password both return ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error) {
	user, err = s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		_ = compareHash(dummyPasswordHash, []byte(password))
		s.metrics.ObserveLogin(metrics.OutcomeFailure)
		return "", "", nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		s.metrics.ObserveLogin(metrics.OutcomeError)
		return "", "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := compareHash([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.metrics.ObserveLogin(metrics.OutcomeFailure)
		return "", "", nil, apperrors.ErrInvalidCredentials
	}

	accessToken, err = s.tokens.CreateAccessToken(user.UUID, user.IsRoot, s.tokens.AccessTTL())
	if err != nil {
		s.metrics.ObserveLogin(metrics.OutcomeError)
		return "", "", nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err = s.tokens.CreateRefreshToken(user.UUID, s.tokens.RefreshTTL())
	if err != nil {
		s.metrics.ObserveLogin(metrics.OutcomeError)
		return "", "", nil, fmt.Errorf("generate refresh token: %w", err)
	}

	s.metrics.ObserveLogin(metrics.OutcomeSuccess)
	return accessToken, refreshToken, user, nil
}

// Refresh exchanges the refresh token cookie of r for a new access token.
func (s *authService) Refresh(ctx context.Context, r *http.Request) (string, error) {
	accessToken, err := s.tokens.RefreshAccessToken(ctx, r)
	switch {
	case err == nil:
		s.metrics.ObserveRefresh(metrics.OutcomeSuccess)
	case isTokenFailure(err):
		s.metrics.ObserveRefresh(metrics.OutcomeFailure)
	default:
		s.metrics.ObserveRefresh(metrics.OutcomeError)
	}
	return accessToken, err
}

func isTokenFailure(err error) bool {
	return errors.Is(err, apperrors.ErrNoRefreshToken) ||
		errors.Is(err, apperrors.ErrExpiredRefreshToken) ||
		errors.Is(err, apperrors.ErrInvalidRefreshToken)
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

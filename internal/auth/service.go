package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/invoice-management/internal"
	"golang.org/x/crypto/bcrypt"
)

// ErrUserNotFound is returned by repositories when no user matches.
var ErrUserNotFound = errors.New("user not found")

// Service is the main auth service with dependencies
type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGenerator
	bcryptCost     int
	logger         *slog.Logger
}

// NewService creates a new auth service
func NewService(repo RepositoryAPI, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.repo.GetCredentialsByEmail(ctx, strings.ToLower(strings.TrimSpace(dto.Email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.Warn("login attempt for unknown email")
			return AuthTokens{}, internal.ErrInvalidCredentials
		}
		s.logger.Error("failed to load credentials", "error", err)
		return AuthTokens{}, internal.NewInternalError("failed to authenticate", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("login attempt with wrong password", "user_id", creds.UserID)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	s.logger.Info("user authenticated", "user_id", creds.UserID, "role", creds.Role)
	return s.issueTokens(creds.UserID, creds.Email)
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	// the account may have been removed since the refresh token was issued
	if _, err := s.ResolveCaller(ctx, claims.UserID); err != nil {
		return AuthTokens{}, err
	}

	return s.issueTokens(claims.UserID, claims.Email)
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

// ResolveCaller loads the caller's current role from storage.
func (s *Service) ResolveCaller(ctx context.Context, userID string) (Caller, error) {
	caller, err := s.repo.GetCallerByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Caller{}, internal.ErrInvalidToken
		}
		return Caller{}, internal.NewInternalError("failed to resolve caller", err)
	}
	if !caller.Role.Valid() {
		s.logger.Error("user has unknown role", "user_id", userID, "role", caller.Role)
		return Caller{}, internal.ErrForbidden
	}
	return *caller, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) issueTokens(userID, email string) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(userID, email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue token", err)
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(userID, email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue token", err)
	}

	tokens := AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
	if gen, ok := s.tokenGenerator.(*JWTTokenGenerator); ok {
		tokens.ExpiresIn = int64(gen.AccessTokenTTL.Seconds())
	}
	return tokens, nil
}

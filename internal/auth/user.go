package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleUser           Role = "USER"
	RoleAdmin          Role = "ADMIN"
	RolePayrollManager Role = "PAYROLL_MANAGER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RolePayrollManager:
		return true
	}
	return false
}

// Caller is the resolved identity of whoever issued the current request.
type Caller struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

func (c Caller) IsAuthenticated() bool {
	return c.UserID != ""
}

func (c Caller) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// Credentials is what the repository returns for a login attempt.
type Credentials struct {
	UserID       string
	Email        string
	PasswordHash string
	Role         Role
}

type ctxKey string

const ContextCallerKey ctxKey = "caller"

func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(ContextCallerKey).(Caller)
	return c, ok && c.IsAuthenticated()
}

func ContextWithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, ContextCallerKey, c)
}

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ResolveCaller(ctx context.Context, userID string) (Caller, error)
}

type RepositoryAPI interface {
	GetCredentialsByEmail(ctx context.Context, email string) (*Credentials, error)
	GetCallerByID(ctx context.Context, userID string) (*Caller, error)
}

type TokenGenerator interface {
	GenerateAccessToken(userID, email string) (string, error)
	GenerateRefreshToken(userID, email string) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

const (
	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"
)

// Claims represents JWT token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	now                func() time.Time
}

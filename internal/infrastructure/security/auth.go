// Package security verifies bearer tokens that identify the current user
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipebox/recipebox/internal/infrastructure/config"
)

var (
	ErrAuthDisabled = errors.New("token authentication is not configured")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims represents JWT claims structure. The subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
}

// AuthService issues and validates HMAC-signed access tokens
type AuthService struct {
	secret []byte
	issuer string
	logger *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(cfg config.AuthConfig, logger *zap.Logger) *AuthService {
	namedLogger := logger.Named("auth")
	if cfg.JWTSecret == "" {
		namedLogger.Warn("JWT secret not configured; every request is anonymous")
	}

	return &AuthService{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		logger: namedLogger,
	}
}

// Enabled reports whether tokens can be issued and verified
func (a *AuthService) Enabled() bool {
	return len(a.secret) > 0
}

// GenerateAccessToken issues a token for userID valid for ttl
func (a *AuthService) GenerateAccessToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	if !a.Enabled() {
		return "", ErrAuthDisabled
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			Issuer:    a.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies tokenString and returns the user it identifies
func (a *AuthService) ValidateToken(tokenString string) (uuid.UUID, error) {
	if !a.Enabled() {
		return uuid.Nil, ErrAuthDisabled
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}

	return userID, nil
}

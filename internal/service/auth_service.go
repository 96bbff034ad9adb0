package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/middleware"
	"github.com/arturoeanton/foxops-dashboard/internal/port"
)

// AuthService handles the token login flow.
type AuthService struct {
	factory  port.ClientFactory
	users    port.UserStore
	sessions *SessionRegistry
	jwtCfg   middleware.JWTConfig
}

// NewAuthService creates a new authentication service.
func NewAuthService(factory port.ClientFactory, users port.UserStore, sessions *SessionRegistry, jwtCfg middleware.JWTConfig) *AuthService {
	return &AuthService{
		factory:  factory,
		users:    users,
		sessions: sessions,
		jwtCfg:   jwtCfg,
	}
}

// Login verifies a foxops token, upserts its user and returns a session JWT.
func (s *AuthService) Login(ctx context.Context, token string) (string, *domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", nil, fmt.Errorf("%w: token is required", port.ErrInvalidInput)
	}

	if err := s.factory.ClientFor(token).TestAuth(ctx); err != nil {
		return "", nil, fmt.Errorf("verify token: %w", err)
	}

	user, err := s.users.UpsertUserByFingerprint(ctx, Fingerprint(token), token)
	if err != nil {
		return "", nil, fmt.Errorf("upsert user: %w", err)
	}

	jwt, err := middleware.GenerateJWT(user, s.jwtCfg)
	if err != nil {
		return "", nil, fmt.Errorf("generate jwt: %w", err)
	}

	if s.sessions != nil {
		s.sessions.Remember(user.ID, token)
	}

	slog.Info("user authenticated", "user_id", user.ID)
	return jwt, user, nil
}

// Fingerprint identifies a token without storing it in clear in indexes or logs.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Package auth verifies operator credentials and issues bearer tokens.
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"shop-inventory/internal/config"
	"shop-inventory/internal/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// TokenType is reported alongside every issued token.
const TokenType = "bearer"

// Authenticator defines the interface for credential checks and token handling.
type Authenticator interface {
	// Authenticate checks the credentials and returns a signed token.
	// Wrong credentials yield model.ErrInvalidCredentials.
	Authenticate(ctx context.Context, username, password string) (string, error)

	// Verify validates a token and returns its subject.
	// Invalid or expired tokens yield model.ErrUnauthorised.
	Verify(token string) (string, error)
}

// jwtAuthenticator checks a single configured operator account against a
// bcrypt hash and issues HS256 JWTs.
type jwtAuthenticator struct {
	username []byte
	hash     []byte
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

// NewAuthenticator creates a new authenticator from configuration. A
// configured password hash takes precedence over the plain password, which
// is hashed once here and never kept.
func NewAuthenticator(cfg config.AuthConfig, logger zerolog.Logger) (Authenticator, error) {
	logger = logger.With().Str("component", "auth").Logger()

	var hash []byte
	if cfg.PasswordHash != "" {
		hash = []byte(cfg.PasswordHash)
		if _, err := bcrypt.Cost(hash); err != nil {
			return nil, fmt.Errorf("invalid password hash: %w", err)
		}
	} else {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	logger.Info().
		Str("username", cfg.Username).
		Dur("token_ttl", cfg.TokenLifetime()).
		Msg("authenticator initialised")

	return &jwtAuthenticator{
		username: []byte(cfg.Username),
		hash:     hash,
		secret:   []byte(cfg.TokenSecret),
		ttl:      cfg.TokenLifetime(),
		now:      time.Now,
		logger:   logger,
	}, nil
}

// Authenticate checks the credentials and returns a signed token.
func (a *jwtAuthenticator) Authenticate(ctx context.Context, username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), a.username) == 1
	// The hash comparison runs even for an unknown user so both paths cost the same.
	passErr := bcrypt.CompareHashAndPassword(a.hash, []byte(password))
	if !userOK || passErr != nil {
		a.logger.Warn().Str("username", username).Msg("login rejected")
		return "", model.ErrInvalidCredentials
	}

	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		a.logger.Error().Err(err).Msg("failed to sign token")
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	a.logger.Info().Str("username", username).Msg("login succeeded")
	return token, nil
}

// Verify validates a token and returns its subject.
func (a *jwtAuthenticator) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", model.ErrUnauthorised.Wrap(err)
	}
	if !parsed.Valid || claims.Subject != string(a.username) {
		return "", model.ErrUnauthorised
	}
	return claims.Subject, nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"draftforge/internal/domain"
)

// JWKSVerifier implements TokenVerifier against a JWKS endpoint.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	cancel context.CancelFunc
	logger *slog.Logger
}

// NewJWKSVerifier creates a verifier that fetches public keys from the given
// JWKS endpoint. Keys are cached and refreshed by the keyfunc client.
func NewJWKSVerifier(jwksURL string, logger *slog.Logger) (TokenVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	ctx, cancel := context.WithCancel(context.Background())
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)

	return &JWKSVerifier{
		jwks:   jwks,
		cancel: cancel,
		logger: logger,
	}, nil
}

// VerifyToken validates a JWT and returns its subject claim.
func (v *JWKSVerifier) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, v.jwks.Keyfunc)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err)
		return "", domain.ErrUnauthorized
	}

	if !token.Valid {
		return "", domain.ErrUnauthorized
	}

	// Prevent algorithm confusion attacks - allow only RS256 or ES256
	switch token.Method.Alg() {
	case "RS256", "ES256":
	default:
		v.logger.Warn("token uses unexpected algorithm", "algorithm", token.Method.Alg())
		return "", domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", domain.ErrUnauthorized
	}

	return claims.Subject, nil
}

// Close stops JWKS background refresh.
func (v *JWKSVerifier) Close() error {
	v.cancel()
	return nil
}

package jwtinfra

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/barangaysm/portal-api/internal/config"
	"github.com/barangaysm/portal-api/internal/pkg/id"
)

// PurposeRegistration is the only purpose this service mints. The claim
// guards against token confusion if other token purposes are introduced.
const PurposeRegistration = "registration"

// Claims holds the registration credential payload. ID (jti) keys the
// liveness record in the ephemeral store.
type Claims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 registration credentials.
type Provider struct {
	secret []byte
	ttl    time.Duration
}

// NewProvider fails when the signing secret is absent. There is no mode that
// skips signature verification.
func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("signing secret is not configured")
	}
	return &Provider{secret: []byte(cfg.JWTSecret), ttl: cfg.CredentialTTL}, nil
}

// TTL returns the credential lifetime, which is also the liveness record TTL.
func (p *Provider) TTL() time.Duration { return p.ttl }

// Sign mints a credential bound to email with a fresh ULID as jti.
// It returns the compact token and the jti.
func (p *Provider) Sign(email string) (string, string, error) {
	now := time.Now()
	claims := Claims{
		Email:   email,
		Purpose: PurposeRegistration,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.New(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", "", err
	}
	return token, claims.ID, nil
}

// Verify checks signature and expiry and returns the claims. Purpose is the
// caller's concern; the middleware collapses a wrong purpose into the same
// unauthorized response as a bad signature.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

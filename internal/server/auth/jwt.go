// Package auth signs and verifies the HS256 access tokens issued at login.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskerid/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the claim set carried by an access token. Subject holds the user
// id and ID the per-token jti.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Signer struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

type SignerOption func(*Signer)

// WithClock replaces time.Now for both issuing and verification.
func WithClock(now func() time.Time) SignerOption {
	return func(s *Signer) { s.now = now }
}

func NewSigner(secret []byte, issuer, audience string, opts ...SignerOption) *Signer {
	s := &Signer{secret: secret, issuer: issuer, audience: audience, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Now is the signer's clock.
func (s *Signer) Now() time.Time {
	return s.now()
}

// Sign stamps issuer, audience and exp onto claims, plus iat when the caller
// left it unset, and returns the compact serialization.
func (s *Signer) Sign(claims Claims, expiresAt time.Time) (string, error) {
	claims.Issuer = s.issuer
	claims.Audience = jwt.ClaimStrings{s.audience}
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(s.now())
	}
	claims.ExpiresAt = jwt.NewNumericDate(expiresAt)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// Verify checks signature, algorithm, issuer, audience and expiry with no
// leeway.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

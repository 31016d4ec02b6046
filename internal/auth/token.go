// Package auth issues and validates the HS256 service tokens that guard the
// recognition API.
package auth

import (
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/xiltepin/InsuranceAIPOCs/internal/config"
	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
)

// Audience is the only audience accepted on service tokens.
const Audience = "ocr"

// Claims are the registered claims of a service token.
type Claims struct {
	jwt.RegisteredClaims
}

// Token is a signed service token.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issuer signs and verifies service tokens with a shared secret.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer from the auth settings.
func NewIssuer(cfg *config.AuthConfig) *Issuer {
	return &Issuer{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

// Issue mints a token for subject. A non-positive ttl uses the configured one.
func (i *Issuer) Issue(subject string, ttl time.Duration) (*Token, error) {
	if len(i.secret) == 0 {
		return nil, fmt.Errorf("%w: no signing secret configured", domain.ErrInvalidInput)
	}
	if subject == "" {
		return nil, fmt.Errorf("%w: subject is required", domain.ErrInvalidInput)
	}
	if ttl <= 0 {
		ttl = i.ttl
	}

	now := i.now()
	expiry := now.Add(ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{Audience},
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}
	return &Token{Value: signed, ExpiresAt: expiry}, nil
}

// Validate parses tokenString and checks signature, expiry, issuer and
// audience. Any failure wraps domain.ErrUnauthorized.
func (i *Issuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	aud, _ := claims.GetAudience()
	if !slices.Contains(aud, Audience) {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

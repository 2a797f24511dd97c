// Package auth issues and verifies session tokens and owns the cookie that
// carries them. It is the single place that knows the signing secret.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vaughan-dsouza/storekeeper/internal/common"
	"github.com/vaughan-dsouza/storekeeper/internal/models"
)

// Claims is the signed token payload. Subject holds the user id.
type Claims struct {
	StoreID string      `json:"storeId"`
	Role    models.Role `json:"role"`
	Email   string      `json:"email,omitempty"`
	Name    string      `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Session is the authenticated context resolved from a valid token.
type Session struct {
	UserID    string      `json:"id"`
	StoreID   string      `json:"storeId"`
	Role      models.Role `json:"role"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	ExpiresAt time.Time   `json:"-"`
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer fails when secret is empty so a misconfigured process dies at
// startup instead of on the first login.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("auth: session secret not configured")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: session ttl must be positive")
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock replaces the time source. Tests only.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token for u that expires one TTL from now.
func (i *Issuer) Issue(u models.PublicUser) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)

	claims := Claims{
		StoreID: u.StoreID,
		Role:    u.Role,
		Email:   u.Email,
		Name:    u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, exp, nil
}

// Verify checks signature, algorithm and expiry. Expired tokens yield
// common.ErrTokenExpired, everything else common.ErrInvalidToken.
func (i *Issuer) Verify(token string) (*Session, error) {
	if token == "" {
		return nil, common.ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if claims.Subject == "" || claims.StoreID == "" {
		return nil, common.ErrInvalidToken
	}

	return &Session{
		UserID:    claims.Subject,
		StoreID:   claims.StoreID,
		Role:      claims.Role,
		Email:     claims.Email,
		Name:      claims.Name,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

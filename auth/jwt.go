// Package auth issues and checks the bearer tokens that guard mutating
// routes. Tokens are HS256-signed JWTs carrying a username and an admin flag.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is wrapped by every token rejection.
var ErrUnauthorized = errors.New("auth: unauthorized")

// Claims are the application claims carried in a token.
type Claims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// JWTManager signs and validates tokens with a shared secret.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManager returns a manager for secret. A zero ttl issues tokens
// without an expiry.
func NewJWTManager(secret string, ttl time.Duration) (*JWTManager, error) {
	if secret == "" {
		return nil, errors.New("auth: jwt secret is required")
	}
	return &JWTManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// GenerateToken creates a signed token for username.
func (m *JWTManager) GenerateToken(username string, isAdmin bool) (string, error) {
	now := m.now()
	claims := &Claims{
		Username: username,
		IsAdmin:  isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses tokenString and returns its claims. Tokens signed
// with anything other than HMAC are rejected.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username == "" {
		return nil, fmt.Errorf("%w: invalid token claims", ErrUnauthorized)
	}
	return claims, nil
}

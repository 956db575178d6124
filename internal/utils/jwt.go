package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are embedded in every session token.
type Claims struct {
	Email string `json:"email"`
	ID    string `json:"id"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a new token for the given identity.
func (t *TokenIssuer) Issue(email, id, role string) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("JWT secret is not configured")
	}
	now := t.now()
	claims := &Claims{
		Email: email,
		ID:    id,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify validates signature, algorithm and expiry. Any failure wraps
// ErrInvalidToken.
func (t *TokenIssuer) Verify(tokenStr string) (*Claims, error) {
	if len(t.secret) == 0 {
		return nil, errors.New("JWT secret is not configured")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.ID == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

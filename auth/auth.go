// Package auth verifies HS256 bearer tokens issued by the wine frontend.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned for malformed or badly signed tokens.
	ErrInvalidToken = errors.New("invalid authentication credentials")
	// ErrExpiredToken is returned when the exp claim lies in the past.
	ErrExpiredToken = errors.New("token has expired")
	// ErrMissingToken is returned when no bearer token is present.
	ErrMissingToken = errors.New("not authenticated")
)

// Claims is the decoded token payload.
type Claims map[string]any

// UserID returns the numeric user id from the "user_id" or "sub" claim.
func (c Claims) UserID() (int64, bool) {
	for _, key := range []string{"user_id", "sub"} {
		switch v := c[key].(type) {
		case float64:
			return int64(v), true
		case string:
			var id int64
			if _, err := fmt.Sscan(v, &id); err == nil {
				return id, true
			}
		}
	}
	return 0, false
}

// Verifier validates tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier creates a Verifier for secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// Verify parses and validates token. The exp claim is checked when present.
func (v *Verifier) Verify(token string) (Claims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return Claims(claims), nil
}

// Sign issues an HS256 token for claims. It is used by the CLI and tests.
func (v *Verifier) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims)).SignedString(v.secret)
}

type claimsKey struct{}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// FromContext returns the claims stored by Middleware.
func FromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(Claims)
	return c, ok
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

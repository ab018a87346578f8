package auth

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Middleware rejects requests without a valid bearer token and stores the
// claims in the request context.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := BearerToken(r)
		if err == nil {
			var claims Claims
			claims, err = v.Verify(token)
			if err == nil {
				next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
				return
			}
		}
		unauthorized(w, err)
	})
}

func unauthorized(w http.ResponseWriter, err error) {
	detail := ErrInvalidToken.Error()
	switch {
	case errors.Is(err, ErrExpiredToken):
		detail = ErrExpiredToken.Error()
	case errors.Is(err, ErrMissingToken):
		detail = ErrMissingToken.Error()
	}
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"podcastify/shared/go/logging"
)

// TokenParser verifies a bearer token and returns the user id it carries.
type TokenParser interface {
	ParseToken(raw string) (int64, error)
}

type authError struct {
	OK           bool   `json:"ok"`
	ErrorMessage string `json:"errorMessage"`
}

// Authenticate rejects requests without a valid bearer token and stores the
// user id on the request context for downstream handlers.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := parseBearerToken(r.Header.Get("Authorization"))
			if raw == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			userID, err := tokens.ParseToken(raw)
			if err != nil {
				logging.WithContext(r.Context()).Debug().Err(err).Msg("rejected token")
				writeUnauthorized(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(logging.WithUserID(r.Context(), userID)))
		})
	}
}

func parseBearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(authError{ErrorMessage: message})
}

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"ledger/internal/log"
)

type subjectKey struct{}

// Subject returns the token subject stored by Middleware.
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}

// Middleware rejects requests without a valid bearer token.
func Middleware(m *TokenManager, logger *log.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentAuth)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("Authorization")
			if token == "" {
				logger.WarnContext(r.Context(), "Missing authorization token", "path", r.URL.Path)
				unauthorized(w, "Authorization token required")
				return
			}
			token = strings.TrimPrefix(token, "Bearer ")

			claims, err := m.Validate(token)
			if err != nil {
				logger.WarnContext(r.Context(), "Invalid token", log.FieldError, err)
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="ledger"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

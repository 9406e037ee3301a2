package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"ledger/internal/auth"
	"ledger/internal/log"
	"ledger/internal/middleware/security"
	"ledger/internal/middleware/trace"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter mounts the transaction routes behind bearer authentication and
// an unauthenticated /healthz.
func NewRouter(h *TransactionHandler, tokens *auth.TokenManager, db Pinger, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Discard()
	}

	r := mux.NewRouter()
	r.Use(trace.NewMiddleware(logger, security.ClientIP).Middleware)
	r.Use(log.Middleware(logger, trace.RequestID))
	r.Use(security.NewHeadersMiddleware(security.APIHeadersConfig()).Middleware)

	r.HandleFunc("/healthz", healthHandler(db)).Methods(http.MethodGet)

	protected := r.NewRoute().Subrouter()
	protected.Use(auth.Middleware(tokens, logger))
	h.RegisterRoutes(protected)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Not found", Status: http.StatusNotFound})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed", Status: http.StatusMethodNotAllowed})
	})
	return r
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"database": "ok"}
		status, code := "ok", http.StatusOK
		if db != nil {
			if err := db.Ping(ctx); err != nil {
				checks["database"] = "failed: " + err.Error()
				status, code = "unavailable", http.StatusServiceUnavailable
			}
		}
		writeJSON(w, code, map[string]any{"status": status, "checks": checks})
	}
}

package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP handlers
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("POST /collect", s.corsMiddleware(s.HandleCollect))
	s.mux.HandleFunc("GET /output/{place_id}", s.corsMiddleware(s.HandleExport))
	s.mux.HandleFunc("GET /predict/{place_id}", s.HandlePredict) // WebSocket; origin checked at upgrade
	s.mux.HandleFunc("GET /health", s.corsMiddleware(s.HandleHealth))
}

// corsMiddleware adds CORS headers to HTTP responses using the configured
// allowed origins. The same origin check guards WebSocket upgrades.
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// originAllowed checks an Origin header value against the configured
// allowlist. Entries match exactly or as a prefix up to a port separator,
// so "http://localhost" allows "http://localhost:8820".
func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if allowed == "*" || origin == allowed {
			return true
		}
		if strings.HasPrefix(origin, allowed+":") {
			return true
		}
	}
	return false
}

package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"reqdesk/internal/http/handlers"
	middlewarex "reqdesk/internal/http/middleware"
	requestsvc "reqdesk/internal/services/request"
)

// RouterDependencies holds all dependencies for the HTTP router
type RouterDependencies struct {
	RequestService  *requestsvc.Service
	Redis           *redis.Client
	RateLimitPerMin int
}

// NewRouter creates the HTTP router over the request service
func NewRouter(deps RouterDependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	// Health check (public)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middlewarex.RateLimit(deps.Redis, deps.RateLimitPerMin))

		r.Route("/request", func(r chi.Router) {
			r.Get("/", handlers.ListRequests(deps.RequestService))
			r.Put("/", handlers.CreateRequest(deps.RequestService))
			r.Patch("/", handlers.UpdateStatus(deps.RequestService))
			r.Delete("/", handlers.DeleteRequests(deps.RequestService))
		})
	})

	return r
}

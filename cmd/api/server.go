package main

import (
	"net/http"

	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/campuskit/timetable-api/pkg/middleware"
)

// buildRouter assembles the API routes with the middleware chain:
// recovery → logging → rate limit → CORS → mux.
func buildRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", deps.TimetableHandler.Health)
	mux.HandleFunc("/api/generate-events", deps.TimetableHandler.GenerateEvents)

	limiter := rate.NewLimiter(
		rate.Limit(deps.Config.Server.RateLimitPerSecond),
		deps.Config.Server.RateLimitBurst,
	)

	corsOpts := cors.New(cors.Options{
		AllowedOrigins: []string{deps.Config.Server.ClientOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})

	var h http.Handler = mux
	h = corsOpts.Handler(h)
	h = middleware.RateLimit(limiter)(h)
	h = middleware.RequestLogger(deps.Logger)(h)
	h = middleware.Recover(deps.Logger)(h)
	return h
}

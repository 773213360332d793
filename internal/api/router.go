package api

import (
	"net/http"
	"time"

	"github.com/Togather-Foundation/planner/internal/api/handlers"
	"github.com/Togather-Foundation/planner/internal/api/middleware"
	"github.com/Togather-Foundation/planner/internal/api/problem"
	"github.com/Togather-Foundation/planner/internal/config"
	"github.com/Togather-Foundation/planner/internal/domain/events"
	"github.com/Togather-Foundation/planner/internal/domain/users"
	"github.com/Togather-Foundation/planner/internal/metrics"
	"github.com/rs/zerolog"
)

// BuildInfo is reported by /version and /health.
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildDate string
}

// Deps is everything the router needs. Database may be nil in tests, in
// which case /readyz and /health report failure.
type Deps struct {
	Config   config.Config
	Logger   zerolog.Logger
	Users    *users.Service
	Events   *events.Service
	Database handlers.Database
	Build    BuildInfo
	// Web serves the browser UI; nil leaves non-API paths as 404.
	Web http.Handler
}

// Router is the planner's root handler.
type Router struct {
	handler http.Handler
	limiter *middleware.RateLimiter
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.handler.ServeHTTP(w, r)
}

// Close stops background work owned by the router.
func (rt *Router) Close() {
	rt.limiter.Stop()
}

func NewRouter(deps Deps) *Router {
	cfg := deps.Config
	env := cfg.Environment
	logger := deps.Logger

	loc, err := time.LoadLocation(cfg.Calendar.Timezone)
	if err != nil {
		loc = time.UTC
	}

	authHandler := handlers.NewAuthHandler(deps.Users, env)
	eventsHandler := handlers.NewEventsHandler(deps.Events, env)
	feedsHandler := handlers.NewFeedsHandler(deps.Events, events.FeedOptions{
		ProductID: cfg.Calendar.ProductID,
		Name:      "Togather Planner",
		Location:  loc,
	}, env)
	health := handlers.NewHealthChecker(deps.Database, deps.Build.Version, deps.Build.GitCommit)

	limiter := middleware.NewRateLimiter(cfg.RateLimit, env)
	public := func(h http.HandlerFunc) http.Handler {
		return middleware.WithRateLimitTierHandler(middleware.TierPublic)(limiter.Middleware(h))
	}
	login := func(h http.HandlerFunc) http.Handler {
		return middleware.WithRateLimitTierHandler(middleware.TierLogin)(limiter.Middleware(h))
	}
	requireAdmin := middleware.RequireAdmin(deps.Users, env)
	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.WithRateLimitTierHandler(middleware.TierAdmin)(limiter.Middleware(requireAdmin(h)))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", handlers.Healthz())
	mux.Handle("GET /readyz", health.Readyz())
	mux.Handle("GET /health", health.Health())
	mux.Handle("GET /version", VersionHandler(deps.Build.Version, deps.Build.GitCommit, deps.Build.BuildDate))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("GET /api/openapi.json", OpenAPIHandler())

	mux.Handle("GET /api/auth/status", public(authHandler.Status))
	mux.Handle("POST /api/auth/register", login(authHandler.Register))
	mux.Handle("POST /api/auth/login", login(authHandler.Login))
	mux.Handle("POST /api/auth/logout", public(authHandler.Logout))
	mux.Handle("GET /api/auth/me", admin(authHandler.Me))

	mux.Handle("GET /api/events", public(eventsHandler.List))
	mux.Handle("POST /api/events", admin(eventsHandler.Create))
	mux.Handle("GET /api/events.ics", public(feedsHandler.Calendar))
	mux.Handle("GET /api/events/{id}", public(eventsHandler.Get))
	mux.Handle("PUT /api/events/{id}", admin(eventsHandler.Update))
	mux.Handle("DELETE /api/events/{id}", admin(eventsHandler.Delete))
	mux.Handle("POST /api/events/{id}/volunteer", public(eventsHandler.AddVolunteer))
	mux.Handle("DELETE /api/events/{id}/volunteer", public(eventsHandler.RemoveVolunteer))

	mux.Handle("/api/", notFound(env))
	if deps.Web != nil {
		mux.Handle("/", deps.Web)
	}

	var handler http.Handler = mux
	handler = middleware.RequestSize(middleware.DefaultMaxBodySize, env)(handler)
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	handler = middleware.SecurityHeaders(env == "production")(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	handler = middleware.Tracing(handler)

	return &Router{handler: handler, limiter: limiter}
}

func notFound(env string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", nil, env,
			problem.WithDetail("no such endpoint"))
	})
}

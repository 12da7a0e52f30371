package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/example/gameplan-scheduler/internal/http/ratelimit"
	"github.com/example/gameplan-scheduler/internal/metrics"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig bundles the handlers and cross-cutting dependencies the
// router mounts.
type RouterConfig struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Friends       *FriendHandler
	Games         *GameHandler
	Schedules     *ScheduleHandler
	Events        *EventHandler
	Notifications *NotificationHandler
	Templates     *TemplateHandler

	Sessions SessionValidator
	Store    Pinger
	Logger   *slog.Logger

	// LoginRate limits unauthenticated account endpoints per client IP.
	// Zero means one request per second with a small burst.
	LoginRate  rate.Limit
	LoginBurst int
}

// NewRouter assembles the full HTTP surface.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)

	loginRate := cfg.LoginRate
	if loginRate == 0 {
		loginRate = rate.Every(time.Second)
	}
	loginBurst := cfg.LoginBurst
	if loginBurst == 0 {
		loginBurst = 5
	}
	limiter := ratelimit.NewIPRateLimiter(loginRate, loginBurst, 10*time.Minute)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", handleReadiness(cfg.Store))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware())
		r.Post("/register", cfg.Auth.Register)
		r.Post("/login", cfg.Auth.CreateSession)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireSession(cfg.Sessions, logger))

		r.Post("/logout", cfg.Auth.DeleteCurrentSession)

		r.Get("/me", cfg.Users.GetProfile)
		r.Put("/me", cfg.Users.UpdateProfile)

		r.Route("/friends", func(r chi.Router) {
			r.Get("/", cfg.Friends.List)
			r.Post("/", cfg.Friends.Add)
			r.Get("/search", cfg.Friends.Search)
			r.Delete("/{id}", cfg.Friends.Remove)
		})

		r.Route("/games", func(r chi.Router) {
			r.Get("/", cfg.Games.List)
			r.Post("/", cfg.Games.Create)
			r.Get("/{id}", cfg.Games.Get)
			r.Put("/{id}", cfg.Games.Update)
			r.Delete("/{id}", cfg.Games.Delete)
		})

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", cfg.Schedules.List)
			r.Post("/", cfg.Schedules.Create)
			r.Get("/{id}", cfg.Schedules.Get)
			r.Put("/{id}", cfg.Schedules.Update)
			r.Delete("/{id}", cfg.Schedules.Delete)
			r.Post("/{id}/respond", cfg.Schedules.Respond)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", cfg.Events.List)
			r.Post("/", cfg.Events.Create)
			r.Get("/{id}", cfg.Events.Get)
			r.Put("/{id}", cfg.Events.Update)
			r.Delete("/{id}", cfg.Events.Delete)
			r.Post("/{id}/share", cfg.Events.Share)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", cfg.Notifications.List)
			r.Post("/read", cfg.Notifications.MarkAllRead)
			r.Post("/{id}/read", cfg.Notifications.MarkRead)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", cfg.Templates.List)
			r.Post("/", cfg.Templates.Create)
			r.Get("/{id}", cfg.Templates.Get)
			r.Put("/{id}", cfg.Templates.Update)
			r.Delete("/{id}", cfg.Templates.Delete)
			r.Post("/{id}/generate", cfg.Templates.Generate)
			r.Get("/{id}/occurrences", cfg.Templates.Occurrences)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func handleReadiness(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

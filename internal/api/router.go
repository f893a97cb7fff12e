package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-admin/internal/catalog"
	"github.com/hackgods/clinic-admin/internal/store"
)

type RouterConfig struct {
	Store        store.Store
	Catalog      *catalog.Store
	Log          zerolog.Logger
	JWTSecret    string
	TokenTTL     time.Duration
	LoginLimiter *RateLimiter // nil disables login rate limiting
	PgPool       *pgxpool.Pool // nil when running on the memory store
	Redis        *redis.Client // nil when redis is not configured
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.NewDefault()
	}
	h := &handler{
		store:     cfg.Store,
		catalog:   cfg.Catalog,
		log:       cfg.Log,
		jwtSecret: cfg.JWTSecret,
		tokenTTL:  cfg.TokenTTL,
		now:       time.Now,
	}

	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Group(func(r chi.Router) {
		if cfg.LoginLimiter != nil {
			r.Use(RateLimitMiddleware(cfg.LoginLimiter))
		}
		r.Post("/login", h.login)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin(cfg.JWTSecret))

		r.Get("/doctors", h.listDoctors)
		r.Post("/doctors", h.createDoctor)
		r.Put("/doctors/{id}", h.updateDoctor)
		r.Delete("/doctors/{id}", h.deleteDoctor)

		r.Get("/appointments", h.listAppointments)
		r.Post("/appointments", h.createAppointment)
		r.Delete("/appointments/{id}", h.deleteAppointment)
	})

	return r
}

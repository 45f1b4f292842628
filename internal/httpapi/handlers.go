package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"userbase.dev/internal/auth"
	"userbase.dev/internal/obs"
)

// AccountService is the subset of auth.Service the HTTP layer drives.
type AccountService interface {
	Signup(ctx context.Context, in auth.SignupInput) (auth.AuthResult, error)
	Login(ctx context.Context, in auth.LoginInput) (auth.AuthResult, error)
	Authenticate(token string) (auth.Principal, error)
	Profile(ctx context.Context, userID string) (auth.User, error)
	ListUsers(ctx context.Context) ([]auth.User, error)
	UpdateRole(ctx context.Context, userID, rawRole string) (auth.Role, error)
	DeleteUser(ctx context.Context, userID string) error
}

type readinessChecker interface {
	Check(ctx context.Context) error
}

// ProbeFunc adapts a ping function (for example the store's) to a readiness check.
type ProbeFunc func(ctx context.Context) error

func (f ProbeFunc) Check(ctx context.Context) error {
	if f == nil {
		return nil
	}
	return f(ctx)
}

// Options tunes the HTTP surface. Zero values fall back to defaults.
type Options struct {
	Environment       string
	Version           string
	AllowedOrigins    []string
	RateLimitRPS      int
	RateLimitBurst    int
	AuthRatePerMinute int
	MaxBodyBytes      int64
	RequestTimeout    time.Duration
}

func (o Options) withDefaults() Options {
	if o.Environment == "" {
		o.Environment = "development"
	}
	if o.RateLimitRPS <= 0 {
		o.RateLimitRPS = 20
	}
	if o.RateLimitBurst <= 0 {
		o.RateLimitBurst = 40
	}
	if o.AuthRatePerMinute <= 0 {
		o.AuthRatePerMinute = 20
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 1 << 20
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
	return o
}

// API is the HTTP layer.
type API struct {
	svc        AccountService
	readyProbe readinessChecker
	opts       Options
	now        func() time.Time
}

func New(svc AccountService, rp readinessChecker, opts Options) *API {
	if rp == nil {
		rp = ProbeFunc(nil)
	}
	return &API{
		svc:        svc,
		readyProbe: rp,
		opts:       opts.withDefaults(),
		now:        time.Now,
	}
}

func (a *API) production() bool { return a.opts.Environment == "production" }
func (a *API) development() bool { return a.opts.Environment == "development" }

// Handler builds the router with the full middleware chain.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		Logging,
		Recoverer(a.development()),
		obs.Instrument,
		SecurityHeaders(a.production()),
		CORS(a.opts.AllowedOrigins),
		func(next http.Handler) http.Handler { return MaxBodyBytes(next, a.opts.MaxBodyBytes) },
		func(next http.Handler) http.Handler {
			return RateLimit(next, a.opts.RateLimitBurst, a.opts.RateLimitRPS)
		},
		Timeout(a.opts.RequestTimeout),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", a.Health)
	r.Get("/ready", a.Ready)
	r.Handle("/metrics", obs.Handler())

	authLimiter := httprate.Limit(a.opts.AuthRatePerMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, r, http.StatusTooManyRequests, "Too many authentication attempts, try again later")
		}),
	)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authLimiter)
			r.Post("/signup", a.Signup)
			r.Post("/login", a.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(a.Authenticate)
			r.Get("/profile", a.Profile)

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(auth.RoleAdmin))
				r.Get("/users", a.ListUsers)
				r.Put("/users/{id}", a.UpdateUserRole)
				r.Delete("/users/{id}", a.DeleteUser)
			})
		})
	})

	return r
}

// --- Handlers ---

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "OK",
		"timestamp":   a.now().UTC().Format(time.RFC3339),
		"environment": a.opts.Environment,
		"version":     a.opts.Version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		obs.SetReady(false)
		obs.Logger().Warn("readiness probe failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

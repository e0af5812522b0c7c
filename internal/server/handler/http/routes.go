package http

import (
	"net/http"

	"github.com/atinyakov/portfolio-api/internal/middleware"
	"github.com/atinyakov/portfolio-api/internal/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterOptions carries the transport settings of the router.
type RouterOptions struct {
	// BasePath prefixes every API route, e.g. "/portfolio-api".
	BasePath string
	// OpenSignup lets anyone sign up. Otherwise signup is admin only.
	OpenSignup bool
	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string
	// IsDevelopment relaxes the security headers.
	IsDevelopment bool
	// RateLimitLogin and RateLimitContact are per-IP limits such as "10-M".
	// Empty disables the limit.
	RateLimitLogin   string
	RateLimitContact string
}

// Handlers groups the route handlers.
type Handlers struct {
	Auth     *AuthHandler
	Profiles *ProfileHandler
	Resumes  *ResumeHandler
	Projects *ProjectHandler
	Contact  *ContactHandler
	Health   http.Handler
}

// NewRouter constructs the HTTP handler of the API.
//
// Middleware chain (applied in order):
//  1. RequestID, RealIP, Recoverer
//  2. PrometheusMiddleware: request duration per route
//  3. security headers and CORS
//  4. WithRequestLogging(logger): logs each request
//
// /healthz and /metrics are served outside BasePath. Under BasePath, bodies
// must be application/json, and mutations require a bearer token.
func NewRouter(h Handlers, guard *middleware.Guard, opts RouterOptions, logger *zap.Logger) (http.Handler, error) {
	loginLimit, err := middleware.NewIPRateLimiter(opts.RateLimitLogin)
	if err != nil {
		return nil, err
	}
	contactLimit, err := middleware.NewIPRateLimiter(opts.RateLimitContact)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.PrometheusMiddleware)
	r.Use(middleware.NewSecure(middleware.SecureOptions(opts.IsDevelopment)))
	r.Use(middleware.CORS(opts.CORSOrigins, nil, nil))
	r.Use(middleware.WithRequestLogging(logger))

	r.Handle("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	api := func(r chi.Router) {
		// Only allow request bodies with Content-Type: application/json
		r.Use(chiMiddleware.AllowContentType("application/json"))

		r.Route("/auth", func(r chi.Router) {
			if opts.OpenSignup {
				r.Post("/signup", h.Auth.Signup)
			} else {
				r.Post("/signup", guard.Admin(withoutIdentity(h.Auth.Signup)))
			}
			r.With(loginLimit).Post("/login", h.Auth.Login)
			r.Post("/logout", guard.Authenticated(h.Auth.Logout))
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Post("/", guard.Authenticated(h.Profiles.Create))
			r.Get("/{profileId}", h.Profiles.Get)
			r.Put("/{profileId}", guard.Authenticated(h.Profiles.Update))
			r.Delete("/{profileId}", guard.Admin(h.Profiles.Delete))

			r.Route("/{profileId}/resume", func(r chi.Router) {
				r.Get("/", h.Resumes.Get)
				r.Post("/", guard.Authenticated(h.Resumes.Create))
				r.Put("/", guard.Authenticated(h.Resumes.Update))
				r.Delete("/", guard.Authenticated(h.Resumes.Delete))
			})

			r.Route("/{profileId}/projects", func(r chi.Router) {
				r.Get("/", h.Projects.List)
				r.Post("/", guard.Authenticated(h.Projects.Create))
				r.Get("/{projectId}", h.Projects.Get)
				r.Put("/{projectId}", guard.Authenticated(h.Projects.Update))
				r.Delete("/{projectId}", guard.Authenticated(h.Projects.Delete))
			})
		})

		r.With(contactLimit).Post("/contact", h.Contact.Contact)
	}

	if opts.BasePath == "" || opts.BasePath == "/" {
		r.Group(api)
	} else {
		r.Route(opts.BasePath, api)
	}
	return r, nil
}

func withoutIdentity(next http.HandlerFunc) middleware.IdentityHandler {
	return func(w http.ResponseWriter, r *http.Request, _ models.Identity) {
		next(w, r)
	}
}

package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	RegisterForm(w http.ResponseWriter, r *http.Request)
	Register(w http.ResponseWriter, r *http.Request)
	Confirm(w http.ResponseWriter, r *http.Request)
	Resend(w http.ResponseWriter, r *http.Request)
	Unconfirmed(w http.ResponseWriter, r *http.Request)
	LoginForm(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type PageHandler interface {
	Index(w http.ResponseWriter, r *http.Request)
	Dashboard(w http.ResponseWriter, r *http.Request)
}

type Middleware = func(http.Handler) http.Handler

type Deps struct {
	Health  HealthHandler
	Auth    AuthHandler
	Pages   PageHandler
	Metrics http.Handler // optional

	Prefix    string // default /auth
	BodyLimit int64

	LoadUserMW         Middleware
	RequireLoginMW     Middleware
	RequireConfirmedMW Middleware
	RequireAdminMW     Middleware
	CSRFMW             Middleware

	// optional
	RegisterLimitMW Middleware
	LoginLimitMW    Middleware
	ResendLimitMW   Middleware
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.Pages == nil {
		return nil, fmt.Errorf("nil Pages handler")
	}
	if deps.LoadUserMW == nil || deps.RequireLoginMW == nil {
		return nil, fmt.Errorf("nil session middleware")
	}
	if deps.RequireConfirmedMW == nil || deps.RequireAdminMW == nil {
		return nil, fmt.Errorf("nil dashboard middleware")
	}
	if deps.CSRFMW == nil {
		return nil, fmt.Errorf("nil CSRF middleware")
	}

	prefix := strings.TrimRight(deps.Prefix, "/")
	if prefix == "" {
		prefix = "/auth"
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics)
	r.Use(middleware.AccessLog)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.SecurityHeaders)
		r.Use(middleware.BodyLimit(deps.BodyLimit))
		r.Use(deps.CSRFMW)
		r.Use(deps.LoadUserMW)

		r.Get("/", deps.Pages.Index)
		r.With(deps.RequireLoginMW, deps.RequireConfirmedMW, deps.RequireAdminMW).
			Get("/dashboard/", deps.Pages.Dashboard)

		r.Route(prefix, func(r chi.Router) {
			r.Get("/register", deps.Auth.RegisterForm)
			r.With(optional(deps.RegisterLimitMW)).Post("/register", deps.Auth.Register)
			r.Get("/login", deps.Auth.LoginForm)
			r.With(optional(deps.LoginLimitMW)).Post("/login", deps.Auth.Login)

			r.Group(func(r chi.Router) {
				r.Use(deps.RequireLoginMW)
				r.Get("/confirm/{token}", deps.Auth.Confirm)
				r.With(optional(deps.ResendLimitMW)).Get("/resend", deps.Auth.Resend)
				r.Get("/unconfirmed", deps.Auth.Unconfirmed)
				r.Get("/logout", deps.Auth.Logout)
			})
		})
	})

	return r, nil
}

func optional(mw Middleware) Middleware {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}

package http_handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/security"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/metrics"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/flash"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/forms"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/views"
)

// User-facing messages.
const (
	MsgConfirmationSent    = "A confirmation email has been sent via email."
	MsgAlreadyConfirmed    = "Account already confirmed."
	MsgConfirmed           = "You have confirmed your account. Thanks!"
	MsgConfirmInvalid      = "The confirmation link is invalid/expired."
	MsgConfirmationResent  = "A new confirmation email has been sent."
	MsgPleaseConfirm       = "Please confirm your account!"
	MsgBadCredentials      = "Please check your email and password"
	MsgLoggedIn            = "You have logged in successfully!"
	MsgLoggedOut           = "Successfully logged out"
	MsgEmailAlreadyInUse   = "email already registered"
	DashboardPath          = "/dashboard/"
	defaultLoginRedirectTo = "/"
)

type PageRenderer interface {
	Render(w http.ResponseWriter, status int, name string, p views.Page) error
}

type FlashStore interface {
	Add(w http.ResponseWriter, r *http.Request, category, text string) error
	Pop(w http.ResponseWriter, r *http.Request) []flash.Message
}

type LoginAuditor interface {
	LoginSuccess(ctx context.Context, userID, email, ip string)
	LoginFailed(ctx context.Context, email, ip, reason string)
	Logout(ctx context.Context, userID string)
}

type Config struct {
	Prefix        string
	SessionTTL    time.Duration
	SecureCookies bool
}

type AuthHandler struct {
	svc      *auth.Service
	pages    PageRenderer
	flashes  FlashStore
	audit    LoginAuditor
	writeErr middleware.WriteErrFunc
	cfg      Config
}

func NewAuthHandler(svc *auth.Service, pages PageRenderer, flashes FlashStore, audit LoginAuditor, writeErr middleware.WriteErrFunc, cfg Config) *AuthHandler {
	return &AuthHandler{
		svc:      svc,
		pages:    pages,
		flashes:  flashes,
		audit:    audit,
		writeErr: writeErr,
		cfg:      cfg,
	}
}

func (h *AuthHandler) loginPath() string       { return h.cfg.Prefix + "/login" }
func (h *AuthHandler) unconfirmedPath() string { return h.cfg.Prefix + "/unconfirmed" }

// ---- register ----

func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "auth/register", &forms.RegisterForm{Errors: forms.Errors{}})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	f, err := forms.ParseRegister(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if !f.Valid() {
		metrics.RegistrationsTotal.WithLabelValues("invalid_form").Inc()
		h.render(w, r, http.StatusOK, "auth/register", f)
		return
	}

	res, err := h.svc.Register(r.Context(), f.Email, f.Password)
	if err != nil {
		if domain.Is(err, "email_already_exists") {
			metrics.RegistrationsTotal.WithLabelValues("email_taken").Inc()
			f.Errors.Add("email", MsgEmailAlreadyInUse)
			h.render(w, r, http.StatusOK, "auth/register", f)
			return
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		h.writeErr(w, r, err)
		return
	}
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Bool("confirmation_sent", res.ConfirmationSent).
		Msg("user_registered")

	h.startSession(w, r, res.SessionToken)
	if res.ConfirmationSent {
		h.flash(w, r, flash.Success, MsgConfirmationSent)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// ---- confirmation ----

func (h *AuthHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())

	outcome, err := h.svc.Confirm(r.Context(), u, chi.URLParam(r, "token"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	switch outcome {
	case auth.ConfirmAlready:
		metrics.ConfirmationsTotal.WithLabelValues("already").Inc()
		h.flash(w, r, flash.Warning, MsgAlreadyConfirmed)
		http.Redirect(w, r, DashboardPath, http.StatusFound)
	case auth.ConfirmOK:
		metrics.ConfirmationsTotal.WithLabelValues("confirmed").Inc()
		h.flash(w, r, flash.Success, MsgConfirmed)
		http.Redirect(w, r, DashboardPath, http.StatusFound)
	default:
		metrics.ConfirmationsTotal.WithLabelValues("invalid").Inc()
		h.flash(w, r, flash.Warning, MsgConfirmInvalid)
		http.Redirect(w, r, h.unconfirmedPath(), http.StatusFound)
	}
}

func (h *AuthHandler) Resend(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())

	sent, err := h.svc.ResendConfirmation(r.Context(), u)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if !sent {
		http.Redirect(w, r, DashboardPath, http.StatusFound)
		return
	}
	h.flash(w, r, flash.Success, MsgConfirmationResent)
	http.Redirect(w, r, h.unconfirmedPath(), http.StatusFound)
}

func (h *AuthHandler) Unconfirmed(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())
	if u.EmailConfirmed {
		http.Redirect(w, r, DashboardPath, http.StatusFound)
		return
	}

	msgs := append(h.flashes.Pop(w, r), flash.Message{Category: flash.Warning, Text: MsgPleaseConfirm})
	h.renderPage(w, r, http.StatusOK, "auth/unconfirmed", views.Page{User: &u, Flashes: msgs})
}

// ---- login / logout ----

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	f := &forms.LoginForm{Next: r.URL.Query().Get("next"), Errors: forms.Errors{}}
	h.render(w, r, http.StatusOK, "auth/login", f)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	f, err := forms.ParseLogin(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if !f.Valid() {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_form").Inc()
		h.render(w, r, http.StatusOK, "auth/login", f)
		return
	}

	ip := middleware.ClientIP(r)
	res, err := h.svc.Login(r.Context(), f.Email, f.Password)
	if err != nil {
		if domain.Is(err, "invalid_credentials") {
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			h.audit.LoginFailed(r.Context(), f.Email, ip, "invalid_credentials")
			h.flash(w, r, flash.Danger, MsgBadCredentials)
			http.Redirect(w, r, h.loginPath(), http.StatusFound)
			return
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		h.writeErr(w, r, err)
		return
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	h.audit.LoginSuccess(r.Context(), res.User.ID, res.User.Email, ip)

	h.startSession(w, r, res.SessionToken)

	target, category := loginTarget(r, res.User, f.Next)
	h.flash(w, r, category, MsgLoggedIn)
	http.Redirect(w, r, target, http.StatusFound)
}

// startSession replaces any session the request arrived with.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, token string) {
	if old := middleware.SessionTokenFromContext(r.Context()); old != "" && old != token {
		if err := h.svc.Logout(r.Context(), old); err != nil {
			logger.WithCtx(r.Context()).Warn().Err(err).Msg("previous session delete failed")
		}
	}
	security.SetSessionCookie(w, token, h.cfg.SessionTTL, h.cfg.SecureCookies)
}

// loginTarget picks where a fresh login lands. Only admins may follow next.
func loginTarget(r *http.Request, u domain.User, next string) (string, string) {
	if next == "" {
		if u.IsAdmin {
			return DashboardPath, flash.Success
		}
		return defaultLoginRedirectTo, flash.AlertSuccess
	}
	if !u.IsAdmin {
		return security.SafeRedirect(r, defaultLoginRedirectTo), flash.AlertSuccess
	}
	return security.SafeRedirect(r, next), flash.Success
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())

	if err := h.svc.Logout(r.Context(), middleware.SessionTokenFromContext(r.Context())); err != nil {
		// The cookie is cleared anyway; the server-side entry expires on its own.
		logger.WithCtx(r.Context()).Warn().Err(err).Msg("session delete failed")
	}
	h.audit.Logout(r.Context(), u.ID)

	security.ClearSessionCookie(w, h.cfg.SecureCookies)
	h.flash(w, r, flash.Success, MsgLoggedOut)

	next := r.URL.Query().Get("next")
	if next == "" {
		http.Redirect(w, r, h.loginPath(), http.StatusFound)
		return
	}
	http.Redirect(w, r, security.SafeRedirect(r, h.loginPath()+"?next="+url.QueryEscape(next)), http.StatusFound)
}

// ---- helpers ----

func (h *AuthHandler) flash(w http.ResponseWriter, r *http.Request, category, text string) {
	if err := h.flashes.Add(w, r, category, text); err != nil {
		logger.WithCtx(r.Context()).Warn().Err(err).Msg("flash save failed")
	}
}

func (h *AuthHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, form any) {
	p := views.Page{Form: form, Flashes: h.flashes.Pop(w, r)}
	if u, ok := middleware.UserFromContext(r.Context()); ok {
		p.User = &u
	}
	h.renderPage(w, r, status, name, p)
}

func (h *AuthHandler) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, p views.Page) {
	if err := h.pages.Render(w, status, name, p); err != nil {
		h.writeErr(w, r, err)
	}
}

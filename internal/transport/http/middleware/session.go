package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/security"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/flash"
)

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// UserResolver maps a session token to its user.
type UserResolver interface {
	CurrentUser(ctx context.Context, sessionToken string) (domain.User, error)
}

// Flasher queues a message for the next rendered page.
type Flasher interface {
	Add(w http.ResponseWriter, r *http.Request, category, text string) error
}

const (
	MsgLoginRequired = "Please log in to access this page."
	MsgNoAccess      = "You do not have access to this page."
)

// LoadUser resolves the session cookie and puts the user into the request
// context. Unknown or expired sessions are cleared and the request continues
// anonymously.
func LoadUser(users UserResolver, secureCookies bool, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, err := security.ReadSessionToken(r)
			if err != nil || tok == "" {
				next.ServeHTTP(w, r)
				return
			}

			u, err := users.CurrentUser(r.Context(), tok)
			if err != nil {
				if domain.Is(err, "session_invalid") {
					security.ClearSessionCookie(w, secureCookies)
					next.ServeHTTP(w, r)
					return
				}
				writeErr(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u, tok)))
		})
	}
}

// RequireLogin redirects anonymous requests to the login page with the
// current path as next.
func RequireLogin(flasher Flasher, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}
			addFlash(flasher, w, r, flash.Warning, MsgLoginRequired)
			target := loginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
		})
	}
}

// RequireConfirmed sends users with an unconfirmed email to unconfirmedPath.
// Must run after RequireLogin.
func RequireConfirmed(unconfirmedPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, _ := UserFromContext(r.Context())
			if !u.EmailConfirmed {
				http.Redirect(w, r, unconfirmedPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin sends non-admins home. Must run after RequireLogin.
func RequireAdmin(flasher Flasher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, _ := UserFromContext(r.Context())
			if !u.IsAdmin {
				addFlash(flasher, w, r, flash.Danger, MsgNoAccess)
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func addFlash(f Flasher, w http.ResponseWriter, r *http.Request, category, text string) {
	if f == nil {
		return
	}
	if err := f.Add(w, r, category, text); err != nil {
		logger.WithCtx(r.Context()).Warn().Err(err).Msg("flash save failed")
	}
}

package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// CSRFProtection checks Origin (or Referer) on state-changing requests. The
// request's own host is always allowed; extra origins come from config.
func CSRFProtection(allowedOrigins []string, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	allowedHosts := make(map[string]struct{})
	for _, origin := range allowedOrigins {
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			allowedHosts[strings.ToLower(u.Host)] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			if origin == "" || origin == "null" {
				origin = r.Header.Get("Referer")
			}
			if origin == "" {
				writeErr(w, r, domain.ErrCSRFRejected("missing_origin"))
				return
			}

			u, err := url.Parse(origin)
			if err != nil || u.Host == "" {
				writeErr(w, r, domain.ErrCSRFRejected("invalid_origin"))
				return
			}

			host := strings.ToLower(u.Host)
			if host != strings.ToLower(r.Host) {
				if _, ok := allowedHosts[host]; !ok {
					writeErr(w, r, domain.ErrCSRFRejected("cross_origin"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

package security

import (
	"net/http"
	"net/url"
	"strings"
)

// IsSafeRedirect reports whether target, resolved against the request's own
// origin, is an http(s) URL on the same host.
func IsSafeRedirect(r *http.Request, target string) bool {
	if target == "" {
		return false
	}
	// browsers treat "\" like "/", so "/\evil.com" would leave the site
	if strings.ContainsRune(target, '\\') {
		return false
	}
	// "///host" is read by browsers as a scheme-relative URL
	if strings.HasPrefix(target, "///") {
		return false
	}
	for _, c := range target {
		if c < 0x20 || c == 0x7f {
			return false
		}
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	base := &url.URL{Scheme: scheme, Host: r.Host, Path: "/"}

	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	resolved := base.ResolveReference(u)

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return false
	}
	return strings.EqualFold(resolved.Host, r.Host)
}

// SafeRedirect returns target if it is safe, else the Referer if that is
// safe, else "/".
func SafeRedirect(r *http.Request, target string) string {
	if IsSafeRedirect(r, target) {
		return target
	}
	if ref := r.Referer(); IsSafeRedirect(r, ref) {
		return ref
	}
	return "/"
}

package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func findCookie(t *testing.T, rr *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	res := rr.Result()
	defer res.Body.Close()
	for _, ck := range res.Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	t.Fatalf("expected %s cookie", name)
	return nil
}

func TestSetSessionCookie_Secure_UsesHostPrefix(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	SetSessionCookie(rr, "tok123", 10*time.Minute, true)

	c := findCookie(t, rr, "__Host-session")
	if c.Value != "tok123" {
		t.Fatalf("expected value tok123, got %q", c.Value)
	}
	if c.Path != "/" {
		t.Fatalf("expected path /, got %q", c.Path)
	}
	if !c.HttpOnly {
		t.Fatalf("expected HttpOnly=true")
	}
	if !c.Secure {
		t.Fatalf("expected Secure=true")
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("expected SameSite=Lax, got %v", c.SameSite)
	}
	if c.MaxAge != 600 {
		t.Fatalf("expected MaxAge=600, got %d", c.MaxAge)
	}
}

func TestSetSessionCookie_Insecure_PlainName(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	SetSessionCookie(rr, "tok", time.Minute, false)

	c := findCookie(t, rr, SessionCookieName)
	if c.Secure {
		t.Fatalf("expected Secure=false")
	}
}

func TestClearSessionCookie_ClearsCookie(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	ClearSessionCookie(rr, false)

	c := findCookie(t, rr, SessionCookieName)
	if c.Value != "" {
		t.Fatalf("expected empty value, got %q", c.Value)
	}
	if c.MaxAge != -1 {
		t.Fatalf("expected MaxAge=-1, got %d", c.MaxAge)
	}
}

func TestReadSessionToken(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "http://example.com/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "plain"})
	v, err := ReadSessionToken(req)
	if err != nil || v != "plain" {
		t.Fatalf("expected plain, got %q %v", v, err)
	}

	req = httptest.NewRequest("GET", "http://example.com/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "plain"})
	req.AddCookie(&http.Cookie{Name: "__Host-session", Value: "secure"})
	v, err = ReadSessionToken(req)
	if err != nil || v != "secure" {
		t.Fatalf("expected secure cookie preferred, got %q %v", v, err)
	}
}

func TestReadSessionToken_Missing_ReturnsError(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "http://example.com/", nil)

	if _, err := ReadSessionToken(req); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

package flash

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func cookieFrom(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	var last *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == CookieName {
			last = c
		}
	}
	require.NotNil(t, last, "flash cookie not set")
	return last
}

func TestAddThenPop(t *testing.T) {
	s := NewStore(testSecret, false)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, s.Add(rr, req, Success, "one"))
	require.NoError(t, s.Add(rr, req, Warning, "two"))
	c := cookieFrom(t, rr)
	assert.True(t, c.HttpOnly)

	rr2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(c)
	got := s.Pop(rr2, req2)
	assert.Equal(t, []Message{{Success, "one"}, {Warning, "two"}}, got)

	// consumed
	req3 := httptest.NewRequest(http.MethodGet, "/", nil)
	req3.AddCookie(cookieFrom(t, rr2))
	assert.Empty(t, s.Pop(httptest.NewRecorder(), req3))
}

func TestPop_NoCookie(t *testing.T) {
	s := NewStore(testSecret, false)
	assert.Nil(t, s.Pop(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestPop_ForeignSignature(t *testing.T) {
	other := NewStore([]byte("ffffffffffffffffffffffffffffffff"), false)
	rr := httptest.NewRecorder()
	require.NoError(t, other.Add(rr, httptest.NewRequest(http.MethodGet, "/", nil), Danger, "x"))

	s := NewStore(testSecret, false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookieFrom(t, rr))
	assert.Nil(t, s.Pop(httptest.NewRecorder(), req))

	// Add recovers from the bad cookie.
	rr2 := httptest.NewRecorder()
	require.NoError(t, s.Add(rr2, req, Success, "ok"))
}

func TestPop_GarbageCookieIsExpired(t *testing.T) {
	s := NewStore(testSecret, true)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-signed-value"})

	rr := httptest.NewRecorder()
	assert.Nil(t, s.Pop(rr, req))

	c := cookieFrom(t, rr)
	assert.Less(t, c.MaxAge, 0)
	assert.Empty(t, c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.Secure)
}

func TestPop_NoCookieSetsNothing(t *testing.T) {
	s := NewStore(testSecret, false)
	rr := httptest.NewRecorder()
	s.Pop(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rr.Result().Cookies())
}

func TestMessage_AlertClass(t *testing.T) {
	assert.Equal(t, "alert-success", Message{Category: Success}.AlertClass())
	assert.Equal(t, "alert-danger", Message{Category: Danger}.AlertClass())
	assert.Equal(t, "alert-success", Message{Category: AlertSuccess}.AlertClass())
}

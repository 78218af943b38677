package flash

import (
	"encoding/gob"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
)

const (
	CookieName = "flash"
	flashKey   = "_flashes"
)

// Categories understood by the templates.
const (
	Success      = "success"
	Warning      = "warning"
	Danger       = "danger"
	AlertSuccess = "alert-success"
)

type Message struct {
	Category string
	Text     string
}

// AlertClass is the CSS class for the message; categories may already carry
// the "alert-" prefix.
func (m Message) AlertClass() string {
	if strings.HasPrefix(m.Category, "alert-") {
		return m.Category
	}
	return "alert-" + m.Category
}

func init() {
	gob.Register(Message{})
}

// Store keeps pending flash messages in a signed cookie.
type Store struct {
	store *sessions.CookieStore
}

func NewStore(secret []byte, secure bool) *Store {
	cs := sessions.NewCookieStore(secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{store: cs}
}

// Add queues a message for the next rendered page.
func (s *Store) Add(w http.ResponseWriter, r *http.Request, category, text string) error {
	sess, err := s.store.Get(r, CookieName)
	if err != nil {
		// A cookie signed with an old key yields a fresh session plus an error.
		sess, _ = s.store.New(r, CookieName)
	}
	sess.AddFlash(Message{Category: category, Text: text}, flashKey)
	return sess.Save(r, w)
}

// Pop returns and clears queued messages.
func (s *Store) Pop(w http.ResponseWriter, r *http.Request) []Message {
	sess, err := s.store.Get(r, CookieName)
	if err != nil {
		// unreadable cookie: drop it so it is not decoded again
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.store.Options.Secure,
			SameSite: http.SameSiteLaxMode,
		})
		return nil
	}
	raw := sess.Flashes(flashKey)
	if len(raw) == 0 {
		return nil
	}
	out := make([]Message, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(Message); ok {
			out = append(out, m)
		}
	}
	_ = sess.Save(r, w)
	return out
}

package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/flash"
)

//go:embed templates
var templatesFS embed.FS

const layoutFile = "templates/layout.html"

// Page is the data every template receives.
type Page struct {
	Site    string
	Prefix  string
	User    *domain.User
	Flashes []flash.Message
	Form    any

	// error page
	Status     int
	StatusText string
	Message    string
	RequestID  string
}

type Renderer struct {
	pages  map[string]*template.Template
	site   string
	prefix string
}

func New(site, prefix string) (*Renderer, error) {
	return newRenderer(templatesFS, site, prefix)
}

func newRenderer(fsys fs.FS, site, prefix string) (*Renderer, error) {
	layout, err := template.ParseFS(fsys, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := map[string]*template.Template{}
	err = fs.WalkDir(fsys, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path == layoutFile || !strings.HasSuffix(path, ".html") {
			return nil
		}
		t, err := layout.Clone()
		if err != nil {
			return err
		}
		if _, err := t.ParseFS(fsys, path); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".html")
		pages[name] = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Renderer{pages: pages, site: site, prefix: prefix}, nil
}

// Render executes the named page into a buffer and writes it with status.
func (v *Renderer) Render(w http.ResponseWriter, status int, name string, p Page) error {
	t, ok := v.pages[name]
	if !ok {
		return domain.ErrRenderFailed(fmt.Errorf("unknown page %q", name))
	}
	p.Site = v.site
	p.Prefix = v.prefix

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		return domain.ErrRenderFailed(err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

func (v *Renderer) Has(name string) bool {
	_, ok := v.pages[name]
	return ok
}

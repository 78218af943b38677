package email

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
)

//go:embed templates
var templatesFS embed.FS

const defaultSite = "Account Service"

// MarkdownRenderer renders `<name>.md` templates. The executed Markdown is the
// text part and goldmark's output is the HTML part.
type MarkdownRenderer struct {
	tpl  *template.Template
	md   goldmark.Markdown
	site string
}

func NewMarkdownRenderer(site string) (*MarkdownRenderer, error) {
	return newMarkdownRenderer(templatesFS, site)
}

func newMarkdownRenderer(fsys fs.FS, site string) (*MarkdownRenderer, error) {
	if strings.TrimSpace(site) == "" {
		site = defaultSite
	}

	root := template.New("").Option("missingkey=zero")
	err := fs.WalkDir(fsys, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		b, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".md")
		_, err = root.New(name).Parse(string(b))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load email templates: %w", err)
	}

	return &MarkdownRenderer{tpl: root, md: goldmark.New(), site: site}, nil
}

func (r *MarkdownRenderer) Render(name string, data map[string]string) (string, string, error) {
	t := r.tpl.Lookup(name)
	if t == nil {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}

	ctx := make(map[string]string, len(data)+1)
	ctx["site"] = r.site
	for k, v := range data {
		ctx[k] = v
	}

	var text bytes.Buffer
	if err := t.Execute(&text, ctx); err != nil {
		return "", "", err
	}

	var html bytes.Buffer
	if err := r.md.Convert(text.Bytes(), &html); err != nil {
		return "", "", err
	}
	return text.String(), html.String(), nil
}

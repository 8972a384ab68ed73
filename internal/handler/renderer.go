package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates returns the embedded template tree rooted at templates/.
func Templates() fs.FS {
	sub, _ := fs.Sub(templateFS, "templates")
	return sub
}

// Static returns the embedded static assets rooted at static/.
func Static() fs.FS {
	sub, _ := fs.Sub(staticFS, "static")
	return sub
}

// Renderer holds one template set per page. Each set is a clone of the
// layout plus the shared partials, so pages can define the same blocks
// without clashing.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewRenderer parses layout.html, partials/*.html and every page under
// fsys. Pages are keyed by their path without extension, e.g.
// "storefront/seller".
func NewRenderer(fsys fs.FS, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	base, err := template.New("base").Funcs(TemplateFuncs()).ParseFS(fsys, "layout.html", "partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	templates := make(map[string]*template.Template)
	for _, dir := range []string{".", "storefront", "admin"} {
		pages, err := fs.Glob(fsys, path.Join(dir, "*.html"))
		if err != nil {
			return nil, fmt.Errorf("failed to glob %s: %w", dir, err)
		}

		for _, page := range pages {
			if page == "layout.html" {
				continue
			}

			pageTmpl, err := base.Clone()
			if err != nil {
				return nil, fmt.Errorf("failed to clone template for %s: %w", page, err)
			}
			if pageTmpl, err = pageTmpl.ParseFS(fsys, page); err != nil {
				return nil, fmt.Errorf("failed to parse page %s: %w", page, err)
			}

			templates[strings.TrimSuffix(page, path.Ext(page))] = pageTmpl
		}
	}

	return &Renderer{templates: templates, logger: logger}, nil
}

// Has reports whether a page named name was parsed.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Render executes block of page name into w. An empty block renders the
// whole page through the layout.
func (r *Renderer) Render(w io.Writer, name, block string, data any) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	if block == "" {
		block = "base"
	}
	return tmpl.ExecuteTemplate(w, block, data)
}

// RenderHTTP renders page name with status 200.
func (r *Renderer) RenderHTTP(w http.ResponseWriter, name string, data any) {
	r.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus renders page name with the given status. The page is
// rendered into a buffer first so a template error still yields a clean 500.
func (r *Renderer) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	r.write(w, status, name, "", data)
}

// RenderPartial renders a single block of page name, for fragment updates.
func (r *Renderer) RenderPartial(w http.ResponseWriter, name, block string, data any) {
	r.write(w, http.StatusOK, name, block, data)
}

func (r *Renderer) write(w http.ResponseWriter, status int, name, block string, data any) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, block, data); err != nil {
		r.logger.Error("render failed", "template", name, "block", block, "error", err)
		http.Error(w, "Falha ao renderizar a página", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

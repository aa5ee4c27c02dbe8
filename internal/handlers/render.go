package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"machoda.com/macho-web/internal/i18n"
	"machoda.com/macho-web/internal/observability"
	"machoda.com/macho-web/internal/richtext"
)

//go:embed templates
var embeddedTemplates embed.FS

//go:embed static
var embeddedStatic embed.FS

// StaticFS returns the embedded static assets rooted at static/.
func StaticFS() fs.FS {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Views renders pages: each page under pages/ is parsed together with layouts/ and
// partials/ and executed through the "base" template.
type Views struct {
	fsys   fs.FS
	reload bool
	funcs  template.FuncMap

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// NewViews parses the templates. With dir set, templates are read from disk and,
// when reload is true, reparsed on every render.
func NewViews(bundle *i18n.Bundle, rich *richtext.Renderer, dir string, reload bool) (*Views, error) {
	var fsys fs.FS
	if dir != "" {
		fsys = os.DirFS(dir)
	} else {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}
	v := &Views{fsys: fsys, reload: reload && dir != "", funcs: templateFuncs(bundle, rich)}
	pages, err := v.parse()
	if err != nil {
		return nil, err
	}
	v.pages = pages
	return v, nil
}

func templateFuncs(bundle *i18n.Bundle, rich *richtext.Renderer) template.FuncMap {
	return template.FuncMap{
		"t":      bundle.T,
		"tf":     bundle.Tf,
		"inline": rich.Inline,
		"year":   func() int { return time.Now().Year() },
		"percent": func(f float64) string {
			return fmt.Sprintf("%.0f%%", f*100)
		},
		"add": func(a, b int) int { return a + b },
	}
}

func (v *Views) parse() (map[string]*template.Template, error) {
	shared, err := globTemplates(v.fsys, "layouts", "partials")
	if err != nil {
		return nil, err
	}
	pageFiles, err := fs.Glob(v.fsys, "pages/*.tmpl")
	if err != nil {
		return nil, err
	}
	if len(pageFiles) == 0 {
		return nil, fmt.Errorf("no page templates found")
	}
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, p := range pageFiles {
		name := strings.TrimSuffix(path.Base(p), ".tmpl")
		files := append(append([]string{}, shared...), p)
		t, err := template.New(name).Funcs(v.funcs).ParseFS(v.fsys, files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		pages[name] = t
	}
	return pages, nil
}

func globTemplates(fsys fs.FS, dirs ...string) ([]string, error) {
	var out []string
	for _, d := range dirs {
		matches, err := fs.Glob(fsys, d+"/*.tmpl")
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}
	return out, nil
}

func (v *Views) lookup(page string) (*template.Template, error) {
	if v.reload {
		pages, err := v.parse()
		if err != nil {
			return nil, err
		}
		v.mu.Lock()
		v.pages = pages
		v.mu.Unlock()
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	t, ok := v.pages[page]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", page)
	}
	return t, nil
}

// Render executes entry ("base" for full pages, a fragment name for htmx swaps) of
// page into a buffer and writes it with status.
func (v *Views) Render(w http.ResponseWriter, r *http.Request, status int, page, entry string, data any) {
	logger := observability.FromContext(r.Context())
	t, err := v.lookup(page)
	if err != nil {
		logger.Error("template lookup failed", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, entry, data); err != nil {
		logger.Error("template render failed", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

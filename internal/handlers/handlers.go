// Package handlers serves the site pages and JSON endpoints.
package handlers

import (
	"net/http"
	"net/url"

	"machoda.com/macho-web/internal/i18n"
	"machoda.com/macho-web/internal/menu"
	"machoda.com/macho-web/internal/middleware"
	"machoda.com/macho-web/internal/nav"
	"machoda.com/macho-web/internal/richtext"
)

// Handlers holds the dependencies shared by page and API handlers.
type Handlers struct {
	views  *Views
	table  *menu.Table
	bundle *i18n.Bundle
	rich   *richtext.Renderer
}

// New wires the handlers.
func New(views *Views, table *menu.Table, bundle *i18n.Bundle, rich *richtext.Renderer) *Handlers {
	return &Handlers{views: views, table: table, bundle: bundle, rich: rich}
}

// Page is the data every template receives.
type Page struct {
	Lang      string
	TitleKey  string
	Path      string
	Nav       []nav.RenderedItem
	Crumbs    []nav.Crumb
	Flash     []string
	LangLinks []LangLink
	Content   any
}

// LangLink switches the UI language while staying on the current page.
type LangLink struct {
	Lang   string
	Href   string
	Active bool
}

func (h *Handlers) page(r *http.Request, titleKey string, content any) Page {
	lang := middleware.Lang(r, h.bundle.Fallback())
	p := Page{
		Lang:     lang,
		TitleKey: titleKey,
		Path:     r.URL.Path,
		Nav:      nav.Build(r.URL.Path),
		Crumbs:   nav.Breadcrumbs(r.URL.Path),
		Content:  content,
	}
	for _, key := range middleware.GetSession(r).PopFlash() {
		p.Flash = append(p.Flash, h.bundle.T(lang, key))
	}
	for _, l := range h.bundle.Supported() {
		q := cloneQuery(r.URL.Query())
		q.Set("hl", l)
		p.LangLinks = append(p.LangLinks, LangLink{Lang: l, Href: r.URL.Path + "?" + q.Encode(), Active: l == lang})
	}
	return p
}

// renderPage writes the full layout, or only the page's "content" block for htmx
// requests.
func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data Page) {
	entry := "base"
	if middleware.IsHTMX(r.Context()) {
		entry = "content"
	}
	h.views.Render(w, r, status, name, entry, data)
}

// Home renders the landing page.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, "home", h.page(r, "site.tagline", nil))
}

// NotFound renders the 404 page.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusNotFound, "notfound", h.page(r, "error.not_found", nil))
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func cloneQuery(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}

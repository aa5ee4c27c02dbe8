package middleware

import (
	"context"
	"net/http"

	"machoda.com/macho-web/internal/i18n"
)

const (
	localeParam  = "hl"
	localeCookie = "hl"
)

// Locale picks the UI language: ?hl= first, then the session, the hl cookie and
// finally Accept-Language. Explicit choices are remembered in the session and cookie.
func Locale(bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := GetSession(r)
			lang := ""
			if raw := r.URL.Query().Get(localeParam); raw != "" {
				if l, ok := bundle.Normalize(raw); ok {
					lang = l
					http.SetCookie(w, &http.Cookie{Name: localeCookie, Value: l, Path: "/", SameSite: http.SameSiteLaxMode})
				}
			}
			if lang == "" && bundle.IsSupported(s.Locale) {
				lang = s.Locale
			}
			if lang == "" {
				if c, err := r.Cookie(localeCookie); err == nil {
					lang, _ = bundle.Normalize(c.Value)
				}
			}
			if lang == "" {
				lang = bundle.Resolve(r.Header.Get("Accept-Language"))
			}
			if s.Locale != lang {
				s.Locale = lang
				s.MarkDirty()
			}

			w.Header().Set("Content-Language", lang)
			w.Header().Add("Vary", "Accept-Language")
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyLang, lang)))
		})
	}
}

// Lang returns the language chosen by Locale, or fallback when the middleware did not run.
func Lang(r *http.Request, fallback string) string {
	if v, ok := r.Context().Value(ctxKeyLang).(string); ok && v != "" {
		return v
	}
	return fallback
}

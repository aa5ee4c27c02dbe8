// Package middleware holds the HTTP middleware of the web server: session and flash,
// locale negotiation, canonical host handling, htmx detection and static assets.
package middleware

import "context"

type ctxKey int

const (
	ctxKeyHTMX ctxKey = iota
	ctxKeySession
	ctxKeyLang
)

// WithHTMX marks the context as belonging to an htmx request.
func WithHTMX(ctx context.Context, is bool) context.Context {
	return context.WithValue(ctx, ctxKeyHTMX, is)
}

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyHTMX).(bool)
	return v
}

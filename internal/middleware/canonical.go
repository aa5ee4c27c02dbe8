package middleware

import (
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/idna"
)

// CanonicalOptions configures Canonical.
type CanonicalOptions struct {
	// Host is the canonical host name, e.g. www.machoda.com.
	Host string
	// LocalSuffixes are host suffixes (previews, internal names) that are served as is.
	LocalSuffixes []string
	// StripParams are query keys removed on the canonical host in addition to utm_*.
	StripParams []string
	// ExemptPrefixes are path prefixes left untouched.
	ExemptPrefixes []string
}

// placeholder values of q left behind by search-box structured data.
var placeholderQueries = map[string]struct{}{
	"":                     {},
	"search_term_string":   {},
	"{search_term_string}": {},
}

// Canonical redirects page requests for foreign hosts to https://Host with a 308,
// keeping path and query. On the canonical host it drops tracking parameters and
// placeholder searches with a 308 to the cleaned URL. Local hosts pass through.
func Canonical(opts CanonicalOptions) func(http.Handler) http.Handler {
	canonical := normalizeHost(opts.Host)
	strip := map[string]struct{}{}
	for _, k := range opts.StripParams {
		if k = strings.TrimSpace(k); k != "" {
			strip[k] = struct{}{}
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if canonical == "" || exempt(r.URL.Path, opts.ExemptPrefixes) {
				next.ServeHTTP(w, r)
				return
			}
			host := normalizeHost(r.Host)
			if host != canonical {
				if isLocalHost(host, opts.LocalSuffixes) {
					next.ServeHTTP(w, r)
					return
				}
				target := url.URL{Scheme: "https", Host: canonical, Path: r.URL.Path, RawQuery: r.URL.RawQuery}
				http.Redirect(w, r, target.String(), http.StatusPermanentRedirect)
				return
			}

			if cleaned, changed := cleanQuery(r.URL.Query(), strip); changed {
				target := url.URL{Path: r.URL.Path, RawQuery: cleaned.Encode()}
				http.Redirect(w, r, target.String(), http.StatusPermanentRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func cleanQuery(q url.Values, strip map[string]struct{}) (url.Values, bool) {
	changed := false
	for key, values := range q {
		if key == "q" {
			v := ""
			if len(values) > 0 {
				v = strings.TrimSpace(values[0])
			}
			if _, ok := placeholderQueries[v]; ok {
				q.Del(key)
				changed = true
			}
			continue
		}
		if _, ok := strip[key]; ok || strings.HasPrefix(key, "utm_") {
			q.Del(key)
			changed = true
		}
	}
	return q, changed
}

// normalizeHost lowercases, drops the port and converts IDNs to their ASCII form.
func normalizeHost(hostport string) string {
	host := strings.TrimSpace(hostport)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" {
		return ""
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return host
}

func isLocalHost(host string, suffixes []string) bool {
	if host == "" || host == "localhost" || host == "::1" || strings.HasPrefix(host, "127.") {
		return true
	}
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(host, s) {
			return true
		}
	}
	return false
}

// exempt reports whether p is under a prefix or names a file (a dot in the last segment).
func exempt(p string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return strings.Contains(path.Base(p), ".")
}

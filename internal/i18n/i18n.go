// Package i18n serves the UI strings in the supported languages.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var embedded embed.FS

// Bundle holds the dictionaries of every supported language.
type Bundle struct {
	dict      map[string]map[string]string
	fallback  string
	supported []string
	matcher   language.Matcher
}

// Default loads the bundled locale files.
func Default(fallback string, supported []string) (*Bundle, error) {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, err
	}
	return Load(sub, fallback, supported)
}

// Load reads <lang>.json for every supported language from fsys. Only the fallback
// file is mandatory; the fallback is always supported.
func Load(fsys fs.FS, fallback string, supported []string) (*Bundle, error) {
	if fallback == "" {
		return nil, fmt.Errorf("i18n: fallback language is required")
	}
	langs := []string{fallback}
	for _, l := range supported {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" && l != fallback {
			langs = append(langs, l)
		}
	}

	b := &Bundle{dict: map[string]map[string]string{}, fallback: fallback}
	tags := make([]language.Tag, 0, len(langs))
	for _, l := range langs {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("i18n: language %q: %w", l, err)
		}
		raw, err := fs.ReadFile(fsys, path.Join(".", l+".json"))
		if err != nil {
			if l == fallback {
				return nil, fmt.Errorf("i18n: load fallback %s: %w", l, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("i18n: decode %s: %w", l, err)
		}
		b.dict[l] = m
		b.supported = append(b.supported, l)
		tags = append(tags, tag)
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

// Supported lists the loaded languages, fallback first.
func (b *Bundle) Supported() []string {
	out := make([]string, len(b.supported))
	copy(out, b.supported)
	return out
}

// Fallback returns the default language.
func (b *Bundle) Fallback() string { return b.fallback }

// IsSupported reports whether lang has a loaded dictionary.
func (b *Bundle) IsSupported(lang string) bool {
	_, ok := b.dict[lang]
	return ok
}

// T translates key, falling back to the default language and then to the key itself.
func (b *Bundle) T(lang, key string) string {
	if v, ok := b.dict[lang][key]; ok {
		return v
	}
	if v, ok := b.dict[b.fallback][key]; ok {
		return v
	}
	return key
}

// Tf translates key and formats it with args.
func (b *Bundle) Tf(lang, key string, args ...any) string {
	return fmt.Sprintf(b.T(lang, key), args...)
}

// Resolve picks the best supported language for an Accept-Language header value.
func (b *Bundle) Resolve(acceptLanguage string) string {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(prefs...)
	if conf == language.No {
		return b.fallback
	}
	return b.supported[idx]
}

// Normalize maps a user-supplied language code to a supported language. ok is false
// when nothing matches.
func (b *Bundle) Normalize(raw string) (lang string, ok bool) {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	if b.IsSupported(base.String()) {
		return base.String(), true
	}
	return "", false
}

// Package richtext renders the inline markdown used in program text into sanitized HTML.
package richtext

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer converts markdown to HTML safe for templates. It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	strict *bluemonday.Policy
}

// New returns a Renderer with strikethrough and autolinks enabled.
func New() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Linkify)),
		policy: policy,
		strict: bluemonday.StrictPolicy(),
	}
}

// Block renders src as block-level HTML.
func (r *Renderer) Block(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

// Inline renders a single line without the wrapping paragraph.
func (r *Renderer) Inline(src string) template.HTML {
	out := strings.TrimSpace(string(r.Block(src)))
	if strings.HasPrefix(out, "<p>") && strings.HasSuffix(out, "</p>") && strings.Count(out, "<p>") == 1 {
		out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	}
	return template.HTML(out)
}

// Plain strips markup and returns the text content, for terminals and logs.
func (r *Renderer) Plain(src string) string {
	text := r.strict.Sanitize(string(r.Inline(src)))
	return html.UnescapeString(text)
}

// Package htmlsanitize cleans user-supplied HTML before it is stored.
package htmlsanitize

import (
	"html/template"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// policy is the UGC policy extended with the table and formatting markup the
// blog editor produces. bluemonday policies are safe for concurrent use once
// built.
var policy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("u", "s", "mark", "sub", "sup")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)).OnElements("table", "tr", "td", "th", "p", "span", "code", "pre")
	p.AllowAttrs("colspan", "rowspan").Matching(bluemonday.Integer).OnElements("td", "th")
	return p
}()

// Sanitize strips scripts, event handlers, iframes, styles and unsafe URLs,
// keeping ordinary formatting markup.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// SanitizeToHTML is Sanitize typed for html/template.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

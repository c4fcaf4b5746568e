package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/redaid/internal/app/system/htmlsanitize"
)

func TestSanitize_Empty(t *testing.T) {
	if got := htmlsanitize.Sanitize(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestSanitize_KeepsFormatting(t *testing.T) {
	inputs := []string{
		"<p><strong>Bold</strong> and <em>italic</em></p>",
		"<ul><li>Item 1</li><li>Item 2</li></ul>",
		"<ol><li>First</li><li>Second</li></ol>",
		"<blockquote>A quote</blockquote>",
		"<h1>Heading 1</h1><h2>Heading 2</h2>",
		"<pre><code>donate()</code></pre>",
	}
	for _, in := range inputs {
		if got := htmlsanitize.Sanitize(in); got != in {
			t.Errorf("Sanitize(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestSanitize_RemovesDangerousMarkup(t *testing.T) {
	tests := []struct {
		name, input, banned, kept string
	}{
		{"script", "<p>Hello</p><script>alert('xss')</script>", "script", "Hello"},
		{"onclick", `<p onclick="alert(1)">Hi</p>`, "onclick", "Hi"},
		{"javascript href", `<a href="javascript:alert(1)">Click</a>`, "javascript:", "Click"},
		{"iframe", `<p>Content</p><iframe src="https://evil.example"></iframe>`, "iframe", "Content"},
		{"style", `<style>body{color:red}</style><p>Text</p>`, "<style>", "Text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := htmlsanitize.Sanitize(tt.input)
			if strings.Contains(got, tt.banned) {
				t.Errorf("expected %q removed, got %q", tt.banned, got)
			}
			if !strings.Contains(got, tt.kept) {
				t.Errorf("expected %q kept, got %q", tt.kept, got)
			}
		})
	}
}

func TestSanitize_KeepsSafeLinks(t *testing.T) {
	got := htmlsanitize.Sanitize(`<a href="https://example.com/drive">Blood drive</a>`)
	if !strings.Contains(got, "https://example.com/drive") {
		t.Errorf("expected safe link preserved, got %q", got)
	}
}

func TestSanitize_TableAttributes(t *testing.T) {
	got := htmlsanitize.Sanitize(`<table class="schedule"><tr><td colspan="2">Cell</td></tr></table>`)
	for _, want := range []string{`class="schedule"`, `colspan="2"`} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %s preserved, got %q", want, got)
		}
	}
}

func TestSanitizeToHTML(t *testing.T) {
	if got := htmlsanitize.SanitizeToHTML("<p>Hello</p><script>x</script>"); string(got) != "<p>Hello</p>" {
		t.Errorf("got %q", got)
	}
}

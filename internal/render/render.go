package render

import (
	"strings"

	"github.com/gomarkdown/markdown"
)

// Description converts readme markdown into an HTML fragment that is
// safe to store and display as a single logical field: every literal
// newline in the rendered output is replaced with an explicit <br />.
// Empty input yields an empty string without invoking the renderer.
func Description(text string) string {
	if text == "" {
		return ""
	}
	html := string(markdown.ToHTML([]byte(text), nil, nil))
	return strings.ReplaceAll(html, "\n", "<br />")
}

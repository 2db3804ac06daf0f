// Package htmlsanitize cleans user-supplied text before it is stored.
//
// Project names, task titles, and profile names are plain text: PlainText
// strips every tag. Project descriptions may carry a small amount of
// formatting: Sanitize keeps user-generated-content markup and drops
// scripts, event handlers, and unsafe URLs.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()
	ugc    = bluemonday.UGCPolicy()
)

// Sanitize returns s with unsafe markup removed.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(ugc.Sanitize(s))
}

// PlainText strips all markup from s and unescapes entities, so "A &amp; B"
// round-trips to "A & B".
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return html.UnescapeString(strict.Sanitize(s))
}

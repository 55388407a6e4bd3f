// Package htmlsanitize strips unsafe HTML from user-supplied text.
// Group names and roster member names are rendered by clients we do not
// control, so they are sanitized at the write boundary.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Sanitize keeps common user-generated-content markup (bold, italics,
// paragraphs, links) and removes scripts and event handlers.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// Name strips all markup and trims whitespace. Used for group and
// member names, which are plain text everywhere.
func Name(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

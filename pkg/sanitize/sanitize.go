package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const maxPasses = 4

var strict = bluemonday.StrictPolicy()

// Text strips every tag from s and trims surrounding whitespace. Entities are
// decoded for readability, and the result is sanitized again until it is
// stable, so encoded markup cannot survive as live tags.
func Text(s string) string {
	for i := 0; i < maxPasses; i++ {
		clean := html.UnescapeString(strict.Sanitize(s))
		if clean == s {
			return strings.TrimSpace(clean)
		}
		s = clean
	}
	// still changing: keep the escaped form
	return strings.TrimSpace(strict.Sanitize(s))
}

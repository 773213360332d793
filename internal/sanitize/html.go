package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// StrictPolicy removes all HTML tags and attributes.
var StrictPolicy = bluemonday.StrictPolicy()

// ContainsMarkup reports whether input holds HTML tags or comments that the
// strict policy would remove. Entities and stray angle brackets such as
// "3 < 5" or "<3" count as plain text.
func ContainsMarkup(input string) bool {
	if !strings.Contains(input, "<") {
		return false
	}
	return html.UnescapeString(StrictPolicy.Sanitize(input)) != html.UnescapeString(input)
}

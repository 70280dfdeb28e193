// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// Strict strips all HTML and trims whitespace, leaving plain text.
// Applied to every free-text field before it is stored (names,
// disapproval reasons) since the API never renders markup.
func Strict(input string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(input))
}

package errs

import (
	"fmt"
	"strings"
)

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// sanitize renders v for inclusion in a single-line error message.
func sanitize(v any) string {
	return lineBreaks.Replace(fmt.Sprintf("%v", v))
}

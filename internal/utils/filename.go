package utils

import (
	"mime"
	"strings"
	"unicode/utf8"
)

// ContentDisposition builds an attachment header value for the given file
// name. Non-ASCII names come out RFC 2231 percent-encoded (filename*=),
// which browsers decode back to the original name.
func ContentDisposition(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}

// TruncateError bounds diagnostic text captured from an external process
// before it travels in an error message or response body. Cuts on a rune
// boundary so the result stays valid UTF-8.
func TruncateError(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

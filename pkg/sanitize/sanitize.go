// Package sanitize normalizes caller-supplied strings before they are
// stored or logged.
package sanitize

import (
	"regexp"
	"strings"
)

var newlinePattern = regexp.MustCompile(`[\r\n]`)

// LogString strips newlines so untrusted input cannot forge log entries.
func LogString(s string) string {
	return newlinePattern.ReplaceAllString(s, " ")
}

// Email lower-cases and trims a contact address.
func Email(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

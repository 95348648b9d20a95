package testutil

import "regexp"

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes SGR color sequences so rendered chat output can be
// compared as plain text.
func StripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

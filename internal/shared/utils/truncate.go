package utils

import "unicode/utf8"

// TruncateBytes cuts s to at most maxBytes bytes without splitting a UTF-8
// sequence.
func TruncateBytes(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

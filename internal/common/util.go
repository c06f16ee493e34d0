package common

import "strings"

// WipeByteArray overwrites the contents of b with zeros. Passwords read from
// the terminal are wiped this way once the request has been sent.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// IsBlank reports whether s is empty or consists only of whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

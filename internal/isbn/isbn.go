// Package isbn normalizes and checksums ISBN-10 and ISBN-13 strings.
package isbn

import (
	"fmt"
	"strings"
)

// Clean removes hyphens and whitespace and uppercases a trailing X
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteRune('X')
		case r == '-' || r == ' ' || r == '\t' || r == '\n' || r == '\r':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether s (after Clean) is a well-formed ISBN-10 or ISBN-13
func Valid(s string) bool {
	s = Clean(s)
	switch len(s) {
	case 10:
		return valid10(s)
	case 13:
		return valid13(s)
	default:
		return false
	}
}

func valid10(s string) bool {
	sum := 0
	for i := 0; i < 10; i++ {
		c := s[i]
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c == 'X' && i == 9:
			v = 10
		default:
			return false
		}
		sum += v * (10 - i)
	}
	return sum%11 == 0
}

func valid13(s string) bool {
	if !strings.HasPrefix(s, "978") && !strings.HasPrefix(s, "979") {
		return false
	}
	sum := 0
	for i := 0; i < 13; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return sum%10 == 0
}

// ToISBN13 converts a valid ISBN-10 to its 978-prefixed ISBN-13.
// A valid ISBN-13 is returned unchanged.
func ToISBN13(s string) (string, error) {
	s = Clean(s)
	if len(s) == 13 && valid13(s) {
		return s, nil
	}
	if len(s) != 10 || !valid10(s) {
		return "", fmt.Errorf("not a valid ISBN: %q", s)
	}

	body := "978" + s[:9]
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(body[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	check := (10 - sum%10) % 10
	return fmt.Sprintf("%s%d", body, check), nil
}

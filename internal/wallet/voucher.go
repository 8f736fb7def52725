package wallet

import (
	"strconv"
	"strings"
)

// IsValidCode is the placeholder redemption check: a code is accepted iff it
// is at least 8 characters long. There is deliberately no structural, prefix
// or checksum validation here; this is demo-grade and documented as such.
func IsValidCode(code string) bool {
	return len(strings.TrimSpace(code)) >= 8
}

// ParseDataAmount extracts the numeric magnitude from a free-form allocation
// string ("2GB" -> 2, "1.5 GB" -> 1.5). Everything except digits and dots is
// stripped, then the leading numeric prefix is parsed. Malformed or missing
// values yield 0; a zero-value redemption is still a valid, auditable event.
func ParseDataAmount(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	// leading float prefix: digits with at most one dot
	end := 0
	seenDot := false
	for end < len(cleaned) {
		c := cleaned[end]
		if c == '.' {
			if seenDot {
				break
			}
			seenDot = true
		}
		end++
	}

	v, err := strconv.ParseFloat(cleaned[:end], 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

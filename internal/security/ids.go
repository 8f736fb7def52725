package security

import "errors"

// ValidateID checks an externally supplied account or photo id before it
// reaches the store: non-empty, bounded, and restricted to the characters our
// id generators actually emit (uuid plus short seed ids like "u1").
func ValidateID(s string) error {
	if s == "" {
		return errors.New("empty id")
	}
	if len(s) > 64 {
		return errors.New("id too long")
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return errors.New("id contains invalid characters")
		}
	}
	return nil
}

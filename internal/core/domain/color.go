package domain

// DefaultColor is the value of every cell on a fresh or cleared canvas.
const DefaultColor = "#ffffff"

// colorLen is the length of a "#RRGGBB" value.
const colorLen = 7

// IsValidColor reports whether s is a '#' followed by exactly six hex digits.
// Hex digits are accepted in either case.
func IsValidColor(s string) bool {
	if len(s) != colorLen || s[0] != '#' {
		return false
	}
	for i := 1; i < colorLen; i++ {
		if !isHexDigit(s[i]) {
			return false
		}
	}
	return true
}

// ValidateColor returns ErrInvalidColor when s is not a valid color.
func ValidateColor(s string) error {
	if !IsValidColor(s) {
		return ErrInvalidColor.WithDetails(s)
	}
	return nil
}

func isHexDigit(c byte) bool {
	switch {
	case '0' <= c && c <= '9':
		return true
	case 'a' <= c && c <= 'f':
		return true
	case 'A' <= c && c <= 'F':
		return true
	}
	return false
}

package analyzer

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePoints normalizes a textual score into a fixed-point integer scaled
// x100. The fractional part is forced to exactly two digits: one-digit
// fractions gain a trailing zero, anything beyond two digits is truncated,
// never rounded.
func ParsePoints(text string) (int64, error) {
	s := strings.TrimSpace(text)
	intPart, frac, hasDot := strings.Cut(s, ".")
	if !isDigits(intPart) || (hasDot && !isDigits(frac)) {
		return 0, fmt.Errorf("malformed score %q", text)
	}

	switch {
	case len(frac) == 0:
		frac = "00"
	case len(frac) == 1:
		frac += "0"
	default:
		frac = frac[:2]
	}

	points, err := strconv.ParseInt(intPart+frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed score %q: %w", text, err)
	}
	return points, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

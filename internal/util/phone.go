package util

import (
	"fmt"
	"strings"
)

// Phone number length limits after the leading "+" (ITU E.164-ish).
const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// CanonicalPhone normalizes a webhook sender or broadcast recipient into
// "+<digits>" form. Input may omit the leading "+" (WhatsApp sends bare
// digits) but must otherwise contain digits only. The function is
// idempotent: feeding its own output back returns the same string.
func CanonicalPhone(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("phone number is empty")
	}

	digits := s
	if strings.HasPrefix(digits, "+") {
		digits = digits[1:]
	}

	if digits == "" {
		return "", fmt.Errorf("phone number has no digits")
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("phone number contains invalid character %q", r)
		}
	}

	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", fmt.Errorf("phone number length %d out of range [%d, %d]", len(digits), minPhoneDigits, maxPhoneDigits)
	}

	return "+" + digits, nil
}

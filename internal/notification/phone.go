package notification

import (
	"fmt"
	"regexp"
	"strings"
)

var nigerianPhone = regexp.MustCompile(`^\+234[7-9][0-1]\d{8}$`)

// FormatPhone normalizes a phone number to E.164. Local Nigerian
// formats (0803..., 234803...) are rewritten; numbers already carrying
// a + are passed through untouched.
func FormatPhone(phone string) (string, error) {
	cleaned := strings.TrimSpace(phone)
	if cleaned == "" {
		return "", fmt.Errorf("empty phone number")
	}

	if strings.HasPrefix(cleaned, "+") {
		return cleaned, nil
	}
	if strings.HasPrefix(cleaned, "0") {
		return "+234" + cleaned[1:], nil
	}
	if strings.HasPrefix(cleaned, "234") {
		return "+" + cleaned, nil
	}

	if !nigerianPhone.MatchString(cleaned) {
		return "", fmt.Errorf("invalid phone number %q", phone)
	}
	return cleaned, nil
}

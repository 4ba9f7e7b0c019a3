package auth

import "strings"

// NormalizePhone strips everything except digits, so "123 456 7890" and
// "1234567890" resolve to the same account.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidPhone reports whether the normalized form is an acceptable phone
// number: 10 to 15 digits.
func ValidPhone(normalized string) bool {
	return len(normalized) >= 10 && len(normalized) <= 15
}

package utils

import (
	"regexp"
	"strings"
)

// Canonical Egyptian mobile number: country code 20, mobile prefix 1
// followed by one of {0,1,2,5}, then 8 digits.
var egyptCanonicalPhonePattern = regexp.MustCompile(`^201[0125]\d{8}$`)

// NormalizeEgyptPhone canonicalizes an Egyptian mobile number to digits-only
// form starting with the country code. It accepts "+20", "0020", a leading "0",
// or the bare local form, and strips whitespace and hyphens. The result is not
// guaranteed valid; callers should check with IsCanonicalEgyptPhone.
func NormalizeEgyptPhone(input string) string {
	value := strings.TrimSpace(input)
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, "-", "")

	if strings.HasPrefix(value, "+20") {
		value = value[1:]
	}

	if strings.HasPrefix(value, "0020") {
		value = "20" + value[4:]
	}

	if strings.HasPrefix(value, "01") {
		value = "20" + value
	}

	return value
}

// IsCanonicalEgyptPhone reports whether the value is a canonical Egyptian
// mobile number as produced by NormalizeEgyptPhone.
func IsCanonicalEgyptPhone(value string) bool {
	return egyptCanonicalPhonePattern.MatchString(value)
}

// MaskPhone replaces all but the last 3 characters of a phone number with '*'.
// Strings of 3 characters or fewer are masked entirely.
func MaskPhone(phone string) string {
	value := strings.TrimSpace(phone)

	if len(value) <= 3 {
		return strings.Repeat("*", len(value))
	}

	return strings.Repeat("*", len(value)-3) + value[len(value)-3:]
}

package utils

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
)

const orderIDCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// OrderIDPattern matches the external order identifier contract.
var OrderIDPattern = regexp.MustCompile(`^ORD-\d{8}-[A-Z0-9]{4}$`)

// GenerateOrderID returns a human-readable order identifier of the form
// ORD-YYYYMMDD-XXXX, where the suffix is 4 uniformly random uppercase
// alphanumeric characters. IDs are not guaranteed globally unique; collision
// handling is the caller's responsibility.
func GenerateOrderID() string {
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), randomCode(4))
}

// NormalizeOrderID trims and uppercases a submitted order identifier so that
// lookups are case-insensitive.
func NormalizeOrderID(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// IsValidOrderID reports whether the value matches the order ID contract.
func IsValidOrderID(value string) bool {
	return OrderIDPattern.MatchString(value)
}

func randomCode(length int) string {
	code := make([]byte, length)
	for i := range code {
		code[i] = orderIDCharset[rand.Intn(len(orderIDCharset))]
	}
	return string(code)
}

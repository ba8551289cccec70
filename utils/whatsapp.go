package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// OrderMessageLine is one purchased line rendered into a WhatsApp message.
type OrderMessageLine struct {
	Title     string
	Qty       int
	UnitPrice int
}

// BuildWhatsAppLink builds a wa.me deep link for the given store number,
// optionally carrying a prefilled message.
func BuildWhatsAppLink(number, message string) string {
	base := fmt.Sprintf("https://wa.me/%s", number)

	if message == "" {
		return base
	}

	return fmt.Sprintf("%s?text=%s", base, url.QueryEscape(message))
}

// BuildOrderMessage renders the order confirmation message customers send over
// WhatsApp after checkout. Prices are in EGP.
func BuildOrderMessage(orderID string, lines []OrderMessageLine, total int) string {
	parts := []string{
		"Hello,",
		fmt.Sprintf("I placed order %s:", orderID),
	}

	for i, line := range lines {
		parts = append(parts, fmt.Sprintf("%d) %s x %d - %d EGP", i+1, line.Title, line.Qty, line.UnitPrice*line.Qty))
	}

	parts = append(parts, fmt.Sprintf("Total: %d EGP", total))

	return strings.Join(parts, "\n")
}

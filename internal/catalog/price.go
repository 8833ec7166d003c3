package catalog

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// FormatPrice renders an IDR amount for the given locale ("id" or "en").
// Indonesian uses the Rp prefix with dot grouping, everything else gets an
// explicit currency code with comma grouping.
func FormatPrice(locale string, amount int64) string {
	tag := language.English
	prefix := "IDR "
	if locale == "id" {
		tag = language.Indonesian
		prefix = "Rp"
	}
	p := message.NewPrinter(tag)
	return prefix + p.Sprint(number.Decimal(amount))
}

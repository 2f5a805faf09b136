package pdf

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer = message.NewPrinter(language.English)
	title   = cases.Title(language.English)
)

// Money formats an amount in rand, e.g. R9,100.00.
func Money(v float64) string {
	if v < 0 {
		return "-R" + printer.Sprintf("%.2f", -v)
	}
	return "R" + printer.Sprintf("%.2f", v)
}

// Label turns a stored code like "bank_transfer" into "Bank Transfer".
func Label(code string) string {
	if code == "" {
		return "-"
	}
	return title.String(strings.ReplaceAll(code, "_", " "))
}

func multiplier(v float64) string {
	return printer.Sprintf("%.1fx", v)
}

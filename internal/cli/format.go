// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// SetLocale switches number formatting to the given locale ("en", "ru", ...).
// Unknown locales fall back to English.
func SetLocale(locale string) {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.English
	}
	printer = message.NewPrinter(tag)
}

// FormatGrams formats a weight with four decimals.
// e.g., 3.11003 -> "3.1100 g"
func FormatGrams(g float64) string {
	return printer.Sprintf("%.4f g", g)
}

// FormatEUR formats a money amount with thousands separators.
// e.g., 1234.5 -> "1,234.50 EUR"
func FormatEUR(v float64) string {
	return printer.Sprintf("%.2f EUR", v)
}

// FormatPricePerGram formats a per-gram price.
func FormatPricePerGram(v float64) string {
	return printer.Sprintf("%.2f EUR/g", v)
}

// FormatRate formats a fractional rate as a percentage with two decimals.
// e.g., 0.005 -> "0.50%"
func FormatRate(r float64) string {
	return printer.Sprintf("%.2f%%", r*100)
}

// FormatSignedEUR formats a difference with an explicit sign.
func FormatSignedEUR(v float64) string {
	if v >= 0 {
		return "+" + FormatEUR(v)
	}
	return "-" + FormatEUR(-v)
}

// FormatNumber adds locale separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatMonths formats a month count as years and months.
// e.g., 14 -> "1y 2m", 5 -> "5m"
func FormatMonths(m int) string {
	if m <= 0 {
		return "0m"
	}
	years, months := m/12, m%12
	switch {
	case years > 0 && months > 0:
		return fmt.Sprintf("%dy %dm", years, months)
	case years > 0:
		return fmt.Sprintf("%dy", years)
	default:
		return fmt.Sprintf("%dm", months)
	}
}

// FormatAge returns how long ago t was, in a compact form.
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

package utils

import (
	"math"
	"strings"

	"github.com/elC0mpa/cost-doctor/service/comparison"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	// NotApplicableLabel replaces percentages that have no meaningful value
	NotApplicableLabel = "N/A"
	// SmallChangeLabel replaces non-zero changes that would round to 0.0%
	SmallChangeLabel = "<0.1%"
)

var printer = message.NewPrinter(language.English)

// FormatCurrency renders amount in the given ISO currency. Sub-cent amounts keep six fraction
// digits so they never show as zero.
func FormatCurrency(amount float64, code string) string {
	digits := 2
	abs := math.Abs(amount)
	if abs > 0 && abs < 0.01 {
		digits = 6
	}

	sign := ""
	if amount < 0 {
		sign = "-"
	}
	return sign + currencySymbol(code) + printer.Sprint(number.Decimal(abs, number.Scale(digits)))
}

// FormatPercentage renders a period-over-period change with an explicit sign
func FormatPercentage(p float64) string {
	switch {
	case p == comparison.NotApplicable:
		return NotApplicableLabel
	case p == 0:
		return "0.0%"
	case math.Abs(p) < 0.1:
		return SmallChangeLabel
	case p > 0:
		return printer.Sprintf("+%.1f%%", p)
	}
	return printer.Sprintf("%.1f%%", p)
}

func currencySymbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = "USD"
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code + " "
	}

	symbol := printer.Sprint(currency.Symbol(unit))
	if symbol == unit.String() {
		return symbol + " "
	}
	return symbol
}

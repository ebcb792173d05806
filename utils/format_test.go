package utils_test

import (
	"testing"

	"github.com/elC0mpa/cost-doctor/service/comparison"
	"github.com/elC0mpa/cost-doctor/utils"
	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		code   string
		want   string
	}{
		{"whole amount", 1234.5, "USD", "$1,234.50"},
		{"zero", 0, "USD", "$0.00"},
		{"sub cent", 0.001234, "USD", "$0.001234"},
		{"negative sub cent", -0.005, "USD", "-$0.005000"},
		{"exactly one cent", 0.01, "USD", "$0.01"},
		{"negative", -42, "USD", "-$42.00"},
		{"lower case code", 3, "usd", "$3.00"},
		{"empty code defaults to dollars", 3, "", "$3.00"},
		{"unknown code", 3, "XYZ1", "XYZ1 3.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, utils.FormatCurrency(tt.amount, tt.code))
		})
	}
}

func TestFormatCurrency_OtherCurrencies(t *testing.T) {
	got := utils.FormatCurrency(10, "EUR")
	assert.Contains(t, got, "10.00")
	assert.NotContains(t, got, "$")
}

func TestFormatPercentage(t *testing.T) {
	tests := []struct {
		name string
		p    float64
		want string
	}{
		{"not applicable", comparison.NotApplicable, "N/A"},
		{"zero", 0, "0.0%"},
		{"tiny positive", 0.04, "<0.1%"},
		{"tiny negative", -0.09, "<0.1%"},
		{"boundary", 0.1, "+0.1%"},
		{"positive", 12.345, "+12.3%"},
		{"negative", -100, "-100.0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, utils.FormatPercentage(tt.p))
		})
	}
}

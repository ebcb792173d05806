package costrows

import (
	"github.com/shopspring/decimal"
)

// Period tells which comparison window a row belongs to
type Period int

const (
	PeriodCurrent Period = iota
	PeriodPrevious
)

// Row is one provider result row, already flattened to grouping values
type Row struct {
	Period          Period
	Date            string
	Cost            float64
	Currency        string
	Groups          map[string]string
	EnvironmentID   string
	EnvironmentName string
}

// Accumulator folds rows into the raw document shape the normalizer reads
type Accumulator struct {
	order    []string
	entries  map[string]*entry
	currency string
}

type entry struct {
	groups          map[string]string
	previous        decimal.Decimal
	current         decimal.Decimal
	daily           map[string]decimal.Decimal
	currency        string
	environmentID   string
	environmentName string
	mixed           bool
}

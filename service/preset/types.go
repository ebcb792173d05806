package preset

import (
	"time"

	"github.com/elC0mpa/cost-doctor/model"
)

// Key identifies a date preset
type Key string

const (
	LastMonth   Key = "last-month"
	ThisMonth   Key = "this-month"
	Last3Months Key = "last-3-months"
	Last6Months Key = "last-6-months"
	LastQuarter Key = "last-quarter"
	YearToDate  Key = "year-to-date"
)

// Preset maps "now" to a concrete interval. Results are never cached.
type Preset struct {
	Key     Key
	Label   string
	Resolve func(now time.Time) model.TimePeriod
}

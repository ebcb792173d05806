package preset

import (
	"fmt"
	"time"

	"github.com/elC0mpa/cost-doctor/model"
)

var presets = []Preset{
	{Key: LastMonth, Label: "Last month", Resolve: lastMonth},
	{Key: ThisMonth, Label: "This month to date", Resolve: thisMonth},
	{Key: Last3Months, Label: "Last 3 months", Resolve: lastMonths(3)},
	{Key: Last6Months, Label: "Last 6 months", Resolve: lastMonths(6)},
	{Key: LastQuarter, Label: "Last quarter", Resolve: lastQuarter},
	{Key: YearToDate, Label: "Year to date", Resolve: yearToDate},
}

// All returns the presets in display order
func All() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// Lookup finds a preset by key
func Lookup(key Key) (Preset, bool) {
	for _, p := range presets {
		if p.Key == key {
			return p, true
		}
	}
	return Preset{}, false
}

// Resolve maps a preset key to its interval relative to now
func Resolve(key Key, now time.Time) (model.TimePeriod, error) {
	p, ok := Lookup(key)
	if !ok {
		return model.TimePeriod{}, fmt.Errorf("unknown date preset %q", key)
	}
	return p.Resolve(now), nil
}

func lastMonth(now time.Time) model.TimePeriod {
	first := getFirstDayOfMonth(now)
	return model.TimePeriod{
		From: first.AddDate(0, -1, 0),
		To:   model.EndOfDay(first.AddDate(0, 0, -1)),
	}
}

func thisMonth(now time.Time) model.TimePeriod {
	return model.TimePeriod{
		From: getFirstDayOfMonth(now),
		To:   model.EndOfDay(now),
	}
}

func lastMonths(n int) func(time.Time) model.TimePeriod {
	return func(now time.Time) model.TimePeriod {
		first := getFirstDayOfMonth(now)
		return model.TimePeriod{
			From: first.AddDate(0, -n, 0),
			To:   model.EndOfDay(first.AddDate(0, 0, -1)),
		}
	}
}

func lastQuarter(now time.Time) model.TimePeriod {
	now = now.UTC()
	quarterStartMonth := time.Month((int(now.Month())-1)/3*3 + 1)
	quarterStart := time.Date(now.Year(), quarterStartMonth, 1, 0, 0, 0, 0, time.UTC)
	return model.TimePeriod{
		From: quarterStart.AddDate(0, -3, 0),
		To:   model.EndOfDay(quarterStart.AddDate(0, 0, -1)),
	}
}

func yearToDate(now time.Time) model.TimePeriod {
	now = now.UTC()
	return model.TimePeriod{
		From: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   model.EndOfDay(now),
	}
}

func getFirstDayOfMonth(month time.Time) time.Time {
	month = month.UTC()
	return time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
}

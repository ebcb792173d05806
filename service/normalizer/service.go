package normalizer

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service/comparison"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

const (
	// Placeholder replaces absent string fields
	Placeholder = "Unknown"
	// DefaultCurrency is used when neither the item nor the summary carries one
	DefaultCurrency = "USD"
)

// Normalize maps a backend response onto the canonical result. It never fails: absent or malformed
// fields fall back to their defaults.
func Normalize(raw model.RawResponse) model.QueryResult {
	rawSummary := toMap(first(raw, fieldSummary))
	summaryCurrency := stringField(rawSummary, fieldCurrency, "")

	var items []model.CostLineItem
	for _, entry := range toSlice(first(raw, fieldItems)) {
		items = append(items, normalizeItem(toMap(entry), summaryCurrency))
	}
	if items == nil {
		items = []model.CostLineItem{}
	}

	return model.QueryResult{
		Items:   items,
		Summary: summarize(items, rawSummary, summaryCurrency),
	}
}

func normalizeItem(record map[string]any, fallbackCurrency string) model.CostLineItem {
	currency := stringField(record, fieldCurrency, fallbackCurrency)
	if currency == "" {
		currency = DefaultCurrency
	}

	previous := numberField(record, fieldPreviousPeriodCost)
	current := numberField(record, fieldCurrentPeriodCost)
	change := comparison.Compute(previous, current)

	return model.CostLineItem{
		Name:               stringField(record, fieldName, Placeholder),
		ResourceType:       stringField(record, fieldResourceType, Placeholder),
		ResourceGroup:      stringField(record, fieldResourceGroup, Placeholder),
		SubscriptionID:     stringField(record, fieldSubscriptionID, Placeholder),
		SubscriptionName:   stringField(record, fieldSubscriptionName, Placeholder),
		Location:           stringField(record, fieldLocation, Placeholder),
		PreviousPeriodCost: previous,
		CurrentPeriodCost:  current,
		CostDifference:     change.Difference,
		PercentageChange:   change.Percentage,
		Currency:           currency,
		DailyCosts:         dailyCosts(record),
		GroupingValues:     groupingValues(record),
	}
}

func summarize(items []model.CostLineItem, rawSummary map[string]any, summaryCurrency string) model.CostSummary {
	var previous, current float64
	var daily []model.DailyCost
	currency := summaryCurrency

	if len(items) == 0 {
		previous = numberField(rawSummary, fieldPreviousPeriodCost)
		current = numberField(rawSummary, fieldCurrentPeriodCost)
		daily = dailyCosts(rawSummary)
	} else {
		previousSum := decimal.Zero
		currentSum := decimal.Zero
		for _, item := range items {
			previousSum = previousSum.Add(decimal.NewFromFloat(item.PreviousPeriodCost))
			currentSum = currentSum.Add(decimal.NewFromFloat(item.CurrentPeriodCost))
			if currency == "" {
				currency = item.Currency
			}
		}
		previous = previousSum.InexactFloat64()
		current = currentSum.InexactFloat64()
		daily = sumDailyCosts(items)
	}

	if currency == "" {
		currency = DefaultCurrency
	}

	change := comparison.Compute(previous, current)
	return model.CostSummary{
		PreviousPeriodCost: previous,
		CurrentPeriodCost:  current,
		CostDifference:     change.Difference,
		PercentageChange:   change.Percentage,
		Currency:           currency,
		ItemCount:          len(items),
		DailyCosts:         daily,
	}
}

func dailyCosts(record map[string]any) []model.DailyCost {
	out := []model.DailyCost{}
	for _, entry := range toSlice(first(record, fieldDailyCosts)) {
		day := toMap(entry)
		if day == nil {
			continue
		}
		out = append(out, model.DailyCost{
			Date: normalizeDate(first(day, fieldDate)),
			Cost: numberField(day, fieldCost),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

func sumDailyCosts(items []model.CostLineItem) []model.DailyCost {
	totals := make(map[string]decimal.Decimal)
	for _, item := range items {
		for _, day := range item.DailyCosts {
			totals[day.Date] = totals[day.Date].Add(decimal.NewFromFloat(day.Cost))
		}
	}

	out := make([]model.DailyCost, 0, len(totals))
	for date, total := range totals {
		out = append(out, model.DailyCost{Date: date, Cost: total.InexactFloat64()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

func groupingValues(record map[string]any) map[string]string {
	out := map[string]string{}
	raw, ok := lookup(record, fieldGroupingValues)
	if !ok {
		return out
	}
	values, err := cast.ToStringMapStringE(raw)
	if err != nil {
		return out
	}
	for k, v := range values {
		out[k] = v
	}
	return out
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "20060102", "2006-01-02T15:04:05"}

// normalizeDate turns the accepted date shapes into YYYY-MM-DD; unknown shapes pass through
func normalizeDate(v any) string {
	if v == nil {
		return Placeholder
	}
	if f, err := cast.ToFloat64E(v); err == nil && f > 19000101 && f < 99991231 {
		v = cast.ToString(int64(f))
	}
	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return Placeholder
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format("2006-01-02")
		}
	}
	return s
}

func stringField(record map[string]any, names []string, fallback string) string {
	v, ok := lookup(record, names)
	if !ok {
		return fallback
	}
	s, err := cast.ToStringE(v)
	if err != nil || strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func numberField(record map[string]any, names []string) float64 {
	v, ok := lookup(record, names)
	if !ok {
		return 0
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func first(record map[string]any, names []string) any {
	v, _ := lookup(record, names)
	return v
}

func toMap(v any) map[string]any {
	if v == nil {
		return nil
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return nil
	}
	return m
}

func toSlice(v any) []any {
	if v == nil {
		return nil
	}
	s, err := cast.ToSliceE(v)
	if err != nil {
		return nil
	}
	return s
}

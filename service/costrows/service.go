package costrows

import (
	"math"
	"sort"
	"strings"

	"github.com/elC0mpa/cost-doctor/model"
	"github.com/shopspring/decimal"
)

// TotalName names the single row produced when a query has no grouping
const TotalName = "Total"

// namePriority decides which grouping value becomes the row name
var namePriority = []model.Dimension{
	model.DimensionResourceID,
	model.DimensionServiceName,
	model.DimensionMeterCategory,
	model.DimensionResourceType,
	model.DimensionResourceGroup,
	model.DimensionLocation,
	model.DimensionSubscriptionID,
	model.DimensionTags,
}

// New returns an empty accumulator
func New() *Accumulator {
	return &Accumulator{entries: make(map[string]*entry)}
}

// Add folds a row into the entry identified by its grouping values
func (a *Accumulator) Add(row Row) {
	key := groupKey(row.Groups)
	e, ok := a.entries[key]
	if !ok {
		e = &entry{
			groups:          copyGroups(row.Groups),
			daily:           make(map[string]decimal.Decimal),
			environmentID:   row.EnvironmentID,
			environmentName: row.EnvironmentName,
		}
		a.entries[key] = e
		a.order = append(a.order, key)
	} else if e.environmentID != row.EnvironmentID {
		e.mixed = true
	}

	cost := decimal.Zero
	if !math.IsNaN(row.Cost) && !math.IsInf(row.Cost, 0) {
		cost = decimal.NewFromFloat(row.Cost)
	}
	switch row.Period {
	case PeriodPrevious:
		e.previous = e.previous.Add(cost)
	default:
		e.current = e.current.Add(cost)
		if row.Date != "" {
			e.daily[row.Date] = e.daily[row.Date].Add(cost)
		}
	}

	if e.currency == "" {
		e.currency = row.Currency
	}
	if a.currency == "" {
		a.currency = row.Currency
	}
}

// Len returns the number of distinct rows
func (a *Accumulator) Len() int {
	return len(a.order)
}

// Document renders the accumulated rows as an upstream style response, highest current cost first
func (a *Accumulator) Document() model.RawResponse {
	entries := make([]*entry, 0, len(a.order))
	for _, key := range a.order {
		entries = append(entries, a.entries[key])
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].current.GreaterThan(entries[j].current)
	})

	items := make([]any, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.document())
	}

	summary := map[string]any{}
	if a.currency != "" {
		summary["Currency"] = a.currency
	}

	return model.RawResponse{
		"Items":   items,
		"Summary": summary,
	}
}

func (e *entry) document() map[string]any {
	doc := map[string]any{
		"Name":               rowName(e.groups),
		"PreviousPeriodCost": e.previous.InexactFloat64(),
		"CurrentPeriodCost":  e.current.InexactFloat64(),
	}

	setIf(doc, "ResourceType", e.groups[string(model.DimensionResourceType)])
	setIf(doc, "ResourceGroup", e.groups[string(model.DimensionResourceGroup)])
	setIf(doc, "Location", e.groups[string(model.DimensionLocation)])
	setIf(doc, "Currency", e.currency)

	if id, ok := e.groups[string(model.DimensionSubscriptionID)]; ok {
		doc["SubscriptionId"] = id
	} else if !e.mixed {
		setIf(doc, "SubscriptionId", e.environmentID)
		setIf(doc, "SubscriptionName", e.environmentName)
	}

	if len(e.daily) > 0 {
		dates := make([]string, 0, len(e.daily))
		for date := range e.daily {
			dates = append(dates, date)
		}
		sort.Strings(dates)

		daily := make([]any, 0, len(dates))
		for _, date := range dates {
			daily = append(daily, map[string]any{
				"UsageDate": date,
				"Cost":      e.daily[date].InexactFloat64(),
			})
		}
		doc["DailyCosts"] = daily
	}

	if len(e.groups) > 0 {
		values := make(map[string]any, len(e.groups))
		for k, v := range e.groups {
			values[k] = v
		}
		doc["GroupingValues"] = values
	}
	return doc
}

func rowName(groups map[string]string) string {
	for _, d := range namePriority {
		value := strings.TrimSpace(groups[string(d)])
		if value == "" {
			continue
		}
		if d == model.DimensionResourceID {
			return lastSegment(value)
		}
		return value
	}
	return TotalName
}

func lastSegment(resourceID string) string {
	trimmed := strings.TrimRight(resourceID, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 && idx < len(trimmed)-1 {
		return trimmed[idx+1:]
	}
	return trimmed
}

func groupKey(groups map[string]string) string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(groups[k])
		b.WriteByte(0)
	}
	return b.String()
}

func copyGroups(groups map[string]string) map[string]string {
	out := make(map[string]string, len(groups))
	for k, v := range groups {
		out[k] = v
	}
	return out
}

func setIf(doc map[string]any, key, value string) {
	if value != "" {
		doc[key] = value
	}
}

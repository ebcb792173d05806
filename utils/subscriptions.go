package utils

import (
	"fmt"
	"io"
	"sort"

	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service/comparison"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
)

// EnvironmentCost is the total of all line items of one subscription / account / project
type EnvironmentCost struct {
	Name     string
	Previous float64
	Current  float64
	Currency string
}

// WriteSubscriptionBreakdown skips the table when there is at most one subscription
func WriteSubscriptionBreakdown(w io.Writer, result model.QueryResult) {
	costs := SubscriptionTotals(result.Items)
	if len(costs) < 2 {
		return
	}

	fmt.Fprintf(w, "\n%s\n", text.FgHiWhite.Sprint(" 💰 COST BY SUBSCRIPTION"))

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Subscription", "Previous Period", "Current Period", "Difference", "Change"})
	tw.SetStyle(table.StyleRounded)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	for _, c := range costs {
		change := comparison.Compute(c.Previous, c.Current)
		color := costColor(change.Difference, false)
		tw.AppendRow(table.Row{
			text.FgHiYellow.Sprint(c.Name),
			FormatCurrency(c.Previous, c.Currency),
			color.Sprint(FormatCurrency(c.Current, c.Currency)),
			color.Sprint(FormatCurrency(change.Difference, c.Currency)),
			color.Sprint(FormatPercentage(change.Percentage)),
		})
	}
	tw.Render()
}

// SubscriptionTotals sums line items by subscription name, most expensive first
func SubscriptionTotals(items []model.CostLineItem) []EnvironmentCost {
	type total struct {
		previous decimal.Decimal
		current  decimal.Decimal
		currency string
	}

	totals := make(map[string]*total)
	for _, item := range items {
		t, ok := totals[item.SubscriptionName]
		if !ok {
			t = &total{currency: item.Currency}
			totals[item.SubscriptionName] = t
		}
		t.previous = t.previous.Add(decimal.NewFromFloat(item.PreviousPeriodCost))
		t.current = t.current.Add(decimal.NewFromFloat(item.CurrentPeriodCost))
	}

	out := make([]EnvironmentCost, 0, len(totals))
	for name, t := range totals {
		out = append(out, EnvironmentCost{
			Name:     name,
			Previous: t.previous.InexactFloat64(),
			Current:  t.current.InexactFloat64(),
			Currency: t.currency,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Current != out[j].Current {
			return out[i].Current > out[j].Current
		}
		return out[i].Name < out[j].Name
	})
	return out
}

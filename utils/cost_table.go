package utils

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elC0mpa/cost-doctor/model"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// CostTableOptions controls the cost table layout
type CostTableOptions struct {
	ClientName string
	Period     model.TimePeriod
	Previous   model.TimePeriod
	Grouping   []model.Dimension
}

// WriteCostTable renders one row per line item below a total row
func WriteCostTable(w io.Writer, result model.QueryResult, opts CostTableOptions) {
	columns := groupingColumns(opts.Grouping)

	header := table.Row{}
	for _, c := range columns {
		if c == "" {
			header = append(header, "Name")
			continue
		}
		header = append(header, c.Label())
	}
	header = append(header,
		fmt.Sprintf("Previous Period\n(%s\n%s)", formatDay(opts.Previous.From), formatDay(opts.Previous.To)),
		fmt.Sprintf("Current Period\n(%s\n%s)", formatDay(opts.Period.From), formatDay(opts.Period.To)),
		"Difference",
		"Change",
	)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if opts.ClientName != "" {
		tw.SetTitle(opts.ClientName)
	}
	tw.AppendHeader(header)
	tw.AppendRow(populateTotalRow(result.Summary, len(columns)))
	tw.AppendSeparator()

	for _, item := range result.Items {
		tw.AppendRow(populateRow(item, columns))
	}

	configs := make([]table.ColumnConfig, 0, len(header))
	for i := range columns {
		configs = append(configs, table.ColumnConfig{Number: i + 1, VAlignHeader: text.VAlignMiddle})
	}
	for i := len(columns); i < len(header); i++ {
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight, VAlignHeader: text.VAlignMiddle})
	}
	tw.SetColumnConfigs(configs)
	tw.SetStyle(table.StyleRounded)
	tw.Render()
}

// groupingColumns falls back to a single name column when nothing is grouped
func groupingColumns(grouping []model.Dimension) []model.Dimension {
	if len(grouping) == 0 {
		return []model.Dimension{""}
	}
	return grouping
}

func populateTotalRow(summary model.CostSummary, labelColumns int) table.Row {
	color := costColor(summary.CostDifference, true)

	row := make(table.Row, 0, labelColumns+4)
	row = append(row, color.Sprint("Total Costs"))
	for i := 1; i < labelColumns; i++ {
		row = append(row, "")
	}
	return append(row,
		text.FgHiYellow.Sprint(FormatCurrency(summary.PreviousPeriodCost, summary.Currency)),
		color.Sprint(FormatCurrency(summary.CurrentPeriodCost, summary.Currency)),
		color.Sprint(FormatCurrency(summary.CostDifference, summary.Currency)),
		color.Sprint(FormatPercentage(summary.PercentageChange)),
	)
}

func populateRow(item model.CostLineItem, columns []model.Dimension) table.Row {
	color := costColor(item.CostDifference, false)

	row := make(table.Row, 0, len(columns)+4)
	for _, c := range columns {
		row = append(row, color.Sprint(cellValue(item, c)))
	}
	return append(row,
		text.FgYellow.Sprint(FormatCurrency(item.PreviousPeriodCost, item.Currency)),
		color.Sprint(FormatCurrency(item.CurrentPeriodCost, item.Currency)),
		color.Sprint(FormatCurrency(item.CostDifference, item.Currency)),
		color.Sprint(FormatPercentage(item.PercentageChange)),
	)
}

func cellValue(item model.CostLineItem, d model.Dimension) string {
	if d == "" {
		return item.Name
	}
	if v, ok := item.GroupingValues[string(d)]; ok && strings.TrimSpace(v) != "" {
		if d == model.DimensionResourceID {
			return item.Name
		}
		return v
	}
	switch d {
	case model.DimensionLocation:
		return item.Location
	case model.DimensionResourceType:
		return item.ResourceType
	case model.DimensionResourceGroup:
		return item.ResourceGroup
	case model.DimensionSubscriptionID:
		return item.SubscriptionName
	}
	return item.Name
}

// costColor marks increases red
func costColor(difference float64, total bool) text.Colors {
	switch {
	case difference > 0 && total:
		return text.Colors{text.FgHiRed}
	case difference > 0:
		return text.Colors{text.FgRed}
	case total:
		return text.Colors{text.FgHiGreen}
	}
	return text.Colors{text.FgGreen}
}

func formatDay(t time.Time) string {
	return t.Format("2006-01-02")
}

package utils

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/elC0mpa/cost-doctor/model"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
)

const (
	ColorRank1 = "#d73027"
	ColorRank2 = "#f46d43"
	ColorRank3 = "#fee08b"
	ColorRank4 = "#abdda4"
	ColorRank5 = "#66c2a5"
	ColorRank6 = "#1a9850"
)

const (
	chartHeight = 20
	// maxChartWidth is the widest chart drawn, excluding the border
	maxChartWidth = 130
	// barWidth leaves room for the label under each bar
	barWidth = 7
	maxBars  = maxChartWidth / barWidth
)

var defaultStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("#F4D060"))

// WriteDailyChart plots the summary's daily costs. Nothing is drawn for None granularity, which has
// no calendar view.
func WriteDailyChart(w io.Writer, clientName string, granularity model.Granularity, summary model.CostSummary) {
	if granularity != model.GranularityDaily || len(summary.DailyCosts) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s\n", text.FgHiWhite.Sprint(" 📈  DAILY COSTS"))
	fmt.Fprintf(w, " Client: %s\n", text.FgBlue.Sprint(clientName))
	fmt.Fprintln(w, text.FgHiBlue.Sprint(" ------------------------------------------------"))

	fmt.Fprintln(w, RenderDailyChart(summary))
}

// RenderDailyChart returns the bordered chart
func RenderDailyChart(summary model.CostSummary) string {
	days := bucketDays(summary.DailyCosts, maxBars)
	bc := barchart.New(len(days)*barWidth, chartHeight)

	indexedColors := assignRankedColors(days)
	for idx, day := range days {
		bc.Push(barchart.BarData{
			Label: getBarLabel(day),
			Values: []barchart.BarValue{
				{
					Value: day.Cost,
					Style: lipgloss.NewStyle().Foreground(lipgloss.Color(indexedColors[idx])),
				},
			},
		})
	}

	bc.Draw()
	return lipgloss.JoinHorizontal(lipgloss.Top, defaultStyle.Render(bc.View()))
}

// bucketDays merges consecutive days so at most limit bars remain. Each bucket is labeled with its
// first day and carries the sum of its costs.
func bucketDays(days []model.DailyCost, limit int) []model.DailyCost {
	if len(days) <= limit {
		return days
	}

	size := (len(days) + limit - 1) / limit
	out := make([]model.DailyCost, 0, limit)
	for start := 0; start < len(days); start += size {
		end := min(start+size, len(days))
		total := decimal.Zero
		for _, day := range days[start:end] {
			total = total.Add(decimal.NewFromFloat(day.Cost))
		}
		out = append(out, model.DailyCost{Date: days[start].Date, Cost: total.InexactFloat64()})
	}
	return out
}

func getBarLabel(day model.DailyCost) string {
	parsedTime, err := time.Parse("2006-01-02", day.Date)
	if err != nil {
		return day.Date
	}
	return parsedTime.Format("Jan 2")
}

// assignRankedColors gives the six most expensive days the palette, others stay uncolored
func assignRankedColors(days []model.DailyCost) []string {
	palette := []string{ColorRank1, ColorRank2, ColorRank3, ColorRank4, ColorRank5, ColorRank6}

	type costWithIndex struct {
		index int
		value float64
	}

	costsToSort := make([]costWithIndex, len(days))
	for i, day := range days {
		costsToSort[i] = costWithIndex{index: i, value: day.Cost}
	}

	sort.SliceStable(costsToSort, func(i, j int) bool {
		return costsToSort[i].value > costsToSort[j].value
	})

	resultColors := make([]string, len(days))
	for rank, sortedCost := range costsToSort {
		if rank < len(palette) {
			resultColors[sortedCost.index] = palette[rank]
		} else {
			resultColors[sortedCost.index] = ColorRank6
		}
	}

	return resultColors
}

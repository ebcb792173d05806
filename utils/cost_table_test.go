package utils_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service/comparison"
	"github.com/elC0mpa/cost-doctor/utils"
	"github.com/stretchr/testify/assert"
)

func sampleResult() model.QueryResult {
	return model.QueryResult{
		Items: []model.CostLineItem{
			{
				Name:               "Storage",
				PreviousPeriodCost: 80,
				CurrentPeriodCost:  100,
				CostDifference:     20,
				PercentageChange:   25,
				Currency:           "USD",
				GroupingValues:     map[string]string{"ServiceName": "Storage", "ResourceLocation": "eastus"},
			},
			{
				Name:               "New VM",
				CurrentPeriodCost:  0.004,
				CostDifference:     0.004,
				PercentageChange:   comparison.NotApplicable,
				Currency:           "USD",
				Location:           "westeurope",
				GroupingValues:     map[string]string{"ServiceName": "Virtual Machines"},
			},
		},
		Summary: model.CostSummary{
			PreviousPeriodCost: 80,
			CurrentPeriodCost:  100.004,
			CostDifference:     20.004,
			PercentageChange:   25.005,
			Currency:           "USD",
			ItemCount:          2,
		},
	}
}

func TestWriteCostTable(t *testing.T) {
	var buf bytes.Buffer
	utils.WriteCostTable(&buf, sampleResult(), utils.CostTableOptions{
		ClientName: "Contoso",
		Period: model.TimePeriod{
			From: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2024, time.May, 31, 23, 59, 59, 0, time.UTC),
		},
		Grouping: []model.Dimension{model.DimensionServiceName, model.DimensionLocation},
	})

	out := buf.String()
	assert.Contains(t, out, "Contoso")
	assert.Contains(t, out, "Service")
	assert.Contains(t, out, "Location")
	assert.Contains(t, out, "2024-05-31")
	assert.Contains(t, out, "Total Costs")
	assert.Contains(t, out, "$100.00")
	assert.Contains(t, out, "+25.0%")
	assert.Contains(t, out, "Virtual Machines")
	assert.Contains(t, out, "westeurope")
	assert.Contains(t, out, "$0.004000")
	assert.Contains(t, out, "N/A")
}

func TestWriteCostTable_NoGrouping(t *testing.T) {
	var buf bytes.Buffer
	utils.WriteCostTable(&buf, sampleResult(), utils.CostTableOptions{})

	out := buf.String()
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "New VM")
}

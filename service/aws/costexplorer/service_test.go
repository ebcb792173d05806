package awscostexplorer

import (
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/smithy-go"
	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service/costrows"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDimensions(t *testing.T) {
	mapped, skipped := mapDimensions([]model.Dimension{
		model.DimensionServiceName,
		model.DimensionResourceGroup,
		model.DimensionLocation,
		model.DimensionSubscriptionID,
	})

	assert.Equal(t, []types.Dimension{types.DimensionService, types.DimensionRegion}, mapped)
	assert.Equal(t, []string{"ResourceGroupName", "SubscriptionId"}, skipped)
}

func TestBuildInput(t *testing.T) {
	window := model.TimePeriod{
		From: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.May, 31, 23, 59, 59, 0, time.UTC),
	}

	input := buildInput(model.GranularityNone, window, []types.Dimension{types.DimensionService}, DefaultMetric, "123456789012", true)
	assert.Equal(t, types.GranularityMonthly, input.Granularity)
	assert.Equal(t, "2024-05-01", aws.ToString(input.TimePeriod.Start))
	assert.Equal(t, "2024-06-01", aws.ToString(input.TimePeriod.End))
	assert.Equal(t, []string{DefaultMetric}, input.Metrics)
	require.Len(t, input.GroupBy, 1)
	assert.Equal(t, "SERVICE", aws.ToString(input.GroupBy[0].Key))
	require.NotNil(t, input.Filter)
	assert.Equal(t, []string{"123456789012"}, input.Filter.Dimensions.Values)

	input = buildInput(model.GranularityDaily, window, nil, DefaultMetric, "123456789012", false)
	assert.Equal(t, types.GranularityDaily, input.Granularity)
	assert.Nil(t, input.Filter)
	assert.Empty(t, input.GroupBy)
}

func TestRowsFromResults_Grouped(t *testing.T) {
	results := []types.ResultByTime{
		{
			TimePeriod: &types.DateInterval{Start: aws.String("2024-06-01"), End: aws.String("2024-06-02")},
			Groups: []types.Group{
				{Keys: []string{"Amazon S3", "us-east-1"}, Metrics: map[string]types.MetricValue{
					DefaultMetric: {Amount: aws.String("12.5"), Unit: aws.String("USD")},
				}},
				{Keys: []string{"AWS Lambda"}, Metrics: map[string]types.MetricValue{
					"BlendedCost": {Amount: aws.String("1"), Unit: aws.String("USD")},
				}},
			},
		},
	}
	env := model.Environment{ID: "123456789012", Name: "prod"}

	rows := rowsFromResults(results, []types.Dimension{types.DimensionService, types.DimensionRegion}, DefaultMetric, env, costrows.PeriodCurrent, true)
	require.Len(t, rows, 1)
	assert.Equal(t, costrows.Row{
		Period:          costrows.PeriodCurrent,
		Date:            "2024-06-01",
		Cost:            12.5,
		Currency:        "USD",
		Groups:          map[string]string{"ServiceName": "Amazon S3", "ResourceLocation": "us-east-1"},
		EnvironmentID:   "123456789012",
		EnvironmentName: "prod",
	}, rows[0])
}

func TestRowsFromResults_TotalsWithoutDates(t *testing.T) {
	results := []types.ResultByTime{
		{
			TimePeriod: &types.DateInterval{Start: aws.String("2024-04-01"), End: aws.String("2024-05-01")},
			Total:      map[string]types.MetricValue{DefaultMetric: {Amount: aws.String("100"), Unit: aws.String("USD")}},
		},
		{
			TimePeriod: &types.DateInterval{Start: aws.String("2024-05-01"), End: aws.String("2024-05-02")},
			Total:      map[string]types.MetricValue{DefaultMetric: {Amount: aws.String("5.5"), Unit: aws.String("USD")}},
		},
	}

	rows := rowsFromResults(results, nil, DefaultMetric, model.Environment{ID: "1"}, costrows.PeriodCurrent, false)
	require.Len(t, rows, 2)
	assert.Empty(t, rows[0].Date)
	assert.Empty(t, rows[0].Groups)

	acc := costrows.New()
	for _, row := range rows {
		acc.Add(row)
	}
	assert.Equal(t, 1, acc.Len())
}

func TestIsAccessDenied(t *testing.T) {
	denied := &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "not authorized"}
	assert.True(t, isAccessDenied(fmt.Errorf("operation error: %w", denied)))
	assert.False(t, isAccessDenied(&smithy.GenericAPIError{Code: "ThrottlingException"}))
	assert.False(t, isAccessDenied(fmt.Errorf("network down")))
}

func TestSetupInstructions(t *testing.T) {
	got := setupInstructions("123456789012")
	assert.Contains(t, got, "123456789012")
	assert.Contains(t, got, "ce:GetCostAndUsage")
}

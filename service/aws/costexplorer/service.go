package awscostexplorer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/smithy-go"
	"github.com/elC0mpa/cost-doctor/model"
	coreservice "github.com/elC0mpa/cost-doctor/service"
	"github.com/elC0mpa/cost-doctor/service/costrows"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// DefaultMetric is the Cost Explorer metric used for "Cost"
const DefaultMetric = "UnblendedCost"

// maxGroupBy is the Cost Explorer limit on group definitions
const maxGroupBy = 2

var dimensionMapping = map[model.Dimension]types.Dimension{
	model.DimensionServiceName:    types.DimensionService,
	model.DimensionLocation:       types.DimensionRegion,
	model.DimensionSubscriptionID: types.DimensionLinkedAccount,
	model.DimensionMeterCategory:  types.DimensionUsageType,
}

func NewService(awsconfig aws.Config, metric string, logger *zap.Logger) *service {
	client := costexplorer.NewFromConfig(awsconfig)
	if metric == "" {
		metric = DefaultMetric
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		client: client,
		metric: metric,
		logger: logger,
	}
}

// QueryCosts implements service.CostQueryService with one query per linked account and period
func (s *service) QueryCosts(ctx context.Context, client model.Client, spec model.CostQuerySpec, includePreviousPeriod bool) (model.RawResponse, error) {
	if len(client.Environments) == 0 {
		return nil, fmt.Errorf("client %s has no accounts", client.ID)
	}

	dims, skipped := mapDimensions(spec.GroupingNames())
	if len(skipped) > 0 {
		s.logger.Warn("grouping not supported by Cost Explorer", zap.Strings("dimensions", skipped))
	}

	acc := costrows.New()
	var denied []string

	for _, env := range client.Environments {
		periods := []costrows.Period{costrows.PeriodCurrent}
		if includePreviousPeriod {
			periods = append(periods, costrows.PeriodPrevious)
		}

		for _, period := range periods {
			window := spec.TimePeriod
			if period == costrows.PeriodPrevious {
				window = spec.PreviousPeriod()
			}

			results, err := s.getCostAndUsage(ctx, buildInput(spec.Granularity, window, dims, s.metric, env.ID, len(client.Environments) > 1))
			if err != nil {
				if isAccessDenied(err) {
					denied = append(denied, env.ID)
					break
				}
				return nil, fmt.Errorf("failed to query costs for account %s: %w", env.ID, err)
			}

			for _, row := range rowsFromResults(results, dims, s.metric, env, period, spec.Granularity == model.GranularityDaily) {
				acc.Add(row)
			}
		}
	}

	if len(denied) > 0 {
		return nil, &coreservice.AccessDeniedError{Environments: denied}
	}
	return acc.Document(), nil
}

func (s *service) getCostAndUsage(ctx context.Context, input *costexplorer.GetCostAndUsageInput) ([]types.ResultByTime, error) {
	var results []types.ResultByTime
	for {
		output, err := s.client.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, err
		}
		results = append(results, output.ResultsByTime...)

		if output.NextPageToken == nil || *output.NextPageToken == "" {
			return results, nil
		}
		input.NextPageToken = output.NextPageToken
	}
}

// CheckAccess asks for yesterday's total of the account
func (s *service) CheckAccess(ctx context.Context, accountID string) (bool, error) {
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	window := model.TimePeriod{From: model.StartOfDay(yesterday), To: model.EndOfDay(yesterday)}

	_, err := s.client.GetCostAndUsage(ctx, buildInput(model.GranularityDaily, window, nil, s.metric, accountID, true))
	if err != nil {
		if isAccessDenied(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check cost access for account %s: %w", accountID, err)
	}
	return true, nil
}

func (s *service) GetSetupInstructions(_ context.Context, accountID string) (string, error) {
	return setupInstructions(accountID), nil
}

func setupInstructions(accountID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Account %s does not grant Cost Explorer access.\n\n", accountID)
	b.WriteString("1. Enable Cost Explorer in the Billing console of the management account.\n")
	b.WriteString("2. Attach this policy to the IAM identity running cost-doctor:\n\n")
	b.WriteString(`  {
    "Version": "2012-10-17",
    "Statement": [{
      "Effect": "Allow",
      "Action": ["ce:GetCostAndUsage"],
      "Resource": "*"
    }]
  }`)
	b.WriteString("\n\nLinked accounts are only visible from the management account or with IAM access to billing enabled.\n")
	return b.String()
}

func buildInput(granularity model.Granularity, window model.TimePeriod, dims []types.Dimension, metric, accountID string, filterAccount bool) *costexplorer.GetCostAndUsageInput {
	ceGranularity := types.GranularityMonthly
	if granularity == model.GranularityDaily {
		ceGranularity = types.GranularityDaily
	}

	input := &costexplorer.GetCostAndUsageInput{
		Granularity: ceGranularity,
		TimePeriod: &types.DateInterval{
			Start: aws.String(model.StartOfDay(window.From).Format("2006-01-02")),
			// End is exclusive
			End: aws.String(model.StartOfDay(window.To).AddDate(0, 0, 1).Format("2006-01-02")),
		},
		Metrics: []string{metric},
	}

	for _, d := range dims {
		input.GroupBy = append(input.GroupBy, types.GroupDefinition{
			Key:  aws.String(string(d)),
			Type: types.GroupDefinitionTypeDimension,
		})
	}

	if filterAccount && accountID != "" {
		input.Filter = &types.Expression{
			Dimensions: &types.DimensionValues{
				Key:    types.DimensionLinkedAccount,
				Values: []string{accountID},
			},
		}
	}
	return input
}

// mapDimensions keeps the first two supported dimensions and reports the rest
func mapDimensions(dims []model.Dimension) ([]types.Dimension, []string) {
	var mapped []types.Dimension
	var skipped []string
	for _, d := range dims {
		ceDim, ok := dimensionMapping[d]
		if !ok || len(mapped) >= maxGroupBy {
			skipped = append(skipped, string(d))
			continue
		}
		mapped = append(mapped, ceDim)
	}
	return mapped, skipped
}

func canonicalDimension(d types.Dimension) model.Dimension {
	for canonical, ceDim := range dimensionMapping {
		if ceDim == d {
			return canonical
		}
	}
	return model.Dimension(d)
}

func rowsFromResults(results []types.ResultByTime, dims []types.Dimension, metric string, env model.Environment, period costrows.Period, daily bool) []costrows.Row {
	var rows []costrows.Row
	for _, result := range results {
		date := ""
		if daily && period == costrows.PeriodCurrent && result.TimePeriod != nil {
			date = aws.ToString(result.TimePeriod.Start)
		}

		if len(dims) == 0 {
			if value, ok := result.Total[metric]; ok {
				rows = append(rows, newRow(value, nil, env, period, date))
			}
			continue
		}

		for _, group := range result.Groups {
			value, ok := group.Metrics[metric]
			if !ok {
				continue
			}
			groups := make(map[string]string, len(dims))
			for i, d := range dims {
				if i < len(group.Keys) && group.Keys[i] != "" {
					groups[string(canonicalDimension(d))] = group.Keys[i]
				}
			}
			rows = append(rows, newRow(value, groups, env, period, date))
		}
	}
	return rows
}

func newRow(value types.MetricValue, groups map[string]string, env model.Environment, period costrows.Period, date string) costrows.Row {
	if groups == nil {
		groups = map[string]string{}
	}
	return costrows.Row{
		Period:          period,
		Date:            date,
		Cost:            cast.ToFloat64(aws.ToString(value.Amount)),
		Currency:        aws.ToString(value.Unit),
		Groups:          groups,
		EnvironmentID:   env.ID,
		EnvironmentName: env.Name,
	}
}

func isAccessDenied(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDeniedException", "UnauthorizedOperation", "AccessDenied":
			return true
		}
	}
	return false
}

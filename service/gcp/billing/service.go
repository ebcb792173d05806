package gcpbilling

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/elC0mpa/cost-doctor/model"
	coreservice "github.com/elC0mpa/cost-doctor/service"
	"github.com/elC0mpa/cost-doctor/service/costrows"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const (
	costAlias     = "total_cost"
	currencyAlias = "currency"
	dateAlias     = "usage_date"
)

var dimensionColumns = map[model.Dimension]exportColumn{
	model.DimensionServiceName:    {alias: "service_name", expression: "service.description"},
	model.DimensionMeterCategory:  {alias: "sku_name", expression: "sku.description"},
	model.DimensionLocation:       {alias: "location", expression: "IFNULL(location.region, location.location)"},
	model.DimensionSubscriptionID: {alias: "project_id", expression: "project.id"},
	model.DimensionResourceType:   {alias: "service_id", expression: "service.id"},
}

func NewService(ctx context.Context, creds *google.Credentials, exportProject, table string, logger *zap.Logger) (*service, error) {
	bqClient, err := bigquery.NewClient(ctx, exportProject, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create BigQuery client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		table:    table,
		bqClient: bqClient,
		logger:   logger,
	}, nil
}

// Close closes the BigQuery client
func (s *service) Close() error {
	return s.bqClient.Close()
}

// QueryCosts implements service.CostQueryService over the billing export table, one query per
// project and period
func (s *service) QueryCosts(ctx context.Context, client model.Client, spec model.CostQuerySpec, includePreviousPeriod bool) (model.RawResponse, error) {
	if len(client.Environments) == 0 {
		return nil, fmt.Errorf("client %s has no projects", client.ID)
	}

	dims, skipped := exportDimensions(spec.GroupingNames())
	if len(skipped) > 0 {
		s.logger.Warn("grouping not available in billing export", zap.Strings("dimensions", skipped))
	}
	daily := spec.Granularity == model.GranularityDaily

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
			withDates := daily && period == costrows.PeriodCurrent

			q := s.bqClient.Query(buildQuery(s.table, dims, withDates))
			q.Parameters = []bigquery.QueryParameter{
				{Name: "projectID", Value: env.ID},
				{Name: "startDate", Value: model.StartOfDay(window.From).Format("2006-01-02")},
				{Name: "endDate", Value: model.StartOfDay(window.To).AddDate(0, 0, 1).Format("2006-01-02")},
			}

			rows, err := readRows(ctx, q, dims, env, period)
			if err != nil {
				if isAccessDenied(err) {
					denied = append(denied, env.ID)
					break
				}
				return nil, err
			}
			for _, row := range rows {
				acc.Add(row)
			}
		}
	}

	if len(denied) > 0 {
		return nil, &coreservice.AccessDeniedError{Environments: denied}
	}
	return acc.Document(), nil
}

func readRows(ctx context.Context, q *bigquery.Query, dims []model.Dimension, env model.Environment, period costrows.Period) ([]costrows.Row, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to execute BigQuery query: %w", err)
	}

	var rows []costrows.Row
	for {
		var values map[string]bigquery.Value
		err := it.Next(&values)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read BigQuery row: %w", err)
		}
		rows = append(rows, rowFromValues(values, dims, env, period))
	}
	return rows, nil
}

// buildQuery selects one row per dimension combination (and day); parameters are bound by the caller
func buildQuery(table string, dims []model.Dimension, withDates bool) string {
	var selects, groups []string
	for _, d := range dims {
		col := dimensionColumns[d]
		selects = append(selects, fmt.Sprintf("%s AS %s", col.expression, col.alias))
		groups = append(groups, col.alias)
	}
	if withDates {
		selects = append(selects, fmt.Sprintf("FORMAT_DATE('%%Y-%%m-%%d', DATE(usage_start_time)) AS %s", dateAlias))
		groups = append(groups, dateAlias)
	}
	selects = append(selects,
		fmt.Sprintf("SUM(cost) + SUM(IFNULL((SELECT SUM(c.amount) FROM UNNEST(credits) c), 0)) AS %s", costAlias),
		currencyAlias,
	)
	groups = append(groups, currencyAlias)

	return fmt.Sprintf(`
		SELECT
			%s
		FROM %s
		WHERE
			project.id = @projectID
			AND DATE(usage_start_time) >= @startDate
			AND DATE(usage_start_time) < @endDate
		GROUP BY %s
	`, strings.Join(selects, ",\n\t\t\t"), table, strings.Join(groups, ", "))
}

func rowFromValues(values map[string]bigquery.Value, dims []model.Dimension, env model.Environment, period costrows.Period) costrows.Row {
	row := costrows.Row{
		Period:          period,
		Cost:            cast.ToFloat64(values[costAlias]),
		Currency:        cast.ToString(values[currencyAlias]),
		Groups:          map[string]string{},
		EnvironmentID:   env.ID,
		EnvironmentName: env.Name,
	}
	if period == costrows.PeriodCurrent {
		row.Date = cast.ToString(values[dateAlias])
	}
	for _, d := range dims {
		if v := cast.ToString(values[dimensionColumns[d].alias]); v != "" {
			row.Groups[string(d)] = v
		}
	}
	return row
}

func exportDimensions(dims []model.Dimension) ([]model.Dimension, []string) {
	var supported []model.Dimension
	var skipped []string
	for _, d := range dims {
		if _, ok := dimensionColumns[d]; ok {
			supported = append(supported, d)
		} else {
			skipped = append(skipped, string(d))
		}
	}
	return supported, skipped
}

func isAccessDenied(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusForbidden || apiErr.Code == http.StatusUnauthorized
	}
	return false
}

package azurecostmanagement

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/elC0mpa/cost-doctor/model"
	coreservice "github.com/elC0mpa/cost-doctor/service"
	"github.com/elC0mpa/cost-doctor/service/costrows"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const (
	aggregationName = "totalCost"
	// maxPages bounds nextLink paging per query
	maxPages = 100

	moduleName    = "armcostmanagement"
	moduleVersion = "v1.1.1"
)

func NewService(credential *Credential, names NameResolver, logger *zap.Logger) (*service, error) {
	client, err := armcostmanagement.NewQueryClient(credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost management client: %w", err)
	}
	armClient, err := arm.NewClient(moduleName, moduleVersion, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost management pipeline: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		client:   client,
		pipeline: armClient.Pipeline(),
		names:    names,
		logger:   logger,
	}, nil
}

// QueryCosts implements service.CostQueryService. Each subscription of the client is queried for the
// current and, when requested, the previous period. Subscriptions that deny access are collected and
// reported together.
func (s *service) QueryCosts(ctx context.Context, client model.Client, spec model.CostQuerySpec, includePreviousPeriod bool) (model.RawResponse, error) {
	if len(client.Environments) == 0 {
		return nil, fmt.Errorf("client %s has no subscriptions", client.ID)
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

			rows, err := s.usage(ctx, env, spec, window, period)
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

func (s *service) usage(ctx context.Context, env model.Environment, spec model.CostQuerySpec, window model.TimePeriod, period costrows.Period) ([]costrows.Row, error) {
	definition := buildQueryDefinition(spec, window)
	resp, err := s.client.Usage(ctx, scope(env.ID), definition, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query costs for subscription %s: %w", env.ID, err)
	}

	pages, err := s.remainingPages(ctx, resp.QueryResult, definition)
	if err != nil {
		return nil, fmt.Errorf("failed to page costs for subscription %s: %w", env.ID, err)
	}

	var rows []costrows.Row
	for _, page := range pages {
		rows = append(rows, rowsFromResult(page, spec.GroupingNames(), env, period)...)
	}
	return rows, nil
}

// remainingPages returns first followed by every page reachable through nextLink
func (s *service) remainingPages(ctx context.Context, first armcostmanagement.QueryResult, definition armcostmanagement.QueryDefinition) ([]armcostmanagement.QueryResult, error) {
	pages := []armcostmanagement.QueryResult{first}
	for link := nextLink(first); link != ""; {
		if len(pages) >= maxPages {
			return nil, fmt.Errorf("result exceeds %d pages", maxPages)
		}
		s.logger.Debug("following cost management next link", zap.Int("page", len(pages)+1))

		page, err := s.nextPage(ctx, link, definition)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
		link = nextLink(page)
	}
	return pages, nil
}

// nextPage posts the original definition to a nextLink URL, which carries the skip token
func (s *service) nextPage(ctx context.Context, link string, definition armcostmanagement.QueryDefinition) (armcostmanagement.QueryResult, error) {
	var result armcostmanagement.QueryResult

	req, err := runtime.NewRequest(ctx, http.MethodPost, link)
	if err != nil {
		return result, fmt.Errorf("failed to create next page request: %w", err)
	}
	if err := runtime.MarshalAsJSON(req, definition); err != nil {
		return result, fmt.Errorf("failed to encode query definition: %w", err)
	}

	resp, err := s.pipeline.Do(req)
	if err != nil {
		return result, fmt.Errorf("failed to fetch next page: %w", err)
	}
	if !runtime.HasStatusCode(resp, http.StatusOK) {
		return result, runtime.NewResponseError(resp)
	}
	if err := runtime.UnmarshalAsJSON(resp, &result); err != nil {
		return result, fmt.Errorf("failed to decode next page: %w", err)
	}
	return result, nil
}

func nextLink(result armcostmanagement.QueryResult) string {
	if result.Properties == nil {
		return ""
	}
	return deref(result.Properties.NextLink)
}

// CheckAccess runs a one-day ungrouped query against the subscription
func (s *service) CheckAccess(ctx context.Context, subscriptionID string) (bool, error) {
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	definition := armcostmanagement.QueryDefinition{
		Type:      to.Ptr(armcostmanagement.ExportTypeActualCost),
		Timeframe: to.Ptr(armcostmanagement.TimeframeTypeCustom),
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: to.Ptr(model.StartOfDay(yesterday)),
			To:   to.Ptr(model.EndOfDay(yesterday)),
		},
		Dataset: &armcostmanagement.QueryDataset{
			Aggregation: map[string]*armcostmanagement.QueryAggregation{
				aggregationName: {
					Name:     to.Ptr("Cost"),
					Function: to.Ptr(armcostmanagement.FunctionTypeSum),
				},
			},
		},
	}

	if _, err := s.client.Usage(ctx, scope(subscriptionID), definition, nil); err != nil {
		if isAccessDenied(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check cost access for subscription %s: %w", subscriptionID, err)
	}
	return true, nil
}

// GetSetupInstructions returns the role assignment the operator has to create
func (s *service) GetSetupInstructions(ctx context.Context, subscriptionID string) (string, error) {
	name := subscriptionID
	if s.names != nil {
		name = s.names.EnvironmentName(ctx, subscriptionID)
	}
	return setupInstructions(subscriptionID, name), nil
}

func setupInstructions(subscriptionID, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subscription %q (%s) does not grant cost read access.\n\n", name, subscriptionID)
	b.WriteString("Assign the Cost Management Reader role to the identity running cost-doctor:\n\n")
	fmt.Fprintf(&b, "  az role assignment create \\\n    --assignee <principal-id> \\\n    --role \"Cost Management Reader\" \\\n    --scope %s\n\n", scope(subscriptionID))
	b.WriteString("Role assignments can take a few minutes to propagate. Run the access check again afterwards.\n")
	return b.String()
}

func buildQueryDefinition(spec model.CostQuerySpec, window model.TimePeriod) armcostmanagement.QueryDefinition {
	function := armcostmanagement.FunctionType(spec.Aggregation.Function)
	dataset := &armcostmanagement.QueryDataset{
		Aggregation: map[string]*armcostmanagement.QueryAggregation{
			aggregationName: {
				Name:     to.Ptr(spec.Aggregation.Metric),
				Function: to.Ptr(function),
			},
		},
	}

	if spec.Granularity == model.GranularityDaily {
		dataset.Granularity = to.Ptr(armcostmanagement.GranularityTypeDaily)
	}

	for _, g := range spec.Grouping {
		dataset.Grouping = append(dataset.Grouping, &armcostmanagement.QueryGrouping{
			Type: to.Ptr(armcostmanagement.QueryColumnTypeDimension),
			Name: to.Ptr(string(g.Name)),
		})
	}

	return armcostmanagement.QueryDefinition{
		Type:      to.Ptr(armcostmanagement.ExportType(spec.Kind)),
		Timeframe: to.Ptr(armcostmanagement.TimeframeType(spec.Timeframe)),
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: to.Ptr(window.From),
			To:   to.Ptr(window.To),
		},
		Dataset: dataset,
	}
}

// rowsFromResult maps result rows by column name; column order is not fixed by the API
func rowsFromResult(result armcostmanagement.QueryResult, grouping []model.Dimension, env model.Environment, period costrows.Period) []costrows.Row {
	if result.Properties == nil {
		return nil
	}

	columns := make([]column, 0, len(result.Properties.Columns))
	for _, c := range result.Properties.Columns {
		if c == nil {
			columns = append(columns, column{})
			continue
		}
		columns = append(columns, column{name: deref(c.Name), kind: deref(c.Type)})
	}

	costIdx := findColumn(columns, aggregationName, "Cost", "PreTaxCost", "CostUSD")
	dateIdx := findColumn(columns, "UsageDate")
	currencyIdx := findColumn(columns, "Currency")
	if costIdx < 0 {
		return nil
	}

	groupIdx := make(map[model.Dimension]int, len(grouping))
	for _, d := range grouping {
		groupIdx[d] = findColumn(columns, string(d))
	}

	var rows []costrows.Row
	for _, values := range result.Properties.Rows {
		if costIdx >= len(values) {
			continue
		}
		cost, err := cast.ToFloat64E(values[costIdx])
		if err != nil {
			continue
		}

		row := costrows.Row{
			Period:          period,
			Cost:            cost,
			Currency:        valueAt(values, currencyIdx),
			Groups:          map[string]string{},
			EnvironmentID:   env.ID,
			EnvironmentName: env.Name,
		}
		if period == costrows.PeriodCurrent {
			row.Date = usageDate(valueAt(values, dateIdx))
		}
		for d, idx := range groupIdx {
			if v := valueAt(values, idx); v != "" {
				row.Groups[string(d)] = v
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func findColumn(columns []column, names ...string) int {
	for _, name := range names {
		for i, c := range columns {
			if strings.EqualFold(c.name, name) {
				return i
			}
		}
	}
	return -1
}

func valueAt(values []any, idx int) string {
	if idx < 0 || idx >= len(values) || values[idx] == nil {
		return ""
	}
	if f, ok := values[idx].(float64); ok {
		return cast.ToString(int64(f))
	}
	return cast.ToString(values[idx])
}

// usageDate turns Azure's yyyymmdd number into yyyy-mm-dd
func usageDate(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := time.Parse("20060102", raw)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02")
}

func isAccessDenied(err error) bool {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode == http.StatusUnauthorized || respErr.StatusCode == http.StatusForbidden
	}
	return false
}

func scope(subscriptionID string) string {
	return fmt.Sprintf("/subscriptions/%s", subscriptionID)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

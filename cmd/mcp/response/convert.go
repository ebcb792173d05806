package response

import (
	"time"

	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service/comparison"
	"github.com/elC0mpa/cost-doctor/service/preset"
	"github.com/elC0mpa/cost-doctor/utils"
)

const dateLayout = "2006-01-02"

// ConvertClient converts model.Client to response.ClientInfo
func ConvertClient(client *model.Client) *ClientInfo {
	if client == nil {
		return nil
	}

	environments := make([]EnvironmentInfo, 0, len(client.Environments))
	for _, env := range client.Environments {
		environments = append(environments, EnvironmentInfo{ID: env.ID, Name: env.Name})
	}
	return &ClientInfo{
		ID:           client.ID,
		Name:         client.Name,
		Provider:     client.Provider,
		Environments: environments,
	}
}

// ConvertPresets resolves every preset against now
func ConvertPresets(now time.Time) []PresetInfo {
	presets := preset.All()
	out := make([]PresetInfo, 0, len(presets))
	for _, p := range presets {
		period := p.Resolve(now)
		out = append(out, PresetInfo{
			Key:   string(p.Key),
			Label: p.Label,
			From:  period.From.Format(dateLayout),
			To:    period.To.Format(dateLayout),
		})
	}
	return out
}

// ConvertQueryResult converts a snapshot and its (possibly anonymized) result
func ConvertQueryResult(snapshot model.QuerySnapshot, result model.QueryResult, anonymized bool) *CostQuery {
	grouping := make([]string, 0, len(snapshot.Spec.Grouping))
	for _, d := range snapshot.Spec.GroupingNames() {
		grouping = append(grouping, string(d))
	}

	items := make([]LineItem, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, LineItem{
			Name:               item.Name,
			ResourceType:       item.ResourceType,
			ResourceGroup:      item.ResourceGroup,
			SubscriptionID:     item.SubscriptionID,
			SubscriptionName:   item.SubscriptionName,
			Location:           item.Location,
			PreviousPeriodCost: item.PreviousPeriodCost,
			CurrentPeriodCost:  item.CurrentPeriodCost,
			Difference:         item.CostDifference,
			PercentChange:      percentChange(item.PercentageChange),
			Change:             utils.FormatPercentage(item.PercentageChange),
			Currency:           item.Currency,
			Grouping:           item.GroupingValues,
			DailyCosts:         convertDailyCosts(item.DailyCosts),
		})
	}

	summary := result.Summary
	return &CostQuery{
		QueryID:        snapshot.ID,
		ClientID:       snapshot.ClientID,
		SubmittedAt:    snapshot.SubmittedAt,
		CurrentPeriod:  convertPeriod(snapshot.Spec.TimePeriod),
		PreviousPeriod: convertPeriod(snapshot.Spec.PreviousPeriod()),
		Granularity:    string(snapshot.Spec.Granularity),
		Grouping:       grouping,
		Anonymized:     anonymized,
		Summary: CostSummary{
			PreviousPeriodCost: summary.PreviousPeriodCost,
			CurrentPeriodCost:  summary.CurrentPeriodCost,
			Difference:         summary.CostDifference,
			PercentChange:      percentChange(summary.PercentageChange),
			Change:             utils.FormatPercentage(summary.PercentageChange),
			Currency:           summary.Currency,
			ItemCount:          summary.ItemCount,
			DailyCosts:         convertDailyCosts(summary.DailyCosts),
		},
		Items: items,
	}
}

// percentChange hides the not-applicable sentinel behind a JSON null
func percentChange(p float64) *float64 {
	if p == comparison.NotApplicable {
		return nil
	}
	return &p
}

func convertPeriod(p model.TimePeriod) Period {
	return Period{From: p.From.Format(dateLayout), To: p.To.Format(dateLayout)}
}

func convertDailyCosts(days []model.DailyCost) []DailyCost {
	if len(days) == 0 {
		return nil
	}
	out := make([]DailyCost, 0, len(days))
	for _, d := range days {
		out = append(out, DailyCost{Date: d.Date, Amount: d.Cost})
	}
	return out
}

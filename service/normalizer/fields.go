package normalizer

// Candidate field names, upstream convention first, canonical second.
var (
	fieldItems              = []string{"Items", "items", "LineItems", "lineItems"}
	fieldSummary            = []string{"Summary", "summary"}
	fieldName               = []string{"Name", "name", "ResourceName", "resourceName"}
	fieldResourceType       = []string{"ResourceType", "resourceType"}
	fieldResourceGroup      = []string{"ResourceGroup", "resourceGroup", "ResourceGroupName", "resourceGroupName"}
	fieldSubscriptionID     = []string{"SubscriptionId", "subscriptionId", "SubscriptionID"}
	fieldSubscriptionName   = []string{"SubscriptionName", "subscriptionName"}
	fieldLocation           = []string{"Location", "location", "ResourceLocation", "resourceLocation"}
	fieldPreviousPeriodCost = []string{"PreviousPeriodCost", "previousPeriodCost"}
	fieldCurrentPeriodCost  = []string{"CurrentPeriodCost", "currentPeriodCost"}
	fieldCurrency           = []string{"Currency", "currency"}
	fieldDailyCosts         = []string{"DailyCosts", "dailyCosts"}
	fieldGroupingValues     = []string{"GroupingValues", "groupingValues"}
	fieldDate               = []string{"Date", "date", "UsageDate", "usageDate"}
	fieldCost               = []string{"Cost", "cost"}
)

// lookup returns the first non-nil value among the candidate names
func lookup(record map[string]any, names []string) (any, bool) {
	if record == nil {
		return nil, false
	}
	for _, name := range names {
		if v, ok := record[name]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

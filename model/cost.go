package model

// RawResponse is a decoded backend response before normalization
type RawResponse = map[string]any

// DailyCost is the cost of a single day
type DailyCost struct {
	Date string  `json:"date"`
	Cost float64 `json:"cost"`
}

// CostLineItem is one normalized row of a cost query
type CostLineItem struct {
	Name               string            `json:"name"`
	ResourceType       string            `json:"resourceType"`
	ResourceGroup      string            `json:"resourceGroup"`
	SubscriptionID     string            `json:"subscriptionId"`
	SubscriptionName   string            `json:"subscriptionName"`
	Location           string            `json:"location"`
	PreviousPeriodCost float64           `json:"previousPeriodCost"`
	CurrentPeriodCost  float64           `json:"currentPeriodCost"`
	CostDifference     float64           `json:"costDifference"`
	PercentageChange   float64           `json:"percentageChange"`
	Currency           string            `json:"currency"`
	DailyCosts         []DailyCost       `json:"dailyCosts"`
	GroupingValues     map[string]string `json:"groupingValues"`
}

// CostSummary aggregates all line items of a result
type CostSummary struct {
	PreviousPeriodCost float64     `json:"previousPeriodCost"`
	CurrentPeriodCost  float64     `json:"currentPeriodCost"`
	CostDifference     float64     `json:"costDifference"`
	PercentageChange   float64     `json:"percentageChange"`
	Currency           string      `json:"currency"`
	ItemCount          int         `json:"itemCount"`
	DailyCosts         []DailyCost `json:"dailyCosts"`
}

// QueryResult is the normalized outcome of one submission
type QueryResult struct {
	Items   []CostLineItem `json:"items"`
	Summary CostSummary    `json:"summary"`
}

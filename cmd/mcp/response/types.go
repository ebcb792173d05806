package response

import "time"

// ClientInfo represents the selected client and its billing scopes
type ClientInfo struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Provider     string            `json:"provider"`
	Environments []EnvironmentInfo `json:"environments"`
}

// EnvironmentInfo represents one subscription, account or project
type EnvironmentInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PresetInfo represents a date preset resolved against the current time
type PresetInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// DailyCost represents the cost of one day
type DailyCost struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// LineItem represents one grouped cost row compared with the previous period
type LineItem struct {
	Name               string            `json:"name"`
	ResourceType       string            `json:"resource_type,omitempty"`
	ResourceGroup      string            `json:"resource_group,omitempty"`
	SubscriptionID     string            `json:"subscription_id,omitempty"`
	SubscriptionName   string            `json:"subscription_name,omitempty"`
	Location           string            `json:"location,omitempty"`
	PreviousPeriodCost float64           `json:"previous_period_cost"`
	CurrentPeriodCost  float64           `json:"current_period_cost"`
	Difference         float64           `json:"difference"`
	PercentChange      *float64          `json:"percent_change"`
	Change             string            `json:"change"`
	Currency           string            `json:"currency"`
	Grouping           map[string]string `json:"grouping,omitempty"`
	DailyCosts         []DailyCost       `json:"daily_costs,omitempty"`
}

// CostSummary represents the totals of a query
type CostSummary struct {
	PreviousPeriodCost float64     `json:"previous_period_cost"`
	CurrentPeriodCost  float64     `json:"current_period_cost"`
	Difference         float64     `json:"difference"`
	PercentChange      *float64    `json:"percent_change"`
	Change             string      `json:"change"`
	Currency           string      `json:"currency"`
	ItemCount          int         `json:"item_count"`
	DailyCosts         []DailyCost `json:"daily_costs,omitempty"`
}

// Period represents an inclusive date range
type Period struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CostQuery represents the result of a submitted cost query
type CostQuery struct {
	QueryID        string      `json:"query_id"`
	ClientID       string      `json:"client_id"`
	SubmittedAt    time.Time   `json:"submitted_at"`
	CurrentPeriod  Period      `json:"current_period"`
	PreviousPeriod Period      `json:"previous_period"`
	Granularity    string      `json:"granularity"`
	Grouping       []string    `json:"grouping"`
	Anonymized     bool        `json:"anonymized"`
	Summary        CostSummary `json:"summary"`
	Items          []LineItem  `json:"items"`
}

// SetupRequired is returned instead of a result when environments lack cost access
type SetupRequired struct {
	Environments []string          `json:"environments"`
	Instructions map[string]string `json:"instructions"`
	Message      string            `json:"message"`
}

// AccessCheck represents the access state of one environment
type AccessCheck struct {
	Environment string `json:"environment"`
	HasAccess   bool   `json:"has_access"`
}

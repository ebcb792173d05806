package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Granularity controls whether costs come back as one total per period or per day
type Granularity string

const (
	GranularityNone  Granularity = "None"
	GranularityDaily Granularity = "Daily"
)

// ParseGranularity accepts the granularity names case-insensitively
func ParseGranularity(value string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none":
		return GranularityNone, nil
	case "daily":
		return GranularityDaily, nil
	}
	return "", fmt.Errorf("unknown granularity %q", value)
}

// Dimension is a categorical attribute used to split cost totals into rows
type Dimension string

const (
	DimensionLocation       Dimension = "ResourceLocation"
	DimensionResourceType   Dimension = "ResourceType"
	DimensionMeterCategory  Dimension = "MeterCategory"
	DimensionServiceName    Dimension = "ServiceName"
	DimensionResourceID     Dimension = "ResourceId"
	DimensionSubscriptionID Dimension = "SubscriptionId"
	DimensionResourceGroup  Dimension = "ResourceGroupName"
	DimensionTags           Dimension = "Tags"
)

// Dimensions lists every supported grouping dimension in display order
var Dimensions = []Dimension{
	DimensionLocation,
	DimensionResourceType,
	DimensionMeterCategory,
	DimensionServiceName,
	DimensionResourceID,
	DimensionSubscriptionID,
	DimensionResourceGroup,
	DimensionTags,
}

var dimensionAliases = map[string]Dimension{
	"location":        DimensionLocation,
	"resource-type":   DimensionResourceType,
	"meter-category":  DimensionMeterCategory,
	"service-name":    DimensionServiceName,
	"service":         DimensionServiceName,
	"resource-id":     DimensionResourceID,
	"subscription-id": DimensionSubscriptionID,
	"subscription":    DimensionSubscriptionID,
	"resource-group":  DimensionResourceGroup,
	"tags":            DimensionTags,
}

// ParseDimension resolves a dimension from its canonical name or a kebab-case alias
func ParseDimension(value string) (Dimension, error) {
	trimmed := strings.TrimSpace(value)
	for _, d := range Dimensions {
		if strings.EqualFold(string(d), trimmed) {
			return d, nil
		}
	}
	if d, ok := dimensionAliases[strings.ToLower(trimmed)]; ok {
		return d, nil
	}
	return "", fmt.Errorf("unknown dimension %q", value)
}

// Label returns a short column header for the dimension
func (d Dimension) Label() string {
	switch d {
	case DimensionLocation:
		return "Location"
	case DimensionResourceType:
		return "Resource Type"
	case DimensionMeterCategory:
		return "Meter Category"
	case DimensionServiceName:
		return "Service"
	case DimensionResourceID:
		return "Resource"
	case DimensionSubscriptionID:
		return "Subscription"
	case DimensionResourceGroup:
		return "Resource Group"
	case DimensionTags:
		return "Tags"
	}
	return string(d)
}

// DimensionRef references a grouping dimension in a query
type DimensionRef struct {
	Kind string    `json:"type"`
	Name Dimension `json:"name"`
}

// NewDimensionRef returns a "Dimension" kind reference
func NewDimensionRef(name Dimension) DimensionRef {
	return DimensionRef{Kind: "Dimension", Name: name}
}

// TimePeriod is an inclusive [From, To] interval
type TimePeriod struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Days returns the number of calendar days covered by the period
func (p TimePeriod) Days() int {
	from := StartOfDay(p.From)
	to := StartOfDay(p.To)
	return int(to.Sub(from).Hours()/24) + 1
}

// Aggregation selects the metric and the function applied to it
type Aggregation struct {
	Metric   string `json:"name"`
	Function string `json:"function"`
}

// CostQuerySpec is the canonical query descriptor sent to a billing backend
type CostQuerySpec struct {
	Kind        string         `json:"type"`
	Timeframe   string         `json:"timeframe"`
	TimePeriod  TimePeriod     `json:"timePeriod"`
	Granularity Granularity    `json:"granularity"`
	Aggregation Aggregation    `json:"aggregation"`
	Grouping    []DimensionRef `json:"grouping"`
}

// PreviousPeriod returns the window of equal length ending the day before the query starts
func (q CostQuerySpec) PreviousPeriod() TimePeriod {
	days := q.TimePeriod.Days()
	from := StartOfDay(q.TimePeriod.From)
	return TimePeriod{
		From: from.AddDate(0, 0, -days),
		To:   EndOfDay(from.AddDate(0, 0, -1)),
	}
}

// GroupingNames returns the grouped dimensions in column order
func (q CostQuerySpec) GroupingNames() []Dimension {
	names := make([]Dimension, 0, len(q.Grouping))
	for _, g := range q.Grouping {
		names = append(names, g.Name)
	}
	return names
}

// Preview renders the query exactly as it is submitted
func (q CostQuerySpec) Preview() (string, error) {
	data, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render query preview: %w", err)
	}
	return string(data), nil
}

// QuerySnapshot is the frozen query captured at submission time
type QuerySnapshot struct {
	ID          string        `json:"id"`
	ClientID    string        `json:"clientId"`
	SubmittedAt time.Time     `json:"submittedAt"`
	Spec        CostQuerySpec `json:"query"`
}

// StartOfDay truncates t to midnight UTC
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last second of t's day in UTC
func EndOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}

package anonymize

import (
	"fmt"
	"strings"

	"github.com/elC0mpa/cost-doctor/model"
)

type category struct {
	label    string
	keywords []string
}

// Checked in order; the first category with a matching keyword wins.
var categories = []category{
	{label: "Storage", keywords: []string{"storage", "blob", "disk"}},
	{label: "Database", keywords: []string{"sql", "database", "cosmos", "postgres", "mysql", "redis"}},
	{label: "KeyVault", keywords: []string{"key vault", "keyvault", "vault"}},
	{label: "WebApp", keywords: []string{"app service", "web", "website", "function"}},
	{label: "VM", keywords: []string{"virtual machine", "virtualmachine", "compute"}},
	{label: "Analytics", keywords: []string{"log", "analytics", "insights", "monitor"}},
}

var subscriptionLabels = []string{"Production", "Development", "Staging", "Testing", "Demo", "Sandbox"}

var (
	groupEnvironments = []string{"prod", "dev", "stg", "test", "demo"}
	groupApps         = []string{"web", "api", "data", "core", "ops"}
)

// DefaultLocation replaces region codes that are not in the lookup table
const DefaultLocation = "East US"

var locations = map[string]string{
	"eastus":             "East US",
	"eastus2":            "East US 2",
	"westus":             "West US",
	"westus2":            "West US 2",
	"westus3":            "West US 3",
	"centralus":          "Central US",
	"northcentralus":     "North Central US",
	"southcentralus":     "South Central US",
	"canadacentral":      "Canada Central",
	"brazilsouth":        "Brazil South",
	"northeurope":        "North Europe",
	"westeurope":         "West Europe",
	"uksouth":            "UK South",
	"ukwest":             "UK West",
	"francecentral":      "France Central",
	"germanywestcentral": "Germany West Central",
	"swedencentral":      "Sweden Central",
	"southeastasia":      "Southeast Asia",
	"eastasia":           "East Asia",
	"japaneast":          "Japan East",
	"australiaeast":      "Australia East",
	"centralindia":       "Central India",
}

// Record returns an obfuscated copy of item. The input is never modified.
func Record(item model.CostLineItem, index int) model.CostLineItem {
	out := item
	out.Name = ResourceName(item.Name, index)
	out.SubscriptionName = SubscriptionName(index)
	out.SubscriptionID = fmt.Sprintf("00000000-0000-0000-0000-%012d", wrap(index, 1_000_000_000_000))
	out.ResourceGroup = ResourceGroup(index)
	out.Location = Location(item.Location)

	if item.DailyCosts != nil {
		out.DailyCosts = append([]model.DailyCost(nil), item.DailyCosts...)
	}
	if item.GroupingValues != nil {
		out.GroupingValues = make(map[string]string, len(item.GroupingValues))
		for k, v := range item.GroupingValues {
			out.GroupingValues[k] = groupingValue(model.Dimension(k), v, index)
		}
	}

	return out
}

// ResourceName classifies name by keyword and returns "{Category}-{Letter}"
func ResourceName(name string, index int) string {
	lower := strings.ToLower(name)
	for _, c := range categories {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return fmt.Sprintf("%s-%c", c.label, letter(index))
			}
		}
	}
	return fmt.Sprintf("Resource-%c", letter(index))
}

// SubscriptionName cycles through fixed labels, five rows per label
func SubscriptionName(index int) string {
	return subscriptionLabels[wrap(index, 5*len(subscriptionLabels))/5]
}

// ResourceGroup synthesizes "rg-{env}-{app}-001"
func ResourceGroup(index int) string {
	i := wrap(index, len(groupEnvironments)*len(groupApps))
	env := groupEnvironments[i%len(groupEnvironments)]
	app := groupApps[(i/len(groupEnvironments))%len(groupApps)]
	return fmt.Sprintf("rg-%s-%s-001", env, app)
}

// Location maps a region code to its display name
func Location(code string) string {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(code), " ", ""))
	if name, ok := locations[key]; ok {
		return name
	}
	return DefaultLocation
}

func groupingValue(dim model.Dimension, value string, index int) string {
	switch dim {
	case model.DimensionResourceID, model.DimensionServiceName, model.DimensionMeterCategory, model.DimensionResourceType:
		return ResourceName(value, index)
	case model.DimensionSubscriptionID:
		return SubscriptionName(index)
	case model.DimensionResourceGroup:
		return ResourceGroup(index)
	case model.DimensionLocation:
		return Location(value)
	case model.DimensionTags:
		return fmt.Sprintf("tag-%c", letter(index))
	}
	return value
}

func letter(index int) rune {
	return rune('A' + wrap(index, 26))
}

// wrap reduces index into [0, n) for any int, including math.MinInt
func wrap(index, n int) int {
	return ((index % n) + n) % n
}

package anonymize_test

import (
	"math"
	"strings"
	"testing"

	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service/anonymize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceName(t *testing.T) {
	tests := []struct {
		name  string
		index int
		want  string
	}{
		{"stprodeastus01 Storage Account", 0, "Storage-A"},
		{"Azure SQL Database", 1, "Database-B"},
		{"kv-secrets (Key Vault)", 2, "KeyVault-C"},
		{"Azure App Service", 3, "WebApp-D"},
		{"Virtual Machines", 4, "VM-E"},
		{"Log Analytics", 5, "Analytics-F"},
		{"Bandwidth", 6, "Resource-G"},
		{"Bandwidth", 26, "Resource-A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, anonymize.ResourceName(tt.name, tt.index))
		})
	}
}

func TestResourceName_DistinctLetters(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 26; i++ {
		seen[anonymize.ResourceName("blob storage", i)] = true
	}
	assert.Len(t, seen, 26)
}

func TestSubscriptionName(t *testing.T) {
	assert.Equal(t, "Production", anonymize.SubscriptionName(0))
	assert.Equal(t, "Production", anonymize.SubscriptionName(4))
	assert.Equal(t, "Development", anonymize.SubscriptionName(5))
	assert.Equal(t, "Sandbox", anonymize.SubscriptionName(25))
	assert.Equal(t, "Production", anonymize.SubscriptionName(30))
}

func TestResourceGroup(t *testing.T) {
	assert.Equal(t, "rg-prod-web-001", anonymize.ResourceGroup(0))
	assert.Equal(t, "rg-dev-web-001", anonymize.ResourceGroup(1))
	assert.Equal(t, "rg-prod-api-001", anonymize.ResourceGroup(5))
	assert.Equal(t, "rg-demo-ops-001", anonymize.ResourceGroup(24))
	assert.Equal(t, "rg-prod-web-001", anonymize.ResourceGroup(25))
}

func TestNegativeIndexes(t *testing.T) {
	assert.Equal(t, "Sandbox", anonymize.SubscriptionName(-1))
	assert.Equal(t, "rg-demo-ops-001", anonymize.ResourceGroup(-1))

	for _, index := range []int{math.MinInt, math.MinInt + 1, -1, math.MaxInt} {
		require.NotPanics(t, func() {
			anonymize.SubscriptionName(index)
			anonymize.ResourceGroup(index)
			anonymize.ResourceName("sql server", index)

			out := anonymize.Record(model.CostLineItem{Name: "vm-prod"}, index)
			assert.True(t, strings.HasPrefix(out.SubscriptionID, "00000000-0000-0000-0000-"))
			assert.NotContains(t, out.SubscriptionID, "--")
		})
	}
}

func TestLocation(t *testing.T) {
	assert.Equal(t, "West Europe", anonymize.Location("westeurope"))
	assert.Equal(t, "West Europe", anonymize.Location("West Europe"))
	assert.Equal(t, "East US 2", anonymize.Location("EASTUS2"))
	assert.Equal(t, anonymize.DefaultLocation, anonymize.Location("moonbase1"))
	assert.Equal(t, anonymize.DefaultLocation, anonymize.Location(""))
}

func TestRecord(t *testing.T) {
	item := model.CostLineItem{
		Name:              "stcontoso",
		ResourceType:      "microsoft.storage/storageaccounts",
		ResourceGroup:     "rg-contoso-prod",
		SubscriptionID:    "6f1c2d8e-real",
		SubscriptionName:  "Contoso Prod",
		Location:          "northeurope",
		CurrentPeriodCost: 42,
		DailyCosts:        []model.DailyCost{{Date: "2024-01-01", Cost: 42}},
		GroupingValues: map[string]string{
			string(model.DimensionResourceGroup): "rg-contoso-prod",
			string(model.DimensionLocation):      "northeurope",
		},
	}

	out := anonymize.Record(item, 7)

	assert.Equal(t, "Resource-H", out.Name)
	assert.Equal(t, "Development", out.SubscriptionName)
	assert.Equal(t, "rg-stg-api-001", out.ResourceGroup)
	assert.Equal(t, "North Europe", out.Location)
	assert.NotContains(t, out.SubscriptionID, "real")
	assert.Equal(t, 42.0, out.CurrentPeriodCost)
	assert.Equal(t, "rg-stg-api-001", out.GroupingValues[string(model.DimensionResourceGroup)])

	// the stored record stays untouched
	assert.Equal(t, "stcontoso", item.Name)
	assert.Equal(t, "rg-contoso-prod", item.GroupingValues[string(model.DimensionResourceGroup)])

	out.DailyCosts[0].Cost = 0
	assert.Equal(t, 42.0, item.DailyCosts[0].Cost)
}

func TestRecord_Stable(t *testing.T) {
	item := model.CostLineItem{Name: "sql-prod", Location: "uksouth", GroupingValues: map[string]string{}}
	first := anonymize.Record(item, 3)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, anonymize.Record(item, 3))
	}
}

func TestState(t *testing.T) {
	var s anonymize.State
	assert.False(t, s.Enabled())
	assert.True(t, s.Toggle())
	assert.True(t, s.Enabled())
	s.Set(false)
	assert.False(t, s.Enabled())
}

package azurecostmanagement

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/elC0mpa/cost-doctor/model"
	"go.uber.org/zap"
)

// NameResolver looks up a subscription display name
type NameResolver interface {
	EnvironmentName(ctx context.Context, subscriptionID string) string
}

type service struct {
	client *armcostmanagement.QueryClient
	// pipeline follows nextLink URLs, which the generated client cannot
	pipeline runtime.Pipeline
	names    NameResolver
	logger   *zap.Logger
}

type CostManagementService interface {
	QueryCosts(ctx context.Context, client model.Client, spec model.CostQuerySpec, includePreviousPeriod bool) (model.RawResponse, error)
	CheckAccess(ctx context.Context, subscriptionID string) (bool, error)
	GetSetupInstructions(ctx context.Context, subscriptionID string) (string, error)
}

// Credential is passed to allow reuse across services
type Credential = azidentity.DefaultAzureCredential

// column is one column of a Cost Management result
type column struct {
	name string
	kind string
}

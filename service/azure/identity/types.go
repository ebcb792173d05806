package azureidentity

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/elC0mpa/cost-doctor/model"
)

type service struct {
	subscriptionIDs []string
	client          *armsubscriptions.Client
}

type IdentityService interface {
	GetSubscriptionInfo(ctx context.Context, subscriptionID string) (*armsubscriptions.Subscription, error)
	ListEnvironments(ctx context.Context) ([]model.Environment, error)
	EnvironmentName(ctx context.Context, subscriptionID string) string
}

// Credential is passed to allow reuse across services
type Credential = azidentity.DefaultAzureCredential

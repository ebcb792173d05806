package azureconfig

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

type service struct {
	subscriptionIDs []string
	credential      *azidentity.DefaultAzureCredential
}

type ConfigService interface {
	GetCredential() *azidentity.DefaultAzureCredential
	GetSubscriptionIDs() []string
}

package azureconfig

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// NewService builds the shared credential. An empty subscription list means every enabled
// subscription the credential can see.
func NewService(tenantID string, subscriptionIDs []string) (*service, error) {
	// DefaultAzureCredential covers environment variables, managed identity and the Azure CLI
	var opts *azidentity.DefaultAzureCredentialOptions
	if tenantID != "" {
		opts = &azidentity.DefaultAzureCredentialOptions{TenantID: tenantID}
	}

	credential, err := azidentity.NewDefaultAzureCredential(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	return &service{
		subscriptionIDs: append([]string(nil), subscriptionIDs...),
		credential:      credential,
	}, nil
}

func (s *service) GetCredential() *azidentity.DefaultAzureCredential {
	return s.credential
}

func (s *service) GetSubscriptionIDs() []string {
	return append([]string(nil), s.subscriptionIDs...)
}

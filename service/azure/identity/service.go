package azureidentity

import (
	"context"
	"fmt"
	"sort"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/elC0mpa/cost-doctor/model"
)

// NewService lists subscriptions; when subscriptionIDs is set only those are reported
func NewService(subscriptionIDs []string, credential *Credential) (*service, error) {
	client, err := armsubscriptions.NewClient(credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscriptions client: %w", err)
	}

	return &service{
		subscriptionIDs: append([]string(nil), subscriptionIDs...),
		client:          client,
	}, nil
}

// GetSubscriptionInfo returns detailed Azure subscription information
func (s *service) GetSubscriptionInfo(ctx context.Context, subscriptionID string) (*armsubscriptions.Subscription, error) {
	resp, err := s.client.Get(ctx, subscriptionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription info: %w", err)
	}

	return &resp.Subscription, nil
}

// EnvironmentName returns the subscription display name, or the ID when it cannot be read
func (s *service) EnvironmentName(ctx context.Context, subscriptionID string) string {
	subscription, err := s.GetSubscriptionInfo(ctx, subscriptionID)
	if err != nil || subscription.DisplayName == nil {
		return subscriptionID
	}
	return *subscription.DisplayName
}

// ListEnvironments implements service.EnvironmentService
func (s *service) ListEnvironments(ctx context.Context) ([]model.Environment, error) {
	if len(s.subscriptionIDs) > 0 {
		environments := make([]model.Environment, 0, len(s.subscriptionIDs))
		for _, id := range s.subscriptionIDs {
			environments = append(environments, model.Environment{ID: id, Name: s.EnvironmentName(ctx, id)})
		}
		return environments, nil
	}

	var subscriptions []*armsubscriptions.Subscription
	pager := s.client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list subscriptions: %w", err)
		}
		subscriptions = append(subscriptions, page.Value...)
	}

	return environmentsFromSubscriptions(subscriptions), nil
}

func environmentsFromSubscriptions(subscriptions []*armsubscriptions.Subscription) []model.Environment {
	environments := []model.Environment{}
	for _, sub := range subscriptions {
		if sub == nil || sub.SubscriptionID == nil {
			continue
		}
		if sub.State != nil && *sub.State != armsubscriptions.SubscriptionStateEnabled {
			continue
		}

		env := model.Environment{ID: *sub.SubscriptionID, Name: *sub.SubscriptionID}
		if sub.DisplayName != nil && *sub.DisplayName != "" {
			env.Name = *sub.DisplayName
		}
		environments = append(environments, env)
	}

	sort.Slice(environments, func(i, j int) bool {
		return environments[i].Name < environments[j].Name
	})
	return environments
}

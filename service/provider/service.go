package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/elC0mpa/cost-doctor/config"
	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service"
	awsconfig "github.com/elC0mpa/cost-doctor/service/aws/config"
	awscostexplorer "github.com/elC0mpa/cost-doctor/service/aws/costexplorer"
	awssts "github.com/elC0mpa/cost-doctor/service/aws/sts"
	azureconfig "github.com/elC0mpa/cost-doctor/service/azure/config"
	azurecostmanagement "github.com/elC0mpa/cost-doctor/service/azure/costmanagement"
	azureidentity "github.com/elC0mpa/cost-doctor/service/azure/identity"
	"github.com/elC0mpa/cost-doctor/service/billingapi"
	gcpbilling "github.com/elC0mpa/cost-doctor/service/gcp/billing"
	gcpconfig "github.com/elC0mpa/cost-doctor/service/gcp/config"
	gcpidentity "github.com/elC0mpa/cost-doctor/service/gcp/identity"
	"go.uber.org/zap"
)

// azureManagementScope is requested when the billing API is authenticated with an Azure credential
const azureManagementScope = "https://management.azure.com/.default"

// New builds the backend selected by cfg.Provider
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("provider", cfg.Provider))

	switch cfg.Provider {
	case config.ProviderAzure:
		return newAzure(cfg, logger)
	case config.ProviderAWS:
		return newAWS(ctx, cfg, logger)
	case config.ProviderGCP:
		return newGCP(ctx, cfg, logger)
	case config.ProviderAPI:
		return newAPI(cfg)
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

func newAzure(cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	azCfg, err := azureconfig.NewService(cfg.Azure.TenantID, cfg.Azure.SubscriptionIDs)
	if err != nil {
		return nil, err
	}

	identity, err := azureidentity.NewService(azCfg.GetSubscriptionIDs(), azCfg.GetCredential())
	if err != nil {
		return nil, err
	}

	costs, err := azurecostmanagement.NewService(azCfg.GetCredential(), identity, logger)
	if err != nil {
		return nil, err
	}

	return &Backend{
		Name:         config.ProviderAzure,
		Costs:        costs,
		Permissions:  costs,
		Environments: identity,
	}, nil
}

func newAWS(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	cfgService := awsconfig.NewService(cfg.AWS.Region, cfg.AWS.Profile)
	awsCfg, err := cfgService.GetAWSCfg(ctx)
	if err != nil {
		return nil, err
	}

	costs := awscostexplorer.NewService(awsCfg, cfg.AWS.Metric, logger)

	var environments service.EnvironmentService = awssts.NewService(awsCfg)
	if len(cfg.AWS.AccountIDs) > 0 {
		environments = NewStaticEnvironments(cfg.AWS.AccountIDs)
	}

	return &Backend{
		Name:         config.ProviderAWS,
		Costs:        costs,
		Permissions:  costs,
		Environments: environments,
	}, nil
}

func newGCP(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	gcpCfg := gcpconfig.NewService(cfg.GCP.ProjectIDs, cfg.GCP.BillingAccount, cfg.GCP.ExportProject, cfg.GCP.ExportDataset)
	creds, err := gcpCfg.GetCredentials(ctx)
	if err != nil {
		return nil, err
	}

	identity, err := gcpidentity.NewService(ctx, creds, gcpCfg.GetProjectIDs(), gcpCfg.GetExportProject())
	if err != nil {
		return nil, err
	}

	billing, err := gcpbilling.NewService(ctx, creds, gcpCfg.GetExportProject(), gcpCfg.GetExportTable(), logger)
	if err != nil {
		return nil, err
	}

	return &Backend{
		Name:         config.ProviderGCP,
		Costs:        billing,
		Permissions:  identity,
		Environments: identity,
		closers:      []func() error{billing.Close},
	}, nil
}

func newAPI(cfg *config.Config) (*Backend, error) {
	opts := billingapi.Options{Endpoint: cfg.API.Endpoint, Scopes: cfg.API.Scopes}
	if cfg.API.AzureCredential {
		credential, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure credential: %w", err)
		}
		opts.Credential = credential
		if len(opts.Scopes) == 0 {
			opts.Scopes = []string{azureManagementScope}
		}
	}

	api, err := billingapi.NewService(opts)
	if err != nil {
		return nil, err
	}

	return &Backend{
		Name:         config.ProviderAPI,
		Costs:        api,
		Permissions:  api,
		Environments: NewStaticEnvironments(cfg.API.Environments),
	}, nil
}

// Client discovers the environments and returns the client the operator works on
func (b *Backend) Client(ctx context.Context, cfg config.ClientConfig) (*model.Client, error) {
	environments, err := b.Environments.ListEnvironments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list environments: %w", err)
	}

	name := cfg.Name
	if name == "" {
		name = cfg.ID
	}
	return &model.Client{
		ID:           cfg.ID,
		Name:         name,
		Provider:     b.Name,
		Environments: environments,
	}, nil
}

// Close releases provider clients
func (b *Backend) Close() error {
	var errs []error
	for _, closeFn := range b.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewStaticEnvironments reports a fixed list of environment IDs
func NewStaticEnvironments(ids []string) *staticEnvironments {
	environments := make([]model.Environment, 0, len(ids))
	for _, id := range ids {
		environments = append(environments, model.Environment{ID: id, Name: id})
	}
	return &staticEnvironments{environments: environments}
}

func (s *staticEnvironments) ListEnvironments(context.Context) ([]model.Environment, error) {
	return append([]model.Environment(nil), s.environments...), nil
}

package billingapi

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/elC0mpa/cost-doctor/model"
)

const (
	moduleName    = "cost-doctor"
	moduleVersion = "v1.0.0"
)

// Options configures the billing API client
type Options struct {
	Endpoint   string
	Credential azcore.TokenCredential
	Scopes     []string
	// Transport replaces the default HTTP client, mostly for tests
	Transport policy.Transporter
}

type service struct {
	endpoint string
	pipeline runtime.Pipeline
}

type queryRequest struct {
	Query                 model.CostQuerySpec `json:"query"`
	IncludePreviousPeriod bool                `json:"includePreviousPeriod"`
}

type accessDeniedBody struct {
	Environments []string `json:"environments"`
}

type setupInstructionsBody struct {
	Instructions string `json:"instructions"`
}

type accessBody struct {
	HasAccess bool `json:"hasAccess"`
}

// Service is the billing API: cost queries plus the permission endpoints
type Service interface {
	QueryCosts(ctx context.Context, client model.Client, spec model.CostQuerySpec, includePreviousPeriod bool) (model.RawResponse, error)
	GetSetupInstructions(ctx context.Context, environmentID string) (string, error)
	CheckAccess(ctx context.Context, environmentID string) (bool, error)
}

package service

import (
	"context"

	"github.com/elC0mpa/cost-doctor/model"
)

// CostQueryService submits a cost query to a billing backend
type CostQueryService interface {
	QueryCosts(ctx context.Context, client model.Client, spec model.CostQuerySpec, includePreviousPeriod bool) (model.RawResponse, error)
}

// PermissionService answers whether an environment grants cost-read access
type PermissionService interface {
	GetSetupInstructions(ctx context.Context, environmentID string) (string, error)
	CheckAccess(ctx context.Context, environmentID string) (bool, error)
}

// EnvironmentService discovers the billing scopes reachable with the current credentials
type EnvironmentService interface {
	ListEnvironments(ctx context.Context) ([]model.Environment, error)
}

// ClientContext exposes the client currently selected by the operator
type ClientContext interface {
	SelectedClient() (*model.Client, bool)
}

package gcpidentity

import (
	"context"

	"github.com/elC0mpa/cost-doctor/model"
	"google.golang.org/api/cloudbilling/v1"
	"google.golang.org/api/cloudresourcemanager/v1"
)

type service struct {
	projectIDs    []string
	exportProject string
	client        *cloudresourcemanager.Service
	billing       *cloudbilling.APIService
}

type IdentityService interface {
	GetProjectInfo(ctx context.Context, projectID string) (*cloudresourcemanager.Project, error)
	ListEnvironments(ctx context.Context) ([]model.Environment, error)
	CheckAccess(ctx context.Context, projectID string) (bool, error)
	GetSetupInstructions(ctx context.Context, projectID string) (string, error)
}

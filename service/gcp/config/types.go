package gcpconfig

import (
	"context"

	"golang.org/x/oauth2/google"
)

type service struct {
	projectIDs     []string
	billingAccount string
	exportProject  string
	exportDataset  string
}

type ConfigService interface {
	GetCredentials(ctx context.Context) (*google.Credentials, error)
	GetProjectIDs() []string
	GetBillingAccount() string
	GetExportTable() string
	GetExportProject() string
}

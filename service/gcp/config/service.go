package gcpconfig

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/cloudbilling/v1"
	"google.golang.org/api/cloudresourcemanager/v1"
)

// DefaultDataset is the dataset billing export is usually configured into
const DefaultDataset = "billing_export"

// NewService describes where the billing export lives. The export project defaults to the first
// queried project.
func NewService(projectIDs []string, billingAccount, exportProject, exportDataset string) *service {
	if exportProject == "" && len(projectIDs) > 0 {
		exportProject = projectIDs[0]
	}
	if exportDataset == "" {
		exportDataset = DefaultDataset
	}
	return &service{
		projectIDs:     append([]string(nil), projectIDs...),
		billingAccount: billingAccount,
		exportProject:  exportProject,
		exportDataset:  exportDataset,
	}
}

func (s *service) GetCredentials(ctx context.Context) (*google.Credentials, error) {
	// Application Default Credentials: GOOGLE_APPLICATION_CREDENTIALS, gcloud ADC or the metadata server
	creds, err := google.FindDefaultCredentials(ctx,
		bigquery.Scope,
		cloudbilling.CloudBillingReadonlyScope,
		cloudresourcemanager.CloudPlatformReadOnlyScope,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find GCP credentials: %w", err)
	}
	return creds, nil
}

func (s *service) GetProjectIDs() []string {
	return append([]string(nil), s.projectIDs...)
}

func (s *service) GetBillingAccount() string {
	return s.billingAccount
}

func (s *service) GetExportProject() string {
	return s.exportProject
}

// GetExportTable returns the fully qualified standard usage export table
func (s *service) GetExportTable() string {
	return ExportTable(s.exportProject, s.exportDataset, s.billingAccount)
}

// ExportTable builds `project.dataset.gcp_billing_export_v1_XXXXXX_XXXXXX_XXXXXX`
func ExportTable(project, dataset, billingAccount string) string {
	id := strings.TrimPrefix(billingAccount, "billingAccounts/")
	id = strings.ReplaceAll(id, "-", "_")
	return fmt.Sprintf("`%s.%s.gcp_billing_export_v1_%s`", project, dataset, id)
}

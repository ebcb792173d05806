package gcpidentity

import (
	"context"
	"fmt"
	"strings"

	"github.com/elC0mpa/cost-doctor/model"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/cloudbilling/v1"
	"google.golang.org/api/cloudresourcemanager/v1"
	"google.golang.org/api/option"
)

// requiredPermissions are needed to query the billing export from the export project
var requiredPermissions = []string{
	"bigquery.jobs.create",
	"bigquery.tables.getData",
}

func NewService(ctx context.Context, creds *google.Credentials, projectIDs []string, exportProject string) (*service, error) {
	client, err := cloudresourcemanager.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource manager client: %w", err)
	}

	billing, err := cloudbilling.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud billing client: %w", err)
	}

	return &service{
		projectIDs:    append([]string(nil), projectIDs...),
		exportProject: exportProject,
		client:        client,
		billing:       billing,
	}, nil
}

// GetProjectInfo returns detailed GCP project information
func (s *service) GetProjectInfo(ctx context.Context, projectID string) (*cloudresourcemanager.Project, error) {
	project, err := s.client.Projects.Get(projectID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get project %s: %w", projectID, err)
	}
	return project, nil
}

// ListEnvironments implements service.EnvironmentService for the configured projects
func (s *service) ListEnvironments(ctx context.Context) ([]model.Environment, error) {
	environments := make([]model.Environment, 0, len(s.projectIDs))
	for _, id := range s.projectIDs {
		env := model.Environment{ID: id, Name: id}
		if project, err := s.GetProjectInfo(ctx, id); err == nil && project.Name != "" {
			env.Name = project.Name
		}
		environments = append(environments, env)
	}
	return environments, nil
}

// CheckAccess tests the BigQuery permissions on the export project. The queried project only has to
// exist and be visible.
func (s *service) CheckAccess(ctx context.Context, projectID string) (bool, error) {
	resp, err := s.client.Projects.TestIamPermissions(s.exportProject, &cloudresourcemanager.TestIamPermissionsRequest{
		Permissions: requiredPermissions,
	}).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("failed to test permissions on %s: %w", s.exportProject, err)
	}
	if len(missingPermissions(resp.Permissions)) > 0 {
		return false, nil
	}

	if _, err := s.GetProjectInfo(ctx, projectID); err != nil {
		if isAccessDenied(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *service) GetSetupInstructions(ctx context.Context, projectID string) (string, error) {
	billingAccount := ""
	info, err := s.billing.Projects.GetBillingInfo("projects/" + projectID).Context(ctx).Do()
	if err == nil && info.BillingEnabled {
		billingAccount = info.BillingAccountName
	}
	return setupInstructions(projectID, s.exportProject, billingAccount), nil
}

func setupInstructions(projectID, exportProject, billingAccount string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project %s cannot be read from the billing export.\n\n", projectID)
	if billingAccount != "" {
		fmt.Fprintf(&b, "1. Make sure Cloud Billing export to BigQuery is enabled for %s.\n", billingAccount)
	} else {
		b.WriteString("1. Link the project to a billing account and enable Cloud Billing export to BigQuery.\n")
	}
	fmt.Fprintf(&b, "2. Grant the identity running cost-doctor BigQuery access on %s:\n\n", exportProject)
	fmt.Fprintf(&b, "  gcloud projects add-iam-policy-binding %s \\\n    --member=<principal> --role=roles/bigquery.jobUser\n", exportProject)
	fmt.Fprintf(&b, "  gcloud projects add-iam-policy-binding %s \\\n    --member=<principal> --role=roles/bigquery.dataViewer\n", exportProject)
	return b.String()
}

func missingPermissions(granted []string) []string {
	have := make(map[string]bool, len(granted))
	for _, p := range granted {
		have[p] = true
	}

	var missing []string
	for _, p := range requiredPermissions {
		if !have[p] {
			missing = append(missing, p)
		}
	}
	return missing
}

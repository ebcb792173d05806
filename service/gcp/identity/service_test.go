package gcpidentity

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestMissingPermissions(t *testing.T) {
	assert.Empty(t, missingPermissions([]string{"bigquery.tables.getData", "bigquery.jobs.create"}))
	assert.Equal(t, []string{"bigquery.tables.getData"}, missingPermissions([]string{"bigquery.jobs.create"}))
	assert.Equal(t, requiredPermissions, missingPermissions(nil))
}

func TestIsAccessDenied(t *testing.T) {
	assert.True(t, isAccessDenied(fmt.Errorf("wrapped: %w", &googleapi.Error{Code: http.StatusForbidden})))
	assert.False(t, isAccessDenied(&googleapi.Error{Code: http.StatusNotFound}))
	assert.False(t, isAccessDenied(fmt.Errorf("plain")))
}

func TestSetupInstructions(t *testing.T) {
	got := setupInstructions("proj-a", "billing-proj", "billingAccounts/0000-1111")
	assert.Contains(t, got, "proj-a")
	assert.Contains(t, got, "billingAccounts/0000-1111")
	assert.Contains(t, got, "roles/bigquery.jobUser")
	assert.Contains(t, got, "add-iam-policy-binding billing-proj")

	got = setupInstructions("proj-a", "billing-proj", "")
	assert.Contains(t, got, "Link the project to a billing account")
}

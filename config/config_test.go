package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/elC0mpa/cost-doctor/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.ProviderAzure, cfg.Provider)
	assert.Equal(t, "last-month", cfg.Query.Preset)
	assert.Equal(t, "Daily", cfg.Query.Granularity)
	assert.Equal(t, []string{"ServiceName"}, cfg.Query.Grouping)
	assert.Equal(t, "a", cfg.Anonymize.Key)
	assert.Equal(t, 3, cfg.Anonymize.Presses)
	assert.Equal(t, 2*time.Second, cfg.Anonymize.Window)
	assert.Equal(t, "us-east-1", cfg.AWS.Region)
	assert.Equal(t, "console", cfg.Logging.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
provider: GCP
client:
  id: contoso
  name: Contoso
gcp:
  project_ids: [proj-a, proj-b]
  billing_account: 0000-1111-2222
query:
  preset: last-quarter
  granularity: None
  grouping: [ResourceLocation, MeterCategory]
anonymize:
  window: 1500ms
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.ProviderGCP, cfg.Provider)
	assert.Equal(t, "contoso", cfg.Client.ID)
	assert.Equal(t, []string{"proj-a", "proj-b"}, cfg.GCP.ProjectIDs)
	assert.Equal(t, "billing_export", cfg.GCP.ExportDataset)
	assert.Equal(t, "None", cfg.Query.Granularity)
	assert.Equal(t, []string{"ResourceLocation", "MeterCategory"}, cfg.Query.Grouping)
	assert.Equal(t, 1500*time.Millisecond, cfg.Anonymize.Window)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("COSTDOCTOR_PROVIDER", "aws")
	t.Setenv("COSTDOCTOR_LOGGING_LEVEL", "debug")
	t.Setenv("AWS_PROFILE", "billing")

	cfg, err := config.Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.ProviderAWS, cfg.Provider)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "billing", cfg.AWS.Profile)
}

func TestLoad_PrefixedEnvironmentWins(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("COSTDOCTOR_AWS_REGION", "eu-central-1")

	cfg, err := config.Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "eu-central-1", cfg.AWS.Region)
}

func TestLoad_InvalidFile(t *testing.T) {
	_, err := config.Load(writeConfig(t, "provider: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() config.Config {
		return config.Config{
			Provider:  config.ProviderAzure,
			Anonymize: config.AnonymizeConfig{Presses: 3, Window: 2 * time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"azure", func(c *config.Config) {}, ""},
		{"unknown provider", func(c *config.Config) { c.Provider = "oracle" }, "unknown provider"},
		{"api without endpoint", func(c *config.Config) { c.Provider = config.ProviderAPI }, "api.endpoint"},
		{"gcp without projects", func(c *config.Config) { c.Provider = config.ProviderGCP }, "gcp.project_ids"},
		{"gcp without billing account", func(c *config.Config) {
			c.Provider = config.ProviderGCP
			c.GCP.ProjectIDs = []string{"p"}
		}, "gcp.billing_account"},
		{"zero presses", func(c *config.Config) { c.Anonymize.Presses = 0 }, "anonymize.presses"},
		{"zero window", func(c *config.Config) { c.Anonymize.Window = 0 }, "anonymize.window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

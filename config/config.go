// Package config loads cost-doctor settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported providers
const (
	ProviderAzure = "azure"
	ProviderAWS   = "aws"
	ProviderGCP   = "gcp"
	ProviderAPI   = "api"
)

// Config holds all cost-doctor configuration.
type Config struct {
	Provider  string          `mapstructure:"provider"`
	Client    ClientConfig    `mapstructure:"client"`
	Azure     AzureConfig     `mapstructure:"azure"`
	AWS       AWSConfig       `mapstructure:"aws"`
	GCP       GCPConfig       `mapstructure:"gcp"`
	API       APIConfig       `mapstructure:"api"`
	Query     QueryConfig     `mapstructure:"query"`
	Anonymize AnonymizeConfig `mapstructure:"anonymize"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ClientConfig names the tenant whose costs are queried.
type ClientConfig struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// AzureConfig defines Cost Management settings. No subscriptions means all enabled ones.
type AzureConfig struct {
	TenantID        string   `mapstructure:"tenant_id"`
	SubscriptionIDs []string `mapstructure:"subscription_ids"`
}

// AWSConfig defines Cost Explorer settings.
type AWSConfig struct {
	Region     string   `mapstructure:"region"`
	Profile    string   `mapstructure:"profile"`
	Metric     string   `mapstructure:"metric"`
	AccountIDs []string `mapstructure:"account_ids"`
}

// GCPConfig defines the BigQuery billing export location.
type GCPConfig struct {
	ProjectIDs     []string `mapstructure:"project_ids"`
	BillingAccount string   `mapstructure:"billing_account"`
	ExportProject  string   `mapstructure:"export_project"`
	ExportDataset  string   `mapstructure:"export_dataset"`
}

// APIConfig defines the generic billing API.
type APIConfig struct {
	Endpoint     string   `mapstructure:"endpoint"`
	Environments []string `mapstructure:"environments"`
	// AzureCredential authenticates requests with the default Azure credential
	AzureCredential bool     `mapstructure:"azure_credential"`
	Scopes          []string `mapstructure:"scopes"`
}

// QueryConfig defines the query an operator starts from.
type QueryConfig struct {
	Preset      string   `mapstructure:"preset"`
	Granularity string   `mapstructure:"granularity"`
	Grouping    []string `mapstructure:"grouping"`
}

// AnonymizeConfig defines the screen-sharing toggle.
type AnonymizeConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Key     string        `mapstructure:"key"`
	Presses int           `mapstructure:"presses"`
	Window  time.Duration `mapstructure:"window"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	Output      string `mapstructure:"output"`
	Development bool   `mapstructure:"development"`
}

// legacyEnv maps keys onto the variables the provider SDKs and older releases read
var legacyEnv = map[string][]string{
	"azure.subscription_ids": {"AZURE_SUBSCRIPTION_ID"},
	"azure.tenant_id":        {"AZURE_TENANT_ID"},
	"aws.region":             {"AWS_REGION"},
	"aws.profile":            {"AWS_PROFILE"},
	"gcp.project_ids":        {"GCP_PROJECT_ID"},
	"gcp.billing_account":    {"GCP_BILLING_ACCOUNT"},
}

const envPrefix = "COSTDOCTOR"

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".cost-doctor"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	v.SetDefault("provider", ProviderAzure)
	v.SetDefault("client.id", "default")
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.metric", "UnblendedCost")
	v.SetDefault("gcp.export_dataset", "billing_export")
	v.SetDefault("api.scopes", []string{})
	v.SetDefault("query.preset", "last-month")
	v.SetDefault("query.granularity", "Daily")
	v.SetDefault("query.grouping", []string{"ServiceName"})
	v.SetDefault("anonymize.enabled", false)
	v.SetDefault("anonymize.key", "a")
	v.SetDefault("anonymize.presses", 3)
	v.SetDefault("anonymize.window", "2s")
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	// Environment variables
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		envKey := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, envKey}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	return &cfg, nil
}

// Validate checks that the selected provider has what it needs.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderAzure, ProviderAWS:
	case ProviderGCP:
		if len(c.GCP.ProjectIDs) == 0 {
			return errors.New("gcp.project_ids is required for the gcp provider")
		}
		if c.GCP.BillingAccount == "" {
			return errors.New("gcp.billing_account is required for the gcp provider")
		}
	case ProviderAPI:
		if c.API.Endpoint == "" {
			return errors.New("api.endpoint is required for the api provider")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	if c.Anonymize.Presses < 1 {
		return fmt.Errorf("anonymize.presses must be positive, got %d", c.Anonymize.Presses)
	}
	if c.Anonymize.Window <= 0 {
		return fmt.Errorf("anonymize.window must be positive, got %s", c.Anonymize.Window)
	}
	return nil
}

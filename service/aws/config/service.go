package awsconfig

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// DefaultRegion hosts the Cost Explorer endpoint
const DefaultRegion = "us-east-1"

func NewService(region, profile string) *service {
	if region == "" {
		region = DefaultRegion
	}
	return &service{region: region, profile: profile}
}

func (s *service) GetAWSCfg(ctx context.Context) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(s.region)}
	if s.profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(s.profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

func (s *service) Region() string {
	return s.region
}

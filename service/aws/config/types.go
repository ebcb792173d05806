package awsconfig

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
)

type service struct {
	region  string
	profile string
}

type ConfigService interface {
	GetAWSCfg(ctx context.Context) (aws.Config, error)
	Region() string
}

package awssts

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/elC0mpa/cost-doctor/model"
)

func NewService(awsconfig aws.Config) *service {
	client := sts.NewFromConfig(awsconfig)
	return &service{
		client: client,
	}
}

func (s *service) GetCallerIdentity(ctx context.Context) (*sts.GetCallerIdentityOutput, error) {
	input := &sts.GetCallerIdentityInput{}

	output, err := s.client.GetCallerIdentity(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get caller identity: %w", err)
	}
	return output, nil
}

// GetAccountInfo implements the account banner lookup
func (s *service) GetAccountInfo(ctx context.Context) (*model.AccountInfo, error) {
	output, err := s.GetCallerIdentity(ctx)
	if err != nil {
		return nil, err
	}

	return &model.AccountInfo{
		Provider:    "aws",
		AccountID:   aws.ToString(output.Account),
		AccountName: aws.ToString(output.Arn),
	}, nil
}

// ListEnvironments implements service.EnvironmentService with the caller's own account
func (s *service) ListEnvironments(ctx context.Context) ([]model.Environment, error) {
	info, err := s.GetAccountInfo(ctx)
	if err != nil {
		return nil, err
	}
	return []model.Environment{{ID: info.AccountID, Name: info.AccountID}}, nil
}

package awscostexplorer

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/elC0mpa/cost-doctor/model"
	"go.uber.org/zap"
)

type service struct {
	client *costexplorer.Client
	metric string
	logger *zap.Logger
}

type CostService interface {
	QueryCosts(ctx context.Context, client model.Client, spec model.CostQuerySpec, includePreviousPeriod bool) (model.RawResponse, error)
	CheckAccess(ctx context.Context, accountID string) (bool, error)
	GetSetupInstructions(ctx context.Context, accountID string) (string, error)
}

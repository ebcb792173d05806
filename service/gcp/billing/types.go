package gcpbilling

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/elC0mpa/cost-doctor/model"
	"go.uber.org/zap"
)

type service struct {
	table    string
	bqClient *bigquery.Client
	logger   *zap.Logger
}

type BillingService interface {
	QueryCosts(ctx context.Context, client model.Client, spec model.CostQuerySpec, includePreviousPeriod bool) (model.RawResponse, error)
	Close() error
}

// exportColumn is the billing export expression selected for a dimension
type exportColumn struct {
	alias      string
	expression string
}

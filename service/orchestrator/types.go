package orchestrator

import (
	"context"
	"io"

	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service/session"
	"go.uber.org/zap"
)

type service struct {
	session session.Session
	client  *model.Client
	out     io.Writer
	logger  *zap.Logger
	spinner bool
}

// queryOutput is the JSON document written by --json
type queryOutput struct {
	Query      model.QuerySnapshot `json:"query"`
	Anonymized bool                `json:"anonymized"`
	Result     model.QueryResult   `json:"result"`
}

type OrchestratorService interface {
	Orchestrate(ctx context.Context, flags model.Flags) error
	CheckAccess(ctx context.Context, environments []string) error
	SetupInstructions(ctx context.Context, environments []string) error
}

// Option customizes the orchestrator
type Option func(*service)

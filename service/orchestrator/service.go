package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/elC0mpa/cost-doctor/model"
	costservice "github.com/elC0mpa/cost-doctor/service"
	"github.com/elC0mpa/cost-doctor/service/session"
	"github.com/elC0mpa/cost-doctor/utils"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.uber.org/zap"
)

// WithOutput replaces stdout
func WithOutput(w io.Writer) Option {
	return func(s *service) {
		s.out = w
	}
}

// WithSpinner shows a spinner while the query runs
func WithSpinner(enabled bool) Option {
	return func(s *service) {
		s.spinner = enabled
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

func NewService(sess session.Session, client *model.Client, opts ...Option) *service {
	s := &service{
		session: sess,
		client:  client,
		out:     os.Stdout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Orchestrate submits the session's query and renders the result the way flags ask for
func (s *service) Orchestrate(ctx context.Context, flags model.Flags) error {
	if flags.ShowQuery {
		preview, err := s.session.Builder().Serialize().Preview()
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s\n%s\n", text.FgHiWhite.Sprint(" 🔎 QUERY"), preview)
	}

	if flags.JSON {
		return s.jsonWorkflow(ctx)
	}
	return s.defaultWorkflow(ctx)
}

func (s *service) defaultWorkflow(ctx context.Context) error {
	if s.spinner {
		utils.StartSpinner("Loading cost data...")
	}
	_, err := s.session.Submit(ctx)
	if s.spinner {
		utils.StopSpinner()
	}
	if err != nil {
		return s.handleSubmitError(ctx, err)
	}

	result, _ := s.session.View()
	snapshot, _ := s.session.Snapshot()

	utils.WriteCostTable(s.out, result, utils.CostTableOptions{
		ClientName: s.clientName(),
		Period:     snapshot.Spec.TimePeriod,
		Previous:   snapshot.Spec.PreviousPeriod(),
		Grouping:   snapshot.Spec.GroupingNames(),
	})
	utils.WriteSubscriptionBreakdown(s.out, result)
	utils.WriteDailyChart(s.out, s.clientName(), snapshot.Spec.Granularity, result.Summary)
	return nil
}

func (s *service) jsonWorkflow(ctx context.Context) error {
	if _, err := s.session.Submit(ctx); err != nil {
		return s.handleSubmitError(ctx, err)
	}

	result, _ := s.session.View()
	snapshot, _ := s.session.Snapshot()

	encoder := json.NewEncoder(s.out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(queryOutput{Query: snapshot, Anonymized: s.session.Anonymized(), Result: result}); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

// handleSubmitError prints setup instructions when access is missing and keeps the raw error out of the output
// for transient failures
func (s *service) handleSubmitError(ctx context.Context, err error) error {
	if denied, ok := costservice.AsAccessDenied(err); ok {
		fmt.Fprintf(s.out, "%s\n", text.FgHiRed.Sprint(" ⚠️  "+s.session.Gate().Message()))
		if instructionsErr := s.SetupInstructions(ctx, denied.Environments); instructionsErr != nil {
			s.logger.Warn("failed to load setup instructions", zap.Error(instructionsErr))
		}
		return err
	}
	if errors.Is(err, costservice.ErrNoClientSelected) || errors.Is(err, costservice.ErrQueryInFlight) {
		return err
	}

	s.logger.Error("cost query failed", zap.Error(err))
	if message := s.session.Gate().Message(); message != "" {
		return errors.New(message)
	}
	return err
}

// CheckAccess prints whether each environment grants cost read access
func (s *service) CheckAccess(ctx context.Context, environments []string) error {
	environments = s.environmentsOrClient(environments)

	tw := table.NewWriter()
	tw.SetOutputMirror(s.out)
	tw.SetTitle(s.clientName())
	tw.AppendHeader(table.Row{"Environment", "Name", "Cost Access"})
	tw.SetStyle(table.StyleRounded)

	var missing []string
	for _, env := range environments {
		ok, err := s.session.CheckAccess(ctx, env)
		if err != nil {
			return err
		}

		status := text.FgGreen.Sprint("granted")
		if !ok {
			status = text.FgRed.Sprint("setup required")
			missing = append(missing, env)
		}
		tw.AppendRow(table.Row{env, s.environmentName(env), status})
	}
	tw.Render()

	if len(missing) > 0 {
		return &costservice.AccessDeniedError{Environments: missing}
	}
	return nil
}

// SetupInstructions prints the steps that grant cost read access to each environment
func (s *service) SetupInstructions(ctx context.Context, environments []string) error {
	for _, env := range s.environmentsOrClient(environments) {
		instructions, err := s.session.SetupInstructions(ctx, env)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "\n%s %s\n%s\n", text.FgHiWhite.Sprint(" 🔑 SETUP"), text.FgHiYellow.Sprint(s.environmentName(env)), instructions)
	}
	return nil
}

func (s *service) environmentsOrClient(environments []string) []string {
	if len(environments) > 0 || s.client == nil {
		return environments
	}
	out := make([]string, 0, len(s.client.Environments))
	for _, env := range s.client.Environments {
		out = append(out, env.ID)
	}
	return out
}

func (s *service) clientName() string {
	if s.client == nil {
		return ""
	}
	return s.client.Name
}

func (s *service) environmentName(id string) string {
	if s.client == nil {
		return id
	}
	return s.client.EnvironmentName(id)
}

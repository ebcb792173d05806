package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/elC0mpa/cost-doctor/config"
	"github.com/elC0mpa/cost-doctor/logging"
	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service/anonymize"
	"github.com/elC0mpa/cost-doctor/service/flag"
	"github.com/elC0mpa/cost-doctor/service/orchestrator"
	"github.com/elC0mpa/cost-doctor/service/preset"
	"github.com/elC0mpa/cost-doctor/service/provider"
	"github.com/elC0mpa/cost-doctor/service/session"
	"github.com/elC0mpa/cost-doctor/utils"
	"github.com/elC0mpa/cost-doctor/utils/explorer"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile  string
	clientID string
	flags    model.Flags
)

var rootCmd = &cobra.Command{
	Use:   "cost-doctor",
	Short: "Compare cloud costs between periods",
	Long: `cost-doctor queries Azure Cost Management, AWS Cost Explorer, a GCP billing export
or a billing API for a date range, groups the costs by dimensions and compares them
with the previous period of equal length.`,
	SilenceUsage: true,
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a cost query and print the comparison",
	RunE:  runQuery,
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the date presets and the ranges they resolve to today",
	RunE:  runPresets,
}

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Edit and run cost queries interactively",
	RunE:  runExplore,
}

var permissionsCmd = &cobra.Command{
	Use:   "permissions",
	Short: "Check and set up cost read access",
}

var permissionsCheckCmd = &cobra.Command{
	Use:   "check [environment...]",
	Short: "Check cost read access for the given environments, or all of the client",
	RunE:  runPermissionsCheck,
}

var permissionsInstructionsCmd = &cobra.Command{
	Use:   "instructions [environment...]",
	Short: "Print the steps that grant cost read access",
	RunE:  runPermissionsInstructions,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.cost-doctor/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&clientID, "client", "", "client ID, overrides client.id")
	rootCmd.PersistentFlags().StringSliceVar(&flags.Environments, "environment", nil, "restrict the client to these subscription, account or project IDs")

	for _, cmd := range []*cobra.Command{queryCmd, exploreCmd} {
		cmd.Flags().StringVar(&flags.Preset, "preset", "", "date preset (last-month, this-month, last-3-months, last-6-months, last-quarter, year-to-date)")
		cmd.Flags().StringVar(&flags.From, "from", "", "custom range start (YYYY-MM-DD)")
		cmd.Flags().StringVar(&flags.To, "to", "", "custom range end (YYYY-MM-DD), inclusive")
		cmd.Flags().StringVar(&flags.Granularity, "granularity", "", "Daily or None")
		cmd.Flags().StringSliceVar(&flags.Dimensions, "dimension", nil, "grouping dimension, repeatable")
		cmd.Flags().BoolVar(&flags.Anonymize, "anonymize", false, "replace identifiers with generic labels")
	}
	queryCmd.Flags().BoolVar(&flags.ShowQuery, "show-query", false, "print the query before running it")
	queryCmd.Flags().BoolVar(&flags.JSON, "json", false, "print the result as JSON")

	permissionsCmd.AddCommand(permissionsCheckCmd, permissionsInstructionsCmd)
	rootCmd.AddCommand(queryCmd, presetsCmd, exploreCmd, permissionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is everything a command needs once configuration is loaded
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	backend *provider.Backend
	client  *model.Client
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if clientID != "" {
		cfg.Client.ID = clientID
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logging.Initialize(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      cfg.Logging.Output,
		Development: cfg.Logging.Development,
	}); err != nil {
		return nil, err
	}
	logger := logging.Named("cli")

	backend, err := provider.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	client, err := backend.Client(ctx, cfg.Client)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	if len(flags.Environments) > 0 {
		client.Environments = restrictEnvironments(client.Environments, flags.Environments)
	}

	return &app{cfg: cfg, logger: logger, backend: backend, client: client}, nil
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("failed to close provider", zap.Error(err))
	}
	logging.Sync()
}

// newSession builds a session whose query starts from the configuration and the command line
func (a *app) newSession() (session.Session, error) {
	builder, err := flag.NewService(time.Now).NewBuilder(a.queryFlags())
	if err != nil {
		return nil, err
	}

	return session.NewService(a.backend.Costs, a.backend.Permissions, session.NewStaticClient(a.client), a.logger,
		session.WithBuilder(builder),
		session.WithAnonymization(flags.Anonymize || a.cfg.Anonymize.Enabled),
		session.WithDetectorOptions(
			anonymize.WithKey(a.cfg.Anonymize.Key),
			anonymize.WithPresses(a.cfg.Anonymize.Presses),
			anonymize.WithWindow(a.cfg.Anonymize.Window),
		),
	), nil
}

// queryFlags falls back to the configured query for anything not given on the command line
func (a *app) queryFlags() model.Flags {
	out := flags
	if out.Preset == "" && !out.HasCustomRange() {
		out.Preset = a.cfg.Query.Preset
	}
	if out.Granularity == "" {
		out.Granularity = a.cfg.Query.Granularity
	}
	if len(out.Dimensions) == 0 {
		out.Dimensions = a.cfg.Query.Grouping
	}
	return out
}

func runQuery(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if !flags.JSON {
		utils.DrawBanner()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	o := orchestrator.NewService(s, a.client, orchestrator.WithSpinner(!flags.JSON), orchestrator.WithLogger(a.logger))
	return o.Orchestrate(ctx, flags)
}

func runPresets(_ *cobra.Command, _ []string) error {
	now := time.Now()

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Preset", "Description", "From", "To"})
	for _, p := range preset.All() {
		period := p.Resolve(now)
		tw.AppendRow(table.Row{p.Key, p.Label, period.From.Format(flag.DateLayout), period.To.Format(flag.DateLayout)})
	}
	tw.SetStyle(table.StyleRounded)
	tw.Render()
	return nil
}

func runExplore(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	return explorer.Run(cmd.Context(), s, a.client)
}

func runPermissionsCheck(cmd *cobra.Command, args []string) error {
	return withOrchestrator(cmd, func(o orchestrator.OrchestratorService) error {
		return o.CheckAccess(cmd.Context(), args)
	})
}

func runPermissionsInstructions(cmd *cobra.Command, args []string) error {
	return withOrchestrator(cmd, func(o orchestrator.OrchestratorService) error {
		return o.SetupInstructions(cmd.Context(), args)
	})
}

func withOrchestrator(cmd *cobra.Command, fn func(orchestrator.OrchestratorService) error) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(orchestrator.NewService(s, a.client, orchestrator.WithLogger(a.logger))); err != nil {
		return fmt.Errorf("permissions: %w", err)
	}
	return nil
}

// restrictEnvironments keeps the requested IDs, including ones discovery did not return
func restrictEnvironments(environments []model.Environment, ids []string) []model.Environment {
	known := make(map[string]model.Environment, len(environments))
	for _, env := range environments {
		known[env.ID] = env
	}

	out := make([]model.Environment, 0, len(ids))
	for _, id := range ids {
		if env, ok := known[id]; ok {
			out = append(out, env)
			continue
		}
		out = append(out, model.Environment{ID: id, Name: id})
	}
	return out
}

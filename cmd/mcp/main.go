package main

import (
	"context"
	"fmt"
	"os"

	"github.com/elC0mpa/cost-doctor/cmd/mcp/tools"
	"github.com/elC0mpa/cost-doctor/config"
	"github.com/elC0mpa/cost-doctor/logging"
	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service/provider"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("COSTDOCTOR_CONFIG"))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// stdout carries the protocol, logs always go to stderr
	logCfg := logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      "stderr",
		Development: cfg.Logging.Development,
	}
	if err := logging.Initialize(logCfg); err != nil {
		return err
	}
	defer logging.Sync()
	logger := logging.Named("mcp")

	ctx := context.Background()
	backend, err := provider.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	client, err := backend.Client(ctx, cfg.Client)
	if err != nil {
		// the server still starts so setup instructions stay reachable
		logger.Warn("failed to load client environments", zap.Error(err))
		client = &model.Client{ID: cfg.Client.ID, Name: cfg.Client.Name, Provider: backend.Name}
	}

	s := server.NewMCPServer(
		"cost-doctor-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	tools.RegisterCostTools(s, tools.Deps{
		Costs:       backend.Costs,
		Permissions: backend.Permissions,
		Client:      client,
		Logger:      logger,
		Defaults: model.Flags{
			Preset:      cfg.Query.Preset,
			Granularity: cfg.Query.Granularity,
			Dimensions:  cfg.Query.Grouping,
		},
		Anonymize: cfg.Anonymize.Enabled,
	})

	return server.ServeStdio(s)
}

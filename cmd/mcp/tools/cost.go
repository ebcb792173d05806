package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elC0mpa/cost-doctor/cmd/mcp/response"
	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service"
	"github.com/elC0mpa/cost-doctor/service/flag"
	"github.com/elC0mpa/cost-doctor/service/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Deps are the services the cost tools run against
type Deps struct {
	Costs       service.CostQueryService
	Permissions service.PermissionService
	Client      *model.Client
	Logger      *zap.Logger
	// Defaults are the configured query settings; tool arguments override them
	Defaults  model.Flags
	Anonymize bool
	Now       func() time.Time
}

// RegisterCostTools registers the cost query tools with the MCP server
func RegisterCostTools(s *server.MCPServer, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	s.AddTool(
		mcp.NewTool("cost_client",
			mcp.WithDescription("Get the selected client and the subscriptions, accounts or projects its costs span"),
		),
		makeClientHandler(deps),
	)

	s.AddTool(
		mcp.NewTool("cost_presets",
			mcp.WithDescription("List the date presets with the ranges they resolve to today"),
		),
		makePresetsHandler(deps),
	)

	s.AddTool(
		mcp.NewTool("cost_query",
			mcp.WithDescription("Query costs for a date range, grouped by dimensions, compared with the previous period of equal length"),
			mcp.WithString("preset",
				mcp.Description("Date preset, e.g. last-month, this-month, last-3-months, last-6-months, last-quarter, year-to-date"),
			),
			mcp.WithString("from", mcp.Description("Custom range start (YYYY-MM-DD), requires to")),
			mcp.WithString("to", mcp.Description("Custom range end (YYYY-MM-DD), inclusive")),
			mcp.WithString("granularity",
				mcp.Description("Daily returns per-day costs, None returns period totals"),
				mcp.Enum(string(model.GranularityDaily), string(model.GranularityNone)),
			),
			mcp.WithArray("dimensions",
				mcp.Description("Grouping dimensions, e.g. ServiceName, ResourceLocation, ResourceGroupName"),
				mcp.WithStringItems(),
			),
			mcp.WithBoolean("anonymize", mcp.Description("Replace resource and subscription identifiers with generic labels")),
		),
		makeCostQueryHandler(deps),
	)

	s.AddTool(
		mcp.NewTool("cost_check_access",
			mcp.WithDescription("Check whether cost data can be read for an environment, or for every environment of the client"),
			mcp.WithString("environment", mcp.Description("Subscription, account or project ID")),
		),
		makeCheckAccessHandler(deps),
	)

	s.AddTool(
		mcp.NewTool("cost_setup_instructions",
			mcp.WithDescription("Get the steps that grant cost read access for an environment"),
			mcp.WithString("environment", mcp.Required(), mcp.Description("Subscription, account or project ID")),
		),
		makeSetupInstructionsHandler(deps),
	)
}

func makeClientHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.Client == nil {
			return mcp.NewToolResultError(service.ErrNoClientSelected.Error()), nil
		}
		return jsonResult(response.ConvertClient(deps.Client))
	}
}

func makePresetsHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(response.ConvertPresets(deps.Now()))
	}
}

func makeCostQueryHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		flags := queryFlags(request, deps.Defaults)

		builder, err := flag.NewService(deps.Now).NewBuilder(flags)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid query: %v", err)), nil
		}

		s := session.NewService(deps.Costs, deps.Permissions, session.NewStaticClient(deps.Client), deps.Logger,
			session.WithBuilder(builder),
			session.WithClock(deps.Now),
			session.WithAnonymization(request.GetBool("anonymize", deps.Anonymize)),
		)
		defer s.Close()

		if _, err := s.Submit(ctx); err != nil {
			if denied, ok := service.AsAccessDenied(err); ok {
				return jsonResult(setupRequired(ctx, s, denied.Environments))
			}
			if s.Gate().Message() != "" {
				return mcp.NewToolResultError(s.Gate().Message()), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("Failed to query costs: %v", err)), nil
		}

		view, _ := s.View()
		snapshot, _ := s.Snapshot()
		return jsonResult(response.ConvertQueryResult(snapshot, view, s.Anonymized()))
	}
}

func makeCheckAccessHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		environments := []string{request.GetString("environment", "")}
		if environments[0] == "" {
			if deps.Client == nil {
				return mcp.NewToolResultError(service.ErrNoClientSelected.Error()), nil
			}
			environments = environments[:0]
			for _, env := range deps.Client.Environments {
				environments = append(environments, env.ID)
			}
		}

		checks := make([]response.AccessCheck, 0, len(environments))
		for _, env := range environments {
			ok, err := deps.Permissions.CheckAccess(ctx, env)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to check access for %s: %v", env, err)), nil
			}
			checks = append(checks, response.AccessCheck{Environment: env, HasAccess: ok})
		}
		return jsonResult(checks)
	}
}

func makeSetupInstructionsHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		env, err := request.RequireString("environment")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		instructions, err := deps.Permissions.GetSetupInstructions(ctx, env)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get setup instructions: %v", err)), nil
		}
		return mcp.NewToolResultText(instructions), nil
	}
}

// queryFlags overlays the tool arguments on the configured defaults
func queryFlags(request mcp.CallToolRequest, defaults model.Flags) model.Flags {
	flags := model.Flags{
		Preset:      request.GetString("preset", defaults.Preset),
		From:        request.GetString("from", ""),
		To:          request.GetString("to", ""),
		Granularity: request.GetString("granularity", defaults.Granularity),
		Dimensions:  request.GetStringSlice("dimensions", defaults.Dimensions),
	}
	if flags.HasCustomRange() {
		flags.Preset = ""
	}
	return flags
}

// setupRequired collects the instructions of every environment that lacks access
func setupRequired(ctx context.Context, s session.Session, environments []string) *response.SetupRequired {
	out := &response.SetupRequired{
		Environments: environments,
		Instructions: make(map[string]string, len(environments)),
		Message:      s.Gate().Message(),
	}
	for _, env := range environments {
		instructions, err := s.SetupInstructions(ctx, env)
		if err != nil {
			instructions = err.Error()
		}
		out.Instructions[env] = instructions
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

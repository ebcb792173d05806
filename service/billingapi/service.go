package billingapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/elC0mpa/cost-doctor/model"
	coreservice "github.com/elC0mpa/cost-doctor/service"
)

// ErrMissingEndpoint is returned when no billing API endpoint is configured
var ErrMissingEndpoint = errors.New("billing API endpoint is not configured")

// NewService builds a client for the billing API. Nothing is retried: every request is
// operator initiated.
func NewService(opts Options) (*service, error) {
	endpoint := strings.TrimRight(opts.Endpoint, "/")
	if endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("failed to parse billing API endpoint: %w", err)
	}

	clientOptions := &policy.ClientOptions{
		Retry:     policy.RetryOptions{MaxRetries: -1},
		Transport: opts.Transport,
	}

	var plOpts runtime.PipelineOptions
	if opts.Credential != nil {
		plOpts.PerRetry = append(plOpts.PerRetry, runtime.NewBearerTokenPolicy(opts.Credential, opts.Scopes, nil))
	}

	return &service{
		endpoint: endpoint,
		pipeline: runtime.NewPipeline(moduleName, moduleVersion, plOpts, clientOptions),
	}, nil
}

// QueryCosts implements service.CostQueryService
func (s *service) QueryCosts(ctx context.Context, client model.Client, spec model.CostQuerySpec, includePreviousPeriod bool) (model.RawResponse, error) {
	req, err := runtime.NewRequest(ctx, http.MethodPost, runtime.JoinPaths(s.endpoint, "clients", url.PathEscape(client.ID), "costs", "query"))
	if err != nil {
		return nil, fmt.Errorf("failed to create cost query request: %w", err)
	}
	req.Raw().Header.Set("Accept", "application/json")
	if err := runtime.MarshalAsJSON(req, queryRequest{Query: spec, IncludePreviousPeriod: includePreviousPeriod}); err != nil {
		return nil, fmt.Errorf("failed to encode cost query: %w", err)
	}

	resp, err := s.pipeline.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send cost query: %w", err)
	}

	if runtime.HasStatusCode(resp, http.StatusUnauthorized, http.StatusForbidden) {
		return nil, accessDenied(resp, client)
	}
	if !runtime.HasStatusCode(resp, http.StatusOK) {
		return nil, runtime.NewResponseError(resp)
	}

	raw := model.RawResponse{}
	if err := runtime.UnmarshalAsJSON(resp, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode cost query response: %w", err)
	}
	return raw, nil
}

// GetSetupInstructions implements service.PermissionService. Plain text bodies are returned as is.
func (s *service) GetSetupInstructions(ctx context.Context, environmentID string) (string, error) {
	resp, err := s.get(ctx, "setup-instructions", environmentID)
	if err != nil {
		return "", err
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var body setupInstructionsBody
		if err := runtime.UnmarshalAsJSON(resp, &body); err != nil {
			return "", fmt.Errorf("failed to decode setup instructions: %w", err)
		}
		return body.Instructions, nil
	}

	payload, err := runtime.Payload(resp)
	if err != nil {
		return "", fmt.Errorf("failed to read setup instructions: %w", err)
	}
	return string(payload), nil
}

// CheckAccess implements service.PermissionService
func (s *service) CheckAccess(ctx context.Context, environmentID string) (bool, error) {
	resp, err := s.get(ctx, "access", environmentID)
	if err != nil {
		return false, err
	}

	var body accessBody
	if err := runtime.UnmarshalAsJSON(resp, &body); err != nil {
		return false, fmt.Errorf("failed to decode access check: %w", err)
	}
	return body.HasAccess, nil
}

func (s *service) get(ctx context.Context, resource, environmentID string) (*http.Response, error) {
	req, err := runtime.NewRequest(ctx, http.MethodGet, runtime.JoinPaths(s.endpoint, "environments", url.PathEscape(environmentID), resource))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", resource, err)
	}

	resp, err := s.pipeline.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request %s for %s: %w", resource, environmentID, err)
	}
	if !runtime.HasStatusCode(resp, http.StatusOK) {
		return nil, runtime.NewResponseError(resp)
	}
	return resp, nil
}

// accessDenied reads the environments listed in a denial; without a list every environment of the
// client is reported
func accessDenied(resp *http.Response, client model.Client) error {
	respErr := runtime.NewResponseError(resp)

	var body accessDeniedBody
	if err := runtime.UnmarshalAsJSON(resp, &body); err != nil || len(body.Environments) == 0 {
		body.Environments = nil
		for _, env := range client.Environments {
			body.Environments = append(body.Environments, env.ID)
		}
	}

	return &coreservice.AccessDeniedError{Environments: body.Environments, Err: respErr}
}

package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service"
	"github.com/elC0mpa/cost-doctor/service/anonymize"
	"github.com/elC0mpa/cost-doctor/service/normalizer"
	"github.com/elC0mpa/cost-doctor/service/permission"
	"github.com/elC0mpa/cost-doctor/service/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func NewService(costService service.CostQueryService, permissionService service.PermissionService, clients service.ClientContext, logger *zap.Logger, opts ...Option) *session {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &session{
		costService:       costService,
		permissionService: permissionService,
		clients:           clients,
		logger:            logger,
		gate:              permission.NewGate(),
		anonymization:     &anonymize.State{},
		now:               time.Now,
		newID:             uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.builder == nil {
		s.builder = query.NewBuilder(query.WithClock(s.now))
	}
	s.detector = anonymize.NewSequenceDetector(s.onSequence, s.detectorOptions...)
	return s
}

// Submit freezes the current query and sends it for the selected client
func (s *session) Submit(ctx context.Context) (model.QueryResult, error) {
	client, ok := s.clients.SelectedClient()
	if !ok {
		return model.QueryResult{}, service.ErrNoClientSelected
	}
	if !s.gate.CanSubmit() {
		return model.QueryResult{}, fmt.Errorf("%w: %s", service.ErrSetupRequired, strings.Join(s.gate.Environments(), ", "))
	}
	if !s.busy.CompareAndSwap(false, true) {
		return model.QueryResult{}, service.ErrQueryInFlight
	}
	defer s.busy.Store(false)

	snapshot := model.QuerySnapshot{
		ID:          s.newID(),
		ClientID:    client.ID,
		SubmittedAt: s.now().UTC(),
		Spec:        s.builder.Serialize(),
	}

	s.mu.Lock()
	s.snapshot = &snapshot
	s.result = nil
	s.mu.Unlock()

	s.gate.Begin()
	s.logger.Debug("submitting cost query",
		zap.String("snapshot", snapshot.ID),
		zap.String("client", client.ID),
		zap.Time("from", snapshot.Spec.TimePeriod.From),
		zap.Time("to", snapshot.Spec.TimePeriod.To),
		zap.String("granularity", string(snapshot.Spec.Granularity)),
		zap.Strings("grouping", dimensionNames(snapshot.Spec)),
	)

	raw, err := s.costService.QueryCosts(ctx, *client, snapshot.Spec, true)
	if err != nil {
		state := s.gate.Fail(err)
		s.logger.Warn("cost query failed",
			zap.String("snapshot", snapshot.ID),
			zap.String("state", string(state)),
			zap.Error(err),
		)
		if state == permission.StateNeedsSetup {
			return model.QueryResult{}, err
		}
		return model.QueryResult{}, fmt.Errorf("failed to query costs: %w", err)
	}

	result := normalizer.Normalize(raw)
	s.gate.Succeed()

	s.mu.Lock()
	s.result = &result
	s.mu.Unlock()

	s.logger.Info("cost query completed",
		zap.String("snapshot", snapshot.ID),
		zap.Int("items", result.Summary.ItemCount),
	)
	return result, nil
}

// Recheck asks the permission endpoint about every environment still needing setup.
// The query is not re-run.
func (s *session) Recheck(ctx context.Context) error {
	if s.gate.State() != permission.StateNeedsSetup {
		return fmt.Errorf("%w: recheck from %s", permission.ErrInvalidTransition, s.gate.State())
	}

	var missing []string
	for _, env := range s.gate.Environments() {
		ok, err := s.permissionService.CheckAccess(ctx, env)
		if err != nil {
			return fmt.Errorf("failed to check access for %s: %w", env, err)
		}
		if !ok {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		s.gate.RequireSetup(missing)
		return fmt.Errorf("%w: %s", service.ErrSetupIncomplete, strings.Join(missing, ", "))
	}
	return s.gate.Recheck()
}

func (s *session) SetupInstructions(ctx context.Context, environmentID string) (string, error) {
	instructions, err := s.permissionService.GetSetupInstructions(ctx, environmentID)
	if err != nil {
		return "", fmt.Errorf("failed to get setup instructions for %s: %w", environmentID, err)
	}
	return instructions, nil
}

func (s *session) CheckAccess(ctx context.Context, environmentID string) (bool, error) {
	ok, err := s.permissionService.CheckAccess(ctx, environmentID)
	if err != nil {
		return false, fmt.Errorf("failed to check access for %s: %w", environmentID, err)
	}
	return ok, nil
}

// View returns the last result as it should be displayed. Anonymized views are copies; the stored
// result is never modified.
func (s *session) View() (model.QueryResult, bool) {
	s.mu.RLock()
	result := s.result
	s.mu.RUnlock()

	if result == nil {
		return model.QueryResult{}, false
	}
	if !s.anonymization.Enabled() {
		return *result, true
	}

	view := model.QueryResult{
		Items:   make([]model.CostLineItem, len(result.Items)),
		Summary: result.Summary,
	}
	for i, item := range result.Items {
		view.Items[i] = anonymize.Record(item, i)
	}
	return view, true
}

func (s *session) Snapshot() (model.QuerySnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return model.QuerySnapshot{}, false
	}
	return *s.snapshot, true
}

// PressKey feeds a key press into the anonymization sequence detector
func (s *session) PressKey(key string) bool {
	return s.detector.Press(key, s.now())
}

func (s *session) ToggleAnonymization() bool {
	return s.anonymization.Toggle()
}

func (s *session) Anonymized() bool {
	return s.anonymization.Enabled()
}

func (s *session) Busy() bool {
	return s.busy.Load()
}

func (s *session) Builder() *query.Builder {
	return s.builder
}

func (s *session) Gate() *permission.Gate {
	return s.gate
}

// Close cancels the pending detector reset
func (s *session) Close() {
	s.detector.Stop()
}

func (s *session) onSequence() {
	enabled := s.anonymization.Toggle()
	s.logger.Debug("anonymization toggled", zap.Bool("enabled", enabled))
}

func dimensionNames(spec model.CostQuerySpec) []string {
	names := make([]string, 0, len(spec.Grouping))
	for _, d := range spec.GroupingNames() {
		names = append(names, string(d))
	}
	return names
}

package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service"
	"github.com/elC0mpa/cost-doctor/service/anonymize"
	"github.com/elC0mpa/cost-doctor/service/comparison"
	"github.com/elC0mpa/cost-doctor/service/permission"
	"github.com/elC0mpa/cost-doctor/service/query"
	"github.com/elC0mpa/cost-doctor/service/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)

type queryCall struct {
	client          model.Client
	spec            model.CostQuerySpec
	includePrevious bool
}

type fakeCostService struct {
	mu       sync.Mutex
	response model.RawResponse
	err      error
	calls    []queryCall
	block    chan struct{}
}

func (f *fakeCostService) QueryCosts(_ context.Context, client model.Client, spec model.CostQuerySpec, includePrevious bool) (model.RawResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, queryCall{client: client, spec: spec, includePrevious: includePrevious})
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return f.response, f.err
}

func (f *fakeCostService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePermissionService struct {
	access       map[string]bool
	instructions map[string]string
	err          error
	checked      []string
}

func (f *fakePermissionService) GetSetupInstructions(_ context.Context, env string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.instructions[env], nil
}

func (f *fakePermissionService) CheckAccess(_ context.Context, env string) (bool, error) {
	f.checked = append(f.checked, env)
	if f.err != nil {
		return false, f.err
	}
	return f.access[env], nil
}

type fakeTimer struct{}

func (fakeTimer) Stop() bool { return true }

type fakeScheduler struct{}

func (fakeScheduler) AfterFunc(time.Duration, func()) anonymize.Timer { return fakeTimer{} }

var testClient = &model.Client{
	ID:   "contoso",
	Name: "Contoso",
	Environments: []model.Environment{
		{ID: "sub-1", Name: "Production"},
		{ID: "sub-2", Name: "Development"},
	},
}

func newSession(cost *fakeCostService, perm *fakePermissionService, client *model.Client, opts ...session.Option) session.Session {
	base := []session.Option{
		session.WithClock(func() time.Time { return fixedNow }),
		session.WithIDGenerator(func() string { return "snapshot-1" }),
		session.WithDetectorOptions(anonymize.WithScheduler(fakeScheduler{})),
	}
	return session.NewService(cost, perm, session.NewStaticClient(client), zap.NewNop(), append(base, opts...)...)
}

func TestSubmit_NoClientSelected(t *testing.T) {
	cost := &fakeCostService{}
	s := newSession(cost, &fakePermissionService{}, nil)

	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, service.ErrNoClientSelected)
	assert.Equal(t, 0, cost.callCount())
	assert.Equal(t, permission.StateChecking, s.Gate().State())
}

func TestSubmit_Success(t *testing.T) {
	cost := &fakeCostService{response: model.RawResponse{
		"Items": []any{
			map[string]any{"Name": "Storage", "PreviousPeriodCost": 100.0, "CurrentPeriodCost": 150.0, "Currency": "USD"},
		},
	}}
	s := newSession(cost, &fakePermissionService{}, testClient)

	result, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.InDelta(t, 50.0, result.Items[0].PercentageChange, 1e-9)
	assert.Equal(t, permission.StateReady, s.Gate().State())

	require.Equal(t, 1, cost.callCount())
	call := cost.calls[0]
	assert.True(t, call.includePrevious)
	assert.Equal(t, "contoso", call.client.ID)
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), call.spec.TimePeriod.From)
	assert.Equal(t, time.Date(2024, time.May, 31, 23, 59, 59, 0, time.UTC), call.spec.TimePeriod.To)

	snapshot, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "snapshot-1", snapshot.ID)
	assert.Equal(t, "contoso", snapshot.ClientID)
	assert.Equal(t, call.spec, snapshot.Spec)

	view, ok := s.View()
	require.True(t, ok)
	assert.Equal(t, result, view)
}

func TestSubmit_DailyWithoutGroupingDropToZero(t *testing.T) {
	cost := &fakeCostService{response: model.RawResponse{
		"Items": []any{
			map[string]any{"Name": "Total", "PreviousPeriodCost": 1000, "CurrentPeriodCost": 0},
		},
	}}
	builder := query.NewBuilder(
		query.WithClock(func() time.Time { return fixedNow }),
		query.WithGranularity(model.GranularityDaily),
		query.WithGrouping(),
	)
	s := newSession(cost, &fakePermissionService{}, testClient, session.WithBuilder(builder))

	result, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cost.calls[0].spec.Grouping)
	assert.Equal(t, model.GranularityDaily, cost.calls[0].spec.Granularity)

	require.Len(t, result.Items, 1)
	assert.InDelta(t, -1000.0, result.Items[0].CostDifference, 1e-9)
	assert.InDelta(t, -100.0, result.Items[0].PercentageChange, 1e-9)
	assert.InDelta(t, -100.0, result.Summary.PercentageChange, 1e-9)
}

func TestSubmit_NewResourceIsNotApplicable(t *testing.T) {
	cost := &fakeCostService{response: model.RawResponse{
		"Items": []any{
			map[string]any{"Name": "New VM", "PreviousPeriodCost": 0, "CurrentPeriodCost": 42},
		},
	}}
	s := newSession(cost, &fakePermissionService{}, testClient)

	result, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, comparison.NotApplicable, result.Items[0].PercentageChange)
}

func TestSubmit_AccessDenied(t *testing.T) {
	cost := &fakeCostService{err: &service.AccessDeniedError{Environments: []string{"sub-2"}}}
	s := newSession(cost, &fakePermissionService{}, testClient)

	_, err := s.Submit(context.Background())
	denied, ok := service.AsAccessDenied(err)
	require.True(t, ok)
	assert.Equal(t, []string{"sub-2"}, denied.Environments)
	assert.Equal(t, permission.StateNeedsSetup, s.Gate().State())

	_, err = s.Submit(context.Background())
	assert.ErrorIs(t, err, service.ErrSetupRequired)
	assert.Equal(t, 1, cost.callCount())
}

func TestSubmit_TransientFailure(t *testing.T) {
	cost := &fakeCostService{err: errors.New("502 bad gateway")}
	s := newSession(cost, &fakePermissionService{}, testClient)

	_, err := s.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, permission.StateError, s.Gate().State())
	assert.Equal(t, permission.GenericErrorMessage, s.Gate().Message())

	_, ok := s.View()
	assert.False(t, ok)

	cost.err = nil
	cost.response = model.RawResponse{}
	_, err = s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, permission.StateReady, s.Gate().State())
}

func TestSubmit_BusyFlag(t *testing.T) {
	cost := &fakeCostService{block: make(chan struct{}), response: model.RawResponse{}}
	s := newSession(cost, &fakePermissionService{}, testClient)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool { return cost.callCount() == 1 }, time.Second, time.Millisecond)
	assert.True(t, s.Busy())

	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, service.ErrQueryInFlight)

	close(cost.block)
	require.NoError(t, <-done)
	assert.False(t, s.Busy())
	assert.Equal(t, 1, cost.callCount())
}

func TestRecheck(t *testing.T) {
	t.Run("all environments granted", func(t *testing.T) {
		cost := &fakeCostService{err: &service.AccessDeniedError{Environments: []string{"sub-1", "sub-2"}}}
		perm := &fakePermissionService{access: map[string]bool{"sub-1": true, "sub-2": true}}
		s := newSession(cost, perm, testClient)

		_, _ = s.Submit(context.Background())
		require.NoError(t, s.Recheck(context.Background()))
		assert.Equal(t, permission.StateReady, s.Gate().State())
		assert.Equal(t, []string{"sub-1", "sub-2"}, perm.checked)
		assert.Equal(t, 1, cost.callCount())
	})

	t.Run("narrows the list", func(t *testing.T) {
		cost := &fakeCostService{err: &service.AccessDeniedError{Environments: []string{"sub-1", "sub-2"}}}
		perm := &fakePermissionService{access: map[string]bool{"sub-1": true}}
		s := newSession(cost, perm, testClient)

		_, _ = s.Submit(context.Background())
		err := s.Recheck(context.Background())
		assert.ErrorIs(t, err, service.ErrSetupIncomplete)
		assert.Equal(t, permission.StateNeedsSetup, s.Gate().State())
		assert.Equal(t, []string{"sub-2"}, s.Gate().Environments())
	})

	t.Run("not in needsSetup", func(t *testing.T) {
		s := newSession(&fakeCostService{}, &fakePermissionService{}, testClient)
		assert.ErrorIs(t, s.Recheck(context.Background()), permission.ErrInvalidTransition)
	})

	t.Run("check failure keeps state", func(t *testing.T) {
		cost := &fakeCostService{err: &service.AccessDeniedError{Environments: []string{"sub-1"}}}
		perm := &fakePermissionService{err: errors.New("timeout")}
		s := newSession(cost, perm, testClient)

		_, _ = s.Submit(context.Background())
		require.Error(t, s.Recheck(context.Background()))
		assert.Equal(t, permission.StateNeedsSetup, s.Gate().State())
	})
}

func TestSetupInstructions(t *testing.T) {
	perm := &fakePermissionService{instructions: map[string]string{"sub-1": "Assign Cost Management Reader"}}
	s := newSession(&fakeCostService{}, perm, testClient)

	got, err := s.SetupInstructions(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "Assign Cost Management Reader", got)
}

func TestView_Anonymized(t *testing.T) {
	cost := &fakeCostService{response: model.RawResponse{
		"Items": []any{
			map[string]any{"Name": "stprod01", "ResourceType": "Microsoft.Storage/storageAccounts", "SubscriptionName": "Contoso Prod", "CurrentPeriodCost": 10},
		},
	}}
	s := newSession(cost, &fakePermissionService{}, testClient)

	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	for i := 0; i < anonymize.DefaultPresses; i++ {
		s.PressKey(anonymize.DefaultKey)
	}
	require.True(t, s.Anonymized())

	view, ok := s.View()
	require.True(t, ok)
	assert.NotEqual(t, "stprod01", view.Items[0].Name)
	assert.NotEqual(t, "Contoso Prod", view.Items[0].SubscriptionName)
	assert.InDelta(t, 10.0, view.Items[0].CurrentPeriodCost, 1e-9)

	assert.False(t, s.ToggleAnonymization())
	view, _ = s.View()
	assert.Equal(t, "stprod01", view.Items[0].Name)
}

func TestStaticClient(t *testing.T) {
	_, ok := session.NewStaticClient(nil).SelectedClient()
	assert.False(t, ok)

	_, ok = session.NewStaticClient(&model.Client{}).SelectedClient()
	assert.False(t, ok)

	client, ok := session.NewStaticClient(testClient).SelectedClient()
	require.True(t, ok)
	assert.Equal(t, "contoso", client.ID)
}

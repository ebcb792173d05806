package explorer_test

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service"
	"github.com/elC0mpa/cost-doctor/service/anonymize"
	"github.com/elC0mpa/cost-doctor/service/permission"
	"github.com/elC0mpa/cost-doctor/service/session"
	"github.com/elC0mpa/cost-doctor/utils/explorer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)

type fakeCosts struct {
	err   error
	specs []model.CostQuerySpec
}

func (f *fakeCosts) QueryCosts(_ context.Context, _ model.Client, spec model.CostQuerySpec, _ bool) (model.RawResponse, error) {
	f.specs = append(f.specs, spec)
	if f.err != nil {
		return nil, f.err
	}
	return model.RawResponse{
		"Items": []any{
			map[string]any{
				"Name":               "Virtual Machines",
				"PreviousPeriodCost": 50,
				"CurrentPeriodCost":  75,
				"SubscriptionName":   "Contoso Production",
				"Currency":           "USD",
			},
		},
		"Summary": map[string]any{"Currency": "USD"},
	}, nil
}

type fakePermissions struct {
	access bool
}

func (f *fakePermissions) GetSetupInstructions(_ context.Context, environmentID string) (string, error) {
	return "grant Cost Management Reader on " + environmentID, nil
}

func (f *fakePermissions) CheckAccess(context.Context, string) (bool, error) {
	return f.access, nil
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

type noopScheduler struct{}

func (noopScheduler) AfterFunc(time.Duration, func()) anonymize.Timer { return noopTimer{} }

func newExplorer(t *testing.T, costs *fakeCosts, perms *fakePermissions) (*explorer.Model, session.Session) {
	t.Helper()
	client := &model.Client{ID: "contoso", Name: "Contoso"}
	s := session.NewService(costs, perms, session.NewStaticClient(client), zap.NewNop(),
		session.WithClock(func() time.Time { return fixedNow }),
		session.WithDetectorOptions(anonymize.WithScheduler(noopScheduler{})),
	)
	t.Cleanup(s.Close)
	return explorer.New(context.Background(), s, client), s
}

func press(m *explorer.Model, key string) tea.Cmd {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

// run executes a command and feeds its message back, like the program loop does
func run(m *explorer.Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	m.Update(cmd())
}

func TestExplorer_EditsQuery(t *testing.T) {
	m, s := newExplorer(t, &fakeCosts{}, &fakePermissions{})

	press(m, "2")
	press(m, "g")
	press(m, "p")

	builder := s.Builder()
	assert.True(t, builder.HasDimension(model.DimensionResourceType))
	assert.True(t, builder.HasDimension(model.DimensionServiceName))
	assert.Equal(t, model.GranularityNone, builder.Granularity())
	key, ok := builder.Preset()
	require.True(t, ok)
	assert.NotEqual(t, "last-month", string(key))

	press(m, "2")
	assert.False(t, builder.HasDimension(model.DimensionResourceType))
}

func TestExplorer_SubmitAndAnonymize(t *testing.T) {
	costs := &fakeCosts{}
	m, s := newExplorer(t, costs, &fakePermissions{})

	run(m, press(m, "enter"))
	require.Len(t, costs.specs, 1)

	view := m.View()
	assert.Contains(t, view, "Virtual Machines")
	assert.Contains(t, view, "$75.00")

	for i := 0; i < 3; i++ {
		press(m, "a")
	}
	assert.True(t, s.Anonymized())

	view = m.View()
	assert.Contains(t, view, "[anonymized]")
	assert.NotContains(t, view, "Contoso Production")
}

func TestExplorer_SetupFlow(t *testing.T) {
	costs := &fakeCosts{err: &service.AccessDeniedError{Environments: []string{"sub-1"}}}
	perms := &fakePermissions{access: true}
	m, s := newExplorer(t, costs, perms)

	run(m, press(m, "enter"))
	assert.Equal(t, permission.StateNeedsSetup, s.Gate().State())
	assert.Contains(t, m.View(), "Cost access setup required for: sub-1")

	run(m, press(m, "i"))
	assert.Contains(t, m.View(), "grant Cost Management Reader on sub-1")

	run(m, press(m, "c"))
	assert.Equal(t, permission.StateReady, s.Gate().State())
	assert.Contains(t, m.View(), "Access granted")
}

func TestExplorer_Quit(t *testing.T) {
	m, _ := newExplorer(t, &fakeCosts{}, &fakePermissions{})

	cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

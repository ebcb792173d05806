package explorer

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service/permission"
	"github.com/elC0mpa/cost-doctor/service/preset"
	"github.com/elC0mpa/cost-doctor/service/session"
	"github.com/elC0mpa/cost-doctor/utils"
)

// New returns the explorer for the given session. client may be nil when nothing is selected.
func New(ctx context.Context, s session.Session, client *model.Client) *Model {
	return &Model{ctx: ctx, session: s, client: client}
}

// Run starts the full screen program and blocks until the operator quits
func Run(ctx context.Context, s session.Session, client *model.Client) error {
	if _, err := tea.NewProgram(New(ctx, s, client), tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("failed to run explorer: %w", err)
	}
	return nil
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case queryDoneMsg:
		m.err = msg.err
		m.status = ""
		if msg.err == nil {
			m.instructions = ""
		}
		return m, nil

	case recheckDoneMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = "Access granted, press enter to run the query"
			m.instructions = ""
		} else {
			m.status = ""
		}
		return m, nil

	case instructionsMsg:
		m.err = msg.err
		if msg.err == nil {
			m.instructions = fmt.Sprintf("%s:\n%s", msg.environment, msg.instructions)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// every key goes through the sequence detector; only the activation key counts
	if m.session.PressKey(key) {
		return m, nil
	}

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.session.Close()
		return m, tea.Quit
	case "enter":
		return m, m.submit()
	case "g":
		m.toggleGranularity()
	case "p":
		m.nextPreset()
	case "c":
		return m, m.recheck()
	case "i":
		return m, m.loadInstructions()
	default:
		if dim, ok := dimensionForKey(key); ok {
			if err := m.session.Builder().ToggleDimension(dim); err != nil {
				m.err = err
			}
		}
	}
	return m, nil
}

func (m *Model) submit() tea.Cmd {
	if m.session.Busy() {
		return nil
	}
	m.status = "Loading cost data..."
	m.err = nil
	return func() tea.Msg {
		_, err := m.session.Submit(m.ctx)
		return queryDoneMsg{err: err}
	}
}

func (m *Model) recheck() tea.Cmd {
	if m.session.Gate().State() != permission.StateNeedsSetup {
		return nil
	}
	m.status = "Checking access..."
	return func() tea.Msg {
		return recheckDoneMsg{err: m.session.Recheck(m.ctx)}
	}
}

func (m *Model) loadInstructions() tea.Cmd {
	environments := m.session.Gate().Environments()
	if len(environments) == 0 {
		return nil
	}
	env := environments[0]
	return func() tea.Msg {
		instructions, err := m.session.SetupInstructions(m.ctx, env)
		return instructionsMsg{environment: env, instructions: instructions, err: err}
	}
}

func (m *Model) toggleGranularity() {
	builder := m.session.Builder()
	next := model.GranularityNone
	if builder.Granularity() == model.GranularityNone {
		next = model.GranularityDaily
	}
	_ = builder.SetGranularity(next)
}

// nextPreset cycles through the presets; custom ranges restart at the first one
func (m *Model) nextPreset() {
	builder := m.session.Builder()
	presets := preset.All()

	next := presets[0].Key
	if current, ok := builder.Preset(); ok {
		for i, p := range presets {
			if p.Key == current {
				next = presets[(i+1)%len(presets)].Key
				break
			}
		}
	}
	_ = builder.SetPreset(next)
}

// dimensionForKey maps "1".."8" onto the supported dimensions
func dimensionForKey(key string) (model.Dimension, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return "", false
	}
	idx := int(key[0] - '1')
	if idx >= len(model.Dimensions) {
		return "", false
	}
	return model.Dimensions[idx], true
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.renderHeader(), m.renderQuery(), m.renderStatus()}
	if body := m.renderBody(); body != "" {
		sections = append(sections, body)
	}
	sections = append(sections, m.renderHelp())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	name := "no client selected"
	if m.client != nil {
		name = m.client.Name
	}
	title := titleStyle.Render("cost-doctor")
	if m.session.Anonymized() {
		title += " " + activeStyle.Render("[anonymized]")
	}
	return title + "  " + labelStyle.Render(name)
}

func (m *Model) renderQuery() string {
	builder := m.session.Builder()
	spec := builder.Serialize()

	period := "custom"
	if key, ok := builder.Preset(); ok {
		if p, found := preset.Lookup(key); found {
			period = p.Label
		}
	}

	var dims []string
	for i, d := range model.Dimensions {
		label := fmt.Sprintf("%d %s", i+1, d.Label())
		if builder.HasDimension(d) {
			label = activeStyle.Render("[x] " + label)
		} else {
			label = labelStyle.Render("[ ] " + label)
		}
		dims = append(dims, label)
	}

	return strings.Join([]string{
		fmt.Sprintf("%s %s (%s to %s)", labelStyle.Render("Period:"), period,
			spec.TimePeriod.From.Format("2006-01-02"), spec.TimePeriod.To.Format("2006-01-02")),
		fmt.Sprintf("%s %s", labelStyle.Render("Granularity:"), spec.Granularity),
		fmt.Sprintf("%s %s", labelStyle.Render("Group by:"), strings.Join(dims, "  ")),
	}, "\n")
}

func (m *Model) renderStatus() string {
	gate := m.session.Gate()

	var lines []string
	if m.status != "" {
		lines = append(lines, m.status)
	}
	switch gate.State() {
	case permission.StateNeedsSetup:
		lines = append(lines, errorStyle.Render("Cost access setup required for: "+strings.Join(gate.Environments(), ", ")))
	case permission.StateError:
		lines = append(lines, errorStyle.Render(gate.Message()))
	}
	if m.err != nil && gate.State() != permission.StateError {
		lines = append(lines, errorStyle.Render(m.err.Error()))
	}
	if m.instructions != "" {
		lines = append(lines, m.instructions)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody() string {
	result, ok := m.session.View()
	if !ok {
		return ""
	}
	snapshot, _ := m.session.Snapshot()

	var sb strings.Builder
	clientName := ""
	if m.client != nil {
		clientName = m.client.Name
	}
	utils.WriteCostTable(&sb, result, utils.CostTableOptions{
		ClientName: clientName,
		Period:     snapshot.Spec.TimePeriod,
		Previous:   snapshot.Spec.PreviousPeriod(),
		Grouping:   snapshot.Spec.GroupingNames(),
	})
	if snapshot.Spec.Granularity == model.GranularityDaily && len(result.Summary.DailyCosts) > 0 {
		sb.WriteString(utils.RenderDailyChart(result.Summary))
	}
	return sb.String()
}

func (m *Model) renderHelp() string {
	return helpStyle.Render("enter run • p preset • g granularity • 1-8 group by • c recheck access • i setup instructions • q quit")
}

package explorer

import (
	"context"

	"github.com/charmbracelet/lipgloss"
	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service/session"
)

// Model is the interactive cost page: it edits the session's query, submits it and renders the result
type Model struct {
	ctx          context.Context
	session      session.Session
	client       *model.Client
	status       string
	err          error
	instructions string
	width        int
	quitting     bool
}

type queryDoneMsg struct {
	err error
}

type recheckDoneMsg struct {
	err error
}

type instructionsMsg struct {
	environment  string
	instructions string
	err          error
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F4D060"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7D7D"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#66c2a5")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d73027"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// Package tui is an interactive similarity-search explorer.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hackmatch/internal/domain"
)

// SearchPort is the TUI-facing subset of the pipeline service.
type SearchPort interface {
	Query(ctx context.Context, text string, k int, partition string) ([]domain.ScoredProject, error)
}

// Model is the Bubble Tea model for the explorer.
type Model struct {
	service   SearchPort
	k         int
	partition string

	input     textinput.Model
	viewport  viewport.Model
	results   []domain.ScoredProject
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

// New creates an explorer querying k hits, optionally locked to one
// hackathon partition.
func New(service SearchPort, k int, partition string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe a project and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	status := "Type to find similar projects."
	if partition != "" {
		status = fmt.Sprintf("Searching within %q. Type to find similar projects.", partition)
	}
	return Model{service: service, k: k, partition: partition, input: ti, viewport: vp, status: status}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header + status + query box + spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				res, err := m.service.Query(context.Background(), q, m.k, m.partition)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.results = nil
				} else {
					m.status = fmt.Sprintf("%d similar projects for %q", len(res), q)
					m.results = res
					m.cursor = 0
					m.lastQuery = q
				}
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the explorer layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("hackmatch — similar projects")
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	r := m.results[m.cursor]
	header := fmt.Sprintf("Result %d/%d  score=%.3f", m.cursor+1, len(m.results), r.Score)
	var b strings.Builder
	b.WriteString(header + "\n\n")
	b.WriteString(titleStyle.Render(r.Project.Title) + "\n")
	if r.Project.HackathonTitle != "" {
		b.WriteString(dimStyle.Render(r.Project.HackathonTitle) + "\n")
	}
	if r.Project.Summary != "" {
		b.WriteString("\n" + r.Project.Summary + "\n")
	}
	if len(r.Project.Features) > 0 {
		b.WriteString("\n")
		for _, f := range r.Project.Features {
			b.WriteString("  • " + f + "\n")
		}
	}
	if r.Project.DevpostURL != "" {
		b.WriteString("\n" + dimStyle.Render(r.Project.DevpostURL) + "\n")
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

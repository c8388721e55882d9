package render

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Page shows a rendered report in a scrollable full-screen view until the
// user quits with q, esc or ctrl+c.
func Page(ctx context.Context, theme Theme, report string, in io.Reader, out io.Writer) error {
	program := tea.NewProgram(
		newPagerModel(theme, report),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running pager: %w", err)
	}
	return nil
}

// footerHeight is the number of lines reserved below the viewport.
const footerHeight = 1

type pagerModel struct {
	theme    Theme
	report   string
	viewport viewport.Model
	ready    bool
}

func newPagerModel(theme Theme, report string) pagerModel {
	vp := viewport.New(0, 0)
	vp.SetContent(report)
	return pagerModel{theme: theme, report: report, viewport: vp}
}

func (m pagerModel) Init() tea.Cmd { return nil }

func (m pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-footerHeight, 1)
		m.viewport.SetContent(m.report)
		m.ready = true
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m pagerModel) View() string {
	if !m.ready {
		return "loading report..."
	}
	footer := m.theme.Muted.Render(fmt.Sprintf("%3.f%%  q to quit", m.viewport.ScrollPercent()*100))
	return m.viewport.View() + "\n" + footer
}

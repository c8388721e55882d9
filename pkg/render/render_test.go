package render

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeByName(t *testing.T) {
	assert.Equal(t, "orca", ThemeByName("orca").Name)
	assert.Equal(t, "mono", ThemeByName("mono").Name)
	assert.Equal(t, "default", ThemeByName("nope").Name)
}

func TestBanner_UppercasesTitleOverRule(t *testing.T) {
	out := MonoTheme().Banner("running 3 test files")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "RUNNING 3 TEST FILES", lines[0])
	assert.Equal(t, strings.Repeat("=", RuleWidth), lines[1])
}

func TestBanner_RuleGrowsWithTitle(t *testing.T) {
	title := strings.Repeat("x", RuleWidth+4)
	lines := strings.Split(MonoTheme().Banner(title), "\n")
	require.Len(t, lines, 2)
	assert.Len(t, lines[1], RuleWidth+4)
}

func TestPagerModel_ShowsReportAfterResize(t *testing.T) {
	m := newPagerModel(MonoTheme(), "line one\nline two\n")
	assert.Equal(t, "loading report...", m.View())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	view := updated.View()
	assert.Contains(t, view, "line one")
	assert.Contains(t, view, "q to quit")
}

func TestPagerModel_QuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		t.Run(key.String(), func(t *testing.T) {
			_, cmd := newPagerModel(MonoTheme(), "x").Update(key)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
		})
	}
}

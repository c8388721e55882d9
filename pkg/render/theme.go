// Package render holds the terminal styling for unit's run stream and the
// interactive pager for finished reports.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RuleWidth is the width of the rule drawn under the batch banner.
const RuleWidth = 26

// Theme defines the styles for banners and group markers. PASS/FAIL tags
// use fixed ANSI codes and are not themed.
type Theme struct {
	Name  string
	Title lipgloss.Style
	Group lipgloss.Style
	Muted lipgloss.Style
	Rule  string
}

// DefaultTheme returns a colored theme.
func DefaultTheme() Theme {
	return Theme{
		Name:  "default",
		Title: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true), // blue
		Group: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),           // orange
		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("242")),           // gray
		Rule:  "─",
	}
}

// OrcaTheme returns a muted, professional theme.
func OrcaTheme() Theme {
	return Theme{
		Name:  "orca",
		Title: lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true), // pale blue
		Group: lipgloss.NewStyle().Foreground(lipgloss.Color("179")),           // muted gold
		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),           // lighter gray
		Rule:  "─",
	}
}

// MonoTheme returns a theme with no styling and ASCII rules.
func MonoTheme() Theme {
	return Theme{
		Name:  "mono",
		Title: lipgloss.NewStyle(),
		Group: lipgloss.NewStyle(),
		Muted: lipgloss.NewStyle(),
		Rule:  "=",
	}
}

// ThemeByName returns a theme by name, defaulting to DefaultTheme.
func ThemeByName(name string) Theme {
	switch name {
	case "orca":
		return OrcaTheme()
	case "mono":
		return MonoTheme()
	default:
		return DefaultTheme()
	}
}

// Banner renders text upper-cased over a rule at least RuleWidth wide.
func (t Theme) Banner(text string) string {
	title := cases.Upper(language.Und).String(text)
	width := max(runewidth.StringWidth(title), RuleWidth)
	rule := strings.Repeat(t.Rule, width)
	return t.Title.Render(title) + "\n" + t.Muted.Render(rule)
}

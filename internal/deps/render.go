package deps

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	styleOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	styleFail   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	styleMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
)

func mark(c Check) string {
	switch {
	case c.OK:
		return styleOK.Render("✓")
	case c.Required:
		return styleFail.Render("✗")
	default:
		return styleWarn.Render("!")
	}
}

// Render formats the report for a terminal.
func (r Report) Render() string {
	var b strings.Builder

	fmt.Fprintln(&b, styleHeader.Render("clipinject doctor"))
	fmt.Fprintf(&b, "session: %s %s\n\n", r.Session, styleMuted.Render("("+r.Source+")"))

	width := 0
	for _, c := range r.Checks {
		width = max(width, lipgloss.Width(c.Name))
	}
	name := lipgloss.NewStyle().Width(width + 2)

	for _, c := range r.Checks {
		fmt.Fprintf(&b, "%s %s%s %s\n",
			mark(c), name.Render(c.Name), c.Purpose, styleMuted.Render(c.Detail))
	}

	b.WriteString("\n")
	if r.Healthy() {
		b.WriteString(styleOK.Render("ready to paste"))
	} else {
		b.WriteString(styleFail.Render("automatic paste will not work until the ✗ items are fixed"))
	}
	b.WriteString("\n")
	return b.String()
}

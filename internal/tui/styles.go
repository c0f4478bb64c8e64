package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

const logoASCII = `
      _ _       _       _           _
  ___| (_)_ __ (_)_ __ (_) ___  ___| |_
 / __| | | '_ \| | '_ \| |/ _ \/ __| __|
| (__| | | |_) | | | | | |  __/ (__| |_
 \___|_|_| .__/|_|_| |_|/ |\___|\___|\__|
         |_|          |__/`

// Logo returns the clipinject ASCII art
func Logo() string {
	return StyleHeader.Render(strings.Trim(logoASCII, "\n"))
}

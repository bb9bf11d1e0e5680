package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rejaad/rearchive/internal/config"
)

// palette holds the colors for one appearance
type palette struct {
	accent   lipgloss.Color
	text     lipgloss.Color
	muted    lipgloss.Color
	border   lipgloss.Color
	success  lipgloss.Color
	failure  lipgloss.Color
	header   lipgloss.Color
	headerBg lipgloss.Color
}

var (
	darkPalette = palette{
		accent:   lipgloss.Color("212"),
		text:     lipgloss.Color("252"),
		muted:    lipgloss.Color("241"),
		border:   lipgloss.Color("238"),
		success:  lipgloss.Color("42"),
		failure:  lipgloss.Color("203"),
		header:   lipgloss.Color("229"),
		headerBg: lipgloss.Color("63"),
	}
	lightPalette = palette{
		accent:   lipgloss.Color("125"),
		text:     lipgloss.Color("235"),
		muted:    lipgloss.Color("244"),
		border:   lipgloss.Color("250"),
		success:  lipgloss.Color("28"),
		failure:  lipgloss.Color("160"),
		header:   lipgloss.Color("231"),
		headerBg: lipgloss.Color("25"),
	}
)

// newPalette picks colors for theme; "system" follows terminalDark
func newPalette(theme string, terminalDark bool) palette {
	switch theme {
	case config.ThemeLight:
		return lightPalette
	case config.ThemeDark:
		return darkPalette
	}
	if terminalDark {
		return darkPalette
	}
	return lightPalette
}

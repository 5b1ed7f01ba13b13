package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gubarz/virgil/internal/config"
	"github.com/gubarz/virgil/internal/walkthrough"
)

// StyleManager encapsulates all TUI styles and provides methods for style operations
type StyleManager struct {
	// Step list styles
	Title    lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Dim      lipgloss.Style

	// Detail styles
	DetailTitle lipgloss.Style
	Location    lipgloss.Style
	Base        lipgloss.Style
	Author      lipgloss.Style

	// Chrome styles
	Border  lipgloss.Style
	Divider lipgloss.Style

	// Colors for direct access
	SelectedBg lipgloss.Color
}

// DefaultStyles returns a StyleManager with default styles
func DefaultStyles() *StyleManager {
	return &StyleManager{
		Title:       lipgloss.NewStyle(),
		Selected:    lipgloss.NewStyle().Background(lipgloss.Color("236")),
		Cursor:      lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Dim:         lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		DetailTitle: lipgloss.NewStyle().Bold(true),
		Location:    lipgloss.NewStyle(),
		Base:        lipgloss.NewStyle(),
		Author:      lipgloss.NewStyle().Bold(true),
		Border:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
		Divider:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		SelectedBg:  lipgloss.Color("236"),
	}
}

// LoadFromConfig updates styles based on configuration
func (s *StyleManager) LoadFromConfig() {
	titleColor := parseANSIColor(config.GetColorTitle())
	locationColor := parseANSIColor(config.GetColorLocation())
	baseColor := parseANSIColor(config.GetColorBase())
	dimColor := parseANSIColor(config.GetColorDim())
	borderColor := lipgloss.Color(config.GetColorBorder())
	cursorColor := lipgloss.Color(config.GetColorSelected())

	s.Title = lipgloss.NewStyle().Foreground(titleColor)
	s.Cursor = lipgloss.NewStyle().Foreground(cursorColor)
	s.Dim = lipgloss.NewStyle().Foreground(dimColor)

	s.DetailTitle = lipgloss.NewStyle().Bold(true).Foreground(titleColor)
	s.Location = lipgloss.NewStyle().Foreground(locationColor)
	s.Base = lipgloss.NewStyle().Foreground(baseColor)
	s.Author = lipgloss.NewStyle().Bold(true).Foreground(dimColor)

	s.Border = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderColor)
	s.Divider = lipgloss.NewStyle().Foreground(borderColor)
}

// WithSelection returns a copy of the given style with the selected background applied
func (s *StyleManager) WithSelection(style lipgloss.Style) lipgloss.Style {
	return style.Background(s.SelectedBg)
}

// TypeStyle picks the location color that matches a step type
func (s *StyleManager) TypeStyle(t walkthrough.StepType) lipgloss.Style {
	switch t {
	case walkthrough.StepTypeDiff, walkthrough.StepTypePointInTime:
		return s.Location
	case walkthrough.StepTypeBaseOnly:
		return s.Base
	default:
		return s.Dim
	}
}

// parseANSIColor converts ANSI color codes to lipgloss colors
func parseANSIColor(code string) lipgloss.Color {
	ansiToLipgloss := map[string]string{
		"30": "0", "31": "1", "32": "2", "33": "3",
		"34": "4", "35": "5", "36": "6", "37": "7",
		"90": "8", "91": "9", "92": "10", "93": "11",
		"94": "12", "95": "13", "96": "14", "97": "15",
	}
	if mapped, ok := ansiToLipgloss[code]; ok {
		return lipgloss.Color(mapped)
	}
	return lipgloss.Color(code)
}

// Global style manager instance
var styles = DefaultStyles()

// RefreshStyles updates the global styles from config
func RefreshStyles() {
	styles.LoadFromConfig()
}

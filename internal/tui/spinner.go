package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Spinner represents a loading spinner
type Spinner struct {
	frames []string
	frame  int
}

// NewSpinner creates a new spinner
func NewSpinner() *Spinner {
	return &Spinner{
		frames: []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"},
	}
}

// Next advances the spinner to the next frame
func (s *Spinner) Next() {
	s.frame = (s.frame + 1) % len(s.frames)
}

// View returns the current spinner frame
func (s *Spinner) View() string {
	return s.frames[s.frame]
}

// LoadingIndicator shows a spinner, a message and coarse task progress
type LoadingIndicator struct {
	spinner  *Spinner
	message  string
	progress float64
	active   bool
	colors   palette
}

// NewLoadingIndicator creates an idle loading indicator
func NewLoadingIndicator(colors palette) *LoadingIndicator {
	return &LoadingIndicator{
		spinner: NewSpinner(),
		colors:  colors,
	}
}

// Start activates the indicator and reports whether it was idle before,
// in which case the caller must schedule the first tick
func (l *LoadingIndicator) Start(message string) bool {
	wasIdle := !l.active
	l.active = true
	l.message = message
	l.progress = 0
	return wasIdle
}

// Stop hides the indicator
func (l *LoadingIndicator) Stop() {
	l.active = false
	l.progress = 0
}

// Active reports whether a task is being shown
func (l *LoadingIndicator) Active() bool {
	return l.active
}

// SetProgress sets the progress percentage (0-100)
func (l *LoadingIndicator) SetProgress(progress float64) {
	l.progress = progress
}

// SetMessage updates the loading message
func (l *LoadingIndicator) SetMessage(message string) {
	l.message = message
}

// Tick advances the spinner animation
func (l *LoadingIndicator) Tick() {
	l.spinner.Next()
}

// View renders the loading indicator
func (l *LoadingIndicator) View() string {
	if !l.active {
		return ""
	}

	spinnerStyle := lipgloss.NewStyle().Foreground(l.colors.accent)
	messageStyle := lipgloss.NewStyle().Foreground(l.colors.text)

	return fmt.Sprintf("%s %s %s (%.0f%%)",
		spinnerStyle.Render(l.spinner.View()),
		messageStyle.Render(l.message),
		renderProgressBar(l.progress, 20, l.colors),
		l.progress)
}

// renderProgressBar creates a simple progress bar
func renderProgressBar(progress float64, width int, colors palette) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	filled := int(float64(width) * progress / 100)
	empty := width - filled

	barStyle := lipgloss.NewStyle().Foreground(colors.success)
	emptyStyle := lipgloss.NewStyle().Foreground(colors.border)

	return barStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", empty))
}

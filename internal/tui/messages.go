package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rejaad/rearchive/internal/extraction"
)

// Message types for async operations
type (
	// EventMsg carries a background task event onto the UI goroutine
	EventMsg struct {
		Event extraction.Event
	}

	// TickMsg is sent periodically for spinner animation
	TickMsg time.Time
)

// waitForEvent blocks on the executor's channel and delivers the next event to Update.
// Update must re-issue it after every EventMsg to keep listening.
func waitForEvent(events <-chan extraction.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return EventMsg{Event: ev}
	}
}

// tickCmd creates a ticker for spinner animation
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

package tui

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rejaad/rearchive/internal/config"
	"github.com/rejaad/rearchive/internal/extraction"
	"github.com/rejaad/rearchive/internal/reader"
	"github.com/rejaad/rearchive/pkg/models"
)

type extractRequest struct {
	archive string
	dest    string
	targets []string
}

// fakeExecutor records submissions; events are fed to Update by the test
type fakeExecutor struct {
	events   chan extraction.Event
	lists    []string
	extracts []extractRequest
	next     int
	closed   bool
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{events: make(chan extraction.Event)}
}

func (f *fakeExecutor) nextID() string {
	f.next++
	return fmt.Sprintf("req-%d", f.next)
}

func (f *fakeExecutor) SubmitList(archivePath string) string {
	if f.closed {
		return ""
	}
	f.lists = append(f.lists, archivePath)
	return f.nextID()
}

func (f *fakeExecutor) SubmitExtract(archivePath, destDir string, targets []string) string {
	if f.closed {
		return ""
	}
	f.extracts = append(f.extracts, extractRequest{archive: archivePath, dest: destDir, targets: targets})
	return f.nextID()
}

func (f *fakeExecutor) Events() <-chan extraction.Event {
	return f.events
}

func testConfig() *config.Config {
	return &config.Config{Theme: config.ThemeDark, LastDirectory: "/data"}
}

func newTestModel() (model, *fakeExecutor) {
	exec := newFakeExecutor()
	m := initialModel(testConfig(), exec, true)
	m = update(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, exec
}

func update(m model, msg tea.Msg) model {
	next, _ := m.Update(msg)
	return next.(model)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func scenarioEntries() []models.Entry {
	return []models.Entry{
		{Path: "a/b/c.txt", Size: 10},
		{Path: "a/d.txt", Size: 20},
		{Path: "e.txt", Size: 5},
	}
}

func listDone(id, archive string, entries []models.Entry, err error) EventMsg {
	return EventMsg{Event: extraction.Event{
		RequestID:   id,
		Op:          extraction.OpList,
		ArchivePath: archive,
		Done:        true,
		Progress:    100,
		Entries:     entries,
		Err:         err,
	}}
}

// openScenario opens /data/x.zip and delivers its listing
func openScenario(t *testing.T) (model, *fakeExecutor) {
	t.Helper()
	m, exec := newTestModel()
	next, _ := m.openArchive("x.zip")
	m = next.(model)
	m = update(m, listDone("req-1", "/data/x.zip", scenarioEntries(), nil))
	if m.root == nil {
		t.Fatal("tree should be built after listing")
	}
	return m, exec
}

func rowNames(m model) []string {
	var names []string
	for _, n := range m.rows {
		names = append(names, n.Name)
	}
	return names
}

// TestModelInitialization tests the initial model setup
func TestModelInitialization(t *testing.T) {
	m := initialModel(testConfig(), newFakeExecutor(), true)

	if m.root != nil {
		t.Error("No archive should be open initially")
	}
	if m.expanded == nil || m.marked == nil || m.pendingExtract == nil {
		t.Error("State maps should be initialized")
	}
	if m.loading.Active() {
		t.Error("Loading indicator should be idle")
	}
	if m.View() != "\n  Initializing..." {
		t.Error("View should wait for the window size")
	}
}

// TestExtractGuards tests the messages shown before an archive is usable
func TestExtractGuards(t *testing.T) {
	m, exec := newTestModel()

	m = update(m, key("x"))
	if m.status != msgOpenFirst || m.statusKind != statusError {
		t.Errorf("Expected %q, got %q", msgOpenFirst, m.status)
	}

	m = update(m, key("s"))
	if m.status != msgOpenFirst {
		t.Errorf("Expected %q, got %q", msgOpenFirst, m.status)
	}
	if len(exec.extracts) != 0 {
		t.Error("No extraction should be submitted")
	}
}

// TestOpenArchive tests that opening submits a listing against the last directory
func TestOpenArchive(t *testing.T) {
	m, exec := newTestModel()

	m = update(m, key("o"))
	if m.prompt != promptOpen {
		t.Fatal("Open prompt should be shown")
	}
	m.input.SetValue("x.zip")
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	if !reflect.DeepEqual(exec.lists, []string{"/data/x.zip"}) {
		t.Errorf("Expected listing of /data/x.zip, got %v", exec.lists)
	}
	if m.pendingList != "req-1" {
		t.Errorf("Expected pending request req-1, got %q", m.pendingList)
	}
	if !m.loading.Active() {
		t.Error("Loading indicator should be active")
	}
	if !reflect.DeepEqual(m.history, []string{"/data/x.zip"}) {
		t.Errorf("History = %v", m.history)
	}
}

// TestOpenUnsupportedArchive tests that unknown extensions never reach the executor
func TestOpenUnsupportedArchive(t *testing.T) {
	m, exec := newTestModel()

	next, _ := m.openArchive("/data/notes.txt")
	m = next.(model)

	if len(exec.lists) != 0 {
		t.Error("Unsupported file should not be listed")
	}
	if m.statusKind != statusError || !strings.Contains(m.status, reader.ErrUnsupportedFormat.Error()) {
		t.Errorf("Unexpected status %q", m.status)
	}
}

// TestTreeReady tests that a listing replaces the tree
func TestTreeReady(t *testing.T) {
	m, _ := openScenario(t)

	if m.archivePath != "/data/x.zip" {
		t.Errorf("archivePath = %q", m.archivePath)
	}
	if got := rowNames(m); !reflect.DeepEqual(got, []string{"a", "e.txt"}) {
		t.Errorf("Expected top-level rows [a e.txt], got %v", got)
	}
	if m.loading.Active() {
		t.Error("Loading indicator should stop after the listing")
	}
	if !strings.Contains(m.status, "3 files") {
		t.Errorf("Status should report the file count, got %q", m.status)
	}
}

// TestStaleListingDiscarded tests that results are routed by request, not arrival order
func TestStaleListingDiscarded(t *testing.T) {
	m, _ := newTestModel()

	next, _ := m.openArchive("/data/first.zip")
	m = next.(model)
	next, _ = m.openArchive("/data/second.zip")
	m = next.(model)

	m = update(m, listDone("req-1", "/data/first.zip", scenarioEntries(), nil))
	if m.root != nil {
		t.Fatal("Superseded listing should be discarded")
	}

	m = update(m, listDone("req-2", "/data/second.zip", []models.Entry{{Path: "only.txt"}}, nil))
	if m.archivePath != "/data/second.zip" {
		t.Errorf("archivePath = %q", m.archivePath)
	}
	if got := rowNames(m); !reflect.DeepEqual(got, []string{"only.txt"}) {
		t.Errorf("rows = %v", got)
	}
	if len(m.history) != 2 {
		t.Errorf("Both archives should be in history, got %v", m.history)
	}
}

// TestListingFailure tests that a failed open leaves no tree behind
func TestListingFailure(t *testing.T) {
	m, _ := openScenario(t)

	next, _ := m.openArchive("/data/broken.7z")
	m = next.(model)
	err := &extraction.ArchiveReadError{Path: "/data/broken.7z", Err: reader.ErrCorruptArchive}
	m = update(m, listDone("req-2", "/data/broken.7z", nil, err))

	if m.root != nil || len(m.rows) != 0 {
		t.Error("No partial tree should be exposed")
	}
	if m.statusKind != statusError || !strings.HasPrefix(m.status, string(extraction.KindArchiveRead)) {
		t.Errorf("Unexpected status %q", m.status)
	}
}

// TestExpandCollapse tests folder navigation
func TestExpandCollapse(t *testing.T) {
	m, _ := openScenario(t)

	m = update(m, tea.KeyMsg{Type: tea.KeyRight})
	if got := rowNames(m); !reflect.DeepEqual(got, []string{"a", "b", "d.txt", "e.txt"}) {
		t.Errorf("Expanded rows = %v", got)
	}

	m = update(m, key("j"))
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := rowNames(m); !reflect.DeepEqual(got, []string{"a", "b", "c.txt", "d.txt", "e.txt"}) {
		t.Errorf("Expanded rows = %v", got)
	}

	// left on an expanded folder collapses it, again moves to the parent
	m = update(m, tea.KeyMsg{Type: tea.KeyLeft})
	m = update(m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.cursor != 0 {
		t.Errorf("Expected cursor on parent folder, got %d", m.cursor)
	}
	m = update(m, tea.KeyMsg{Type: tea.KeyLeft})
	if got := rowNames(m); !reflect.DeepEqual(got, []string{"a", "e.txt"}) {
		t.Errorf("Collapsed rows = %v", got)
	}
}

// TestExtractSelectedFolder tests the folder selection scenario end to end
func TestExtractSelectedFolder(t *testing.T) {
	m, exec := openScenario(t)

	m = update(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if len(m.marked) != 1 {
		t.Fatalf("Expected folder to be marked, got %d marks", len(m.marked))
	}

	m = update(m, key("s"))
	if m.prompt != promptDest {
		t.Fatal("Destination prompt should be shown")
	}
	if m.input.Value() != "/data" {
		t.Errorf("Default destination = %q", m.input.Value())
	}
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(exec.extracts) != 1 {
		t.Fatalf("Expected one extraction, got %d", len(exec.extracts))
	}
	got := exec.extracts[0]
	if got.archive != "/data/x.zip" || got.dest != "/data" {
		t.Errorf("Unexpected request %+v", got)
	}
	if !reflect.DeepEqual(got.targets, []string{"a/b/c.txt", "a/d.txt"}) {
		t.Errorf("targets = %v", got.targets)
	}

	m = update(m, EventMsg{Event: extraction.Event{
		RequestID: "req-2",
		Op:        extraction.OpExtract,
		Targets:   got.targets,
		Done:      true,
		Progress:  100,
	}})
	if m.status != fmt.Sprintf(msgExtractedSome, 2) || m.statusKind != statusSuccess {
		t.Errorf("Unexpected status %q", m.status)
	}
	if m.loading.Active() {
		t.Error("Loading indicator should stop after extraction")
	}
}

// TestExtractAll tests extracting everything to a typed destination
func TestExtractAll(t *testing.T) {
	m, exec := openScenario(t)

	m = update(m, key("x"))
	m.input.SetValue("out")
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(exec.extracts) != 1 || exec.extracts[0].targets != nil {
		t.Fatalf("Expected one extract-all request, got %+v", exec.extracts)
	}
	if exec.extracts[0].dest != "/data/out" {
		t.Errorf("Relative destination should resolve against last directory, got %q", exec.extracts[0].dest)
	}

	m = update(m, EventMsg{Event: extraction.Event{RequestID: "req-2", Op: extraction.OpExtract, Done: true, Progress: 100}})
	if m.status != msgExtractedAll {
		t.Errorf("Expected %q, got %q", msgExtractedAll, m.status)
	}
}

// TestExtractionFailureReported tests that extraction errors reach the status line
func TestExtractionFailureReported(t *testing.T) {
	m, _ := openScenario(t)

	m = update(m, key("x"))
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	err := &extraction.ExtractionError{Path: "/data/x.zip", Dest: "/data", Err: errors.New("disk full")}
	m = update(m, EventMsg{Event: extraction.Event{RequestID: "req-2", Op: extraction.OpExtract, Done: true, Err: err}})

	if m.statusKind != statusError || !strings.Contains(m.status, "disk full") {
		t.Errorf("Unexpected status %q", m.status)
	}
}

// TestSelectEmptyFolder tests the empty selection guard
func TestSelectEmptyFolder(t *testing.T) {
	m, exec := newTestModel()
	next, _ := m.openArchive("/data/y.zip")
	m = next.(model)
	m = update(m, listDone("req-1", "/data/y.zip", []models.Entry{{Path: "empty/", IsDir: true}}, nil))

	m = update(m, key("s"))
	if m.status != msgSelectFiles {
		t.Errorf("Expected %q, got %q", msgSelectFiles, m.status)
	}
	if m.prompt != promptNone || len(exec.extracts) != 0 {
		t.Error("Nothing should be submitted for an empty selection")
	}
}

// TestPromptCancel tests that esc abandons a prompt
func TestPromptCancel(t *testing.T) {
	m, exec := openScenario(t)

	m = update(m, key("x"))
	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.prompt != promptNone {
		t.Error("Prompt should be closed")
	}
	if len(exec.extracts) != 0 {
		t.Error("Cancelled prompt should not submit")
	}
}

// TestHistoryReopen tests re-opening an archive from the history list
func TestHistoryReopen(t *testing.T) {
	m, exec := openScenario(t)

	m = update(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusHistory {
		t.Fatal("Tab should focus the history list")
	}
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	if !reflect.DeepEqual(exec.lists, []string{"/data/x.zip", "/data/x.zip"}) {
		t.Errorf("Expected archive to be listed again, got %v", exec.lists)
	}
	if len(m.history) != 1 {
		t.Errorf("History should not duplicate entries, got %v", m.history)
	}
	if m.focus != focusTree {
		t.Error("Focus should return to the tree")
	}
}

// TestClosedExecutor tests submissions after shutdown
func TestClosedExecutor(t *testing.T) {
	m, exec := newTestModel()
	exec.closed = true

	next, _ := m.openArchive("/data/x.zip")
	m = next.(model)
	if m.pendingList != "" || m.statusKind != statusError {
		t.Error("Closed executor should be reported")
	}
}

// TestAboutScreen tests the about overlay
func TestAboutScreen(t *testing.T) {
	m, _ := newTestModel()

	m = update(m, key("?"))
	if !m.showAbout {
		t.Fatal("About screen should be shown")
	}
	if !strings.Contains(m.View(), "ReJaad") {
		t.Error("About screen should show the creator")
	}
	m = update(m, key("a"))
	if m.showAbout {
		t.Error("Any key should close the about screen")
	}
}

// TestLoadingTicks tests that the spinner only ticks while loading
func TestLoadingTicks(t *testing.T) {
	m, _ := newTestModel()

	if _, cmd := m.Update(TickMsg{}); cmd != nil {
		t.Error("Idle indicator should not schedule ticks")
	}

	next, cmd := m.openArchive("/data/x.zip")
	if cmd == nil {
		t.Error("Opening should schedule the first tick")
	}
	m = next.(model)
	if _, cmd := m.Update(TickMsg{}); cmd == nil {
		t.Error("Active indicator should keep ticking")
	}
}

func TestNewPalette(t *testing.T) {
	tests := []struct {
		theme        string
		terminalDark bool
		want         palette
	}{
		{config.ThemeDark, false, darkPalette},
		{config.ThemeLight, true, lightPalette},
		{config.ThemeSystem, true, darkPalette},
		{config.ThemeSystem, false, lightPalette},
	}

	for _, tt := range tests {
		if got := newPalette(tt.theme, tt.terminalDark); got != tt.want {
			t.Errorf("newPalette(%q, %v) = %+v", tt.theme, tt.terminalDark, got)
		}
	}
}

func TestRenderProgressBar(t *testing.T) {
	bar := renderProgressBar(50, 10, darkPalette)
	if strings.Count(bar, "█") != 5 || strings.Count(bar, "░") != 5 {
		t.Errorf("Unexpected bar %q", bar)
	}
	if strings.Count(renderProgressBar(150, 10, darkPalette), "█") != 10 {
		t.Error("Progress should clamp at 100")
	}
}

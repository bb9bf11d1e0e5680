package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rejaad/rearchive/internal/buildinfo"
	"github.com/rejaad/rearchive/internal/config"
	"github.com/rejaad/rearchive/internal/extraction"
	"github.com/rejaad/rearchive/internal/logging"
	"github.com/rejaad/rearchive/internal/reader"
	"github.com/rejaad/rearchive/internal/tree"
	"github.com/rejaad/rearchive/pkg/models"
)

const (
	msgOpenFirst     = "Please open an archive first"
	msgSelectFiles   = "Please select files"
	msgExtractedAll  = "Extraction completed successfully!"
	msgExtractedSome = "Successfully extracted %d files!"
)

// executor is the part of extraction.Executor the UI drives
type executor interface {
	SubmitList(archivePath string) string
	SubmitExtract(archivePath, destDir string, targets []string) string
	Events() <-chan extraction.Event
}

type focusPane int

const (
	focusTree focusPane = iota
	focusHistory
)

type promptMode int

const (
	promptNone promptMode = iota
	promptOpen
	promptDest
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

type model struct {
	cfg     *config.Config
	exec    executor
	colors  palette
	loading *LoadingIndicator

	// Archive history, newest last
	history       []string
	historyCursor int
	focus         focusPane

	// Current archive session, replaced wholesale when a listing lands
	archivePath string
	root        *tree.Node
	rows        []*tree.Node
	cursor      int
	expanded    map[string]bool
	marked      map[*tree.Node]bool

	pendingList    string
	pendingArchive string
	pendingExtract map[string]struct{}

	prompt         promptMode
	input          textinput.Model
	extractTargets []string // nil extracts everything

	status     string
	statusKind statusKind
	showAbout  bool

	viewport viewport.Model
	ready    bool
	width    int
	height   int
}

func initialModel(cfg *config.Config, exec executor, terminalDark bool) model {
	colors := newPalette(cfg.Theme, terminalDark)

	input := textinput.New()
	input.CharLimit = 4096

	return model{
		cfg:            cfg,
		exec:           exec,
		colors:         colors,
		loading:        NewLoadingIndicator(colors),
		expanded:       make(map[string]bool),
		marked:         make(map[*tree.Node]bool),
		pendingExtract: make(map[string]struct{}),
		input:          input,
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForEvent(m.exec.Events())}
	if m.loading.Active() {
		cmds = append(cmds, tickCmd())
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(m.treeWidth(), m.bodyHeight())
			m.ready = true
		} else {
			m.viewport.Width = m.treeWidth()
			m.viewport.Height = m.bodyHeight()
		}
		m.input.Width = msg.Width - 20
		m.updateViewport()
		return m, nil

	case TickMsg:
		if !m.loading.Active() {
			return m, nil
		}
		m.loading.Tick()
		return m, tickCmd()

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, waitForEvent(m.exec.Events())

	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showAbout {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.showAbout = false
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "?":
		m.showAbout = true

	case "o":
		return m.openPrompt(promptOpen, withTrailingSeparator(m.cfg.LastDirectory))

	case "x":
		return m.extractAll()

	case "s":
		return m.extractSelected()

	case "tab":
		if m.focus == focusTree && len(m.history) > 0 {
			m.focus = focusHistory
		} else {
			m.focus = focusTree
		}

	case "up", "k":
		m.moveCursor(-1)

	case "down", "j":
		m.moveCursor(1)

	case "enter":
		if m.focus == focusHistory {
			if m.historyCursor < len(m.history) {
				return m.openArchive(m.history[m.historyCursor])
			}
			return m, nil
		}
		if n := m.cursorNode(); n != nil && n.IsDir() {
			m.expanded[n.Path] = !m.expanded[n.Path]
			m.refreshRows()
		}

	case "right", "l":
		if n := m.cursorNode(); n != nil && n.IsDir() && !m.expanded[n.Path] {
			m.expanded[n.Path] = true
			m.refreshRows()
		}

	case "left", "h":
		m.collapseOrAscend()

	case " ", "space":
		if n := m.cursorNode(); n != nil {
			if m.marked[n] {
				delete(m.marked, n)
			} else {
				m.marked[n] = true
			}
			m.updateViewport()
		}

	case "esc":
		if len(m.marked) > 0 {
			m.marked = make(map[*tree.Node]bool)
			m.updateViewport()
		}
		m.status = ""
	}

	return m, nil
}

func (m model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEsc:
		m.prompt = promptNone
		m.input.Blur()
		m.extractTargets = nil
		return m, nil

	case tea.KeyEnter:
		mode := m.prompt
		value := m.input.Value()
		m.prompt = promptNone
		m.input.Blur()
		if mode == promptOpen {
			return m.openArchive(value)
		}
		return m.submitExtract(value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) openPrompt(mode promptMode, value string) (tea.Model, tea.Cmd) {
	m.prompt = mode
	m.input.SetValue(value)
	m.input.CursorEnd()
	if mode == promptOpen {
		m.input.Prompt = "Open archive: "
		m.input.Placeholder = "path to " + strings.Join(reader.SupportedExtensions(), ", ")
	} else {
		m.input.Prompt = "Extract to: "
		m.input.Placeholder = "destination folder"
	}
	cmd := m.input.Focus()
	return m, cmd
}

// openArchive starts listing path in the background. The tree is replaced when the
// listing for this request arrives; earlier listings still in flight are discarded.
func (m model) openArchive(path string) (tea.Model, tea.Cmd) {
	path = strings.TrimSpace(path)
	if path == "" {
		return m, nil
	}
	path = m.cfg.ResolveArchivePath(path)

	if _, err := reader.DetectFormat(path); err != nil {
		m.setStatus(statusError, fmt.Sprintf("%s: %v", extraction.KindArchiveRead, err))
		return m, nil
	}

	id := m.exec.SubmitList(path)
	if id == "" {
		m.setStatus(statusError, "Background tasks are shutting down")
		return m, nil
	}
	m.pendingList = id
	m.pendingArchive = path
	m.addHistory(path)
	m.focus = focusTree

	cmd := m.startLoading("Opening " + filepath.Base(path))
	return m, cmd
}

// extractAll asks for a destination and extracts every entry
func (m model) extractAll() (tea.Model, tea.Cmd) {
	if m.root == nil {
		m.setStatus(statusError, msgOpenFirst)
		return m, nil
	}
	m.extractTargets = nil
	return m.openPrompt(promptDest, filepath.Dir(m.archivePath))
}

// extractSelected resolves the selection to file paths and asks for a destination
func (m model) extractSelected() (tea.Model, tea.Cmd) {
	if m.root == nil {
		m.setStatus(statusError, msgOpenFirst)
		return m, nil
	}
	targets := tree.Resolve(m.root, m.selection())
	if len(targets) == 0 {
		m.setStatus(statusError, msgSelectFiles)
		return m, nil
	}
	m.extractTargets = targets
	return m.openPrompt(promptDest, filepath.Dir(m.archivePath))
}

func (m model) submitExtract(dest string) (tea.Model, tea.Cmd) {
	dest = strings.TrimSpace(dest)
	targets := m.extractTargets
	m.extractTargets = nil
	if dest == "" {
		return m, nil
	}
	dest = m.cfg.ResolveArchivePath(dest)

	id := m.exec.SubmitExtract(m.archivePath, dest, targets)
	if id == "" {
		m.setStatus(statusError, "Background tasks are shutting down")
		return m, nil
	}
	m.pendingExtract[id] = struct{}{}

	cmd := m.startLoading("Extracting to " + dest)
	return m, cmd
}

// selection returns the marked nodes in tree order, or the node under the cursor
func (m model) selection() []*tree.Node {
	if len(m.marked) == 0 {
		if n := m.cursorNode(); n != nil {
			return []*tree.Node{n}
		}
		return nil
	}

	var selected []*tree.Node
	tree.Walk(m.root, func(n *tree.Node) bool {
		if m.marked[n] {
			selected = append(selected, n)
		}
		return true
	})
	return selected
}

func (m *model) startLoading(message string) tea.Cmd {
	m.status = ""
	if m.loading.Start(message) {
		return tickCmd()
	}
	return nil
}

// handleEvent applies a background result. Results are matched by request ID,
// never by arrival order.
func (m *model) handleEvent(ev extraction.Event) {
	logger := logging.L().With(
		zap.String("request_id", ev.RequestID),
		zap.String("op", ev.Op.String()),
	)

	switch ev.Op {
	case extraction.OpList:
		if ev.RequestID != m.pendingList {
			logger.Debug("discarding stale listing", zap.String("archive", ev.ArchivePath))
			return
		}
		if !ev.Done {
			m.loading.SetProgress(ev.Progress)
			return
		}
		m.pendingList = ""
		m.pendingArchive = ""
		m.onTreeReady(ev)

	case extraction.OpExtract:
		if _, ok := m.pendingExtract[ev.RequestID]; !ok {
			return
		}
		if !ev.Done {
			m.loading.SetProgress(ev.Progress)
			return
		}
		delete(m.pendingExtract, ev.RequestID)
		m.onExtractionDone(ev)
	}

	if m.pendingList == "" && len(m.pendingExtract) == 0 {
		m.loading.Stop()
	} else {
		m.loading.SetProgress(ev.Progress)
	}
}

func (m *model) onTreeReady(ev extraction.Event) {
	if ev.Err != nil {
		m.archivePath = ""
		m.root = nil
		m.rows = nil
		m.cursor = 0
		m.setStatus(statusError, fmt.Sprintf("%s: %v", extraction.KindOf(ev.Err), ev.Err))
		return
	}

	m.archivePath = ev.ArchivePath
	m.root = tree.Build(ev.Entries)
	m.expanded = make(map[string]bool)
	m.marked = make(map[*tree.Node]bool)
	m.cursor = 0
	m.refreshRows()
	m.setStatus(statusInfo, fmt.Sprintf("Opened %s: %d files, %s",
		filepath.Base(ev.ArchivePath),
		tree.CountFiles(m.root),
		models.FormatSize(tree.TotalSize(m.root))))
}

func (m *model) onExtractionDone(ev extraction.Event) {
	switch {
	case extraction.KindOf(ev.Err) == extraction.KindEmptySelection:
		m.setStatus(statusError, msgSelectFiles)
	case ev.Err != nil:
		m.setStatus(statusError, fmt.Sprintf("%s: %v", extraction.KindOf(ev.Err), ev.Err))
	case ev.Targets == nil:
		m.setStatus(statusSuccess, msgExtractedAll)
	default:
		m.setStatus(statusSuccess, fmt.Sprintf(msgExtractedSome, len(ev.Targets)))
	}
}

func (m *model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

func (m *model) addHistory(path string) {
	for i, p := range m.history {
		if p == path {
			m.historyCursor = i
			return
		}
	}
	m.history = append(m.history, path)
	m.historyCursor = len(m.history) - 1
}

func (m *model) cursorNode() *tree.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

func (m *model) moveCursor(delta int) {
	if m.focus == focusHistory {
		m.historyCursor = clamp(m.historyCursor+delta, 0, len(m.history)-1)
		return
	}
	m.cursor = clamp(m.cursor+delta, 0, len(m.rows)-1)
	m.updateViewport()
}

func (m *model) collapseOrAscend() {
	n := m.cursorNode()
	if n == nil {
		return
	}
	if n.IsDir() && m.expanded[n.Path] {
		m.expanded[n.Path] = false
		m.refreshRows()
		return
	}
	parent := n.Parent()
	if parent == nil || parent == m.root {
		return
	}
	for i, row := range m.rows {
		if row == parent {
			m.cursor = i
			break
		}
	}
	m.updateViewport()
}

// refreshRows flattens the visible part of the tree
func (m *model) refreshRows() {
	rows := make([]*tree.Node, 0, len(m.rows))
	tree.Walk(m.root, func(n *tree.Node) bool {
		if n == m.root {
			return true
		}
		rows = append(rows, n)
		return n.IsDir() && m.expanded[n.Path]
	})
	m.rows = rows
	m.cursor = clamp(m.cursor, 0, len(m.rows)-1)
	m.updateViewport()
}

func (m *model) updateViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTree())

	if m.cursor < m.viewport.YOffset {
		m.viewport.SetYOffset(m.cursor)
	} else if m.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func withTrailingSeparator(dir string) string {
	if dir == "" || strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir
	}
	return dir + string(filepath.Separator)
}

func (m model) historyWidth() int {
	w := m.width / 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) treeWidth() int {
	w := m.width - m.historyWidth() - 1
	if w < 10 {
		w = 10
	}
	return w
}

// bodyHeight leaves room for header, status line and footer
func (m model) bodyHeight() int {
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

func (m model) renderTree() string {
	if m.root == nil {
		return lipgloss.NewStyle().
			Foreground(m.colors.muted).
			Italic(true).
			Render("No archive open. Press o to open one.")
	}
	if len(m.rows) == 0 {
		return lipgloss.NewStyle().Foreground(m.colors.muted).Render("(empty archive)")
	}

	var s strings.Builder
	for i, n := range m.rows {
		cursor := "  "
		style := lipgloss.NewStyle().Foreground(m.colors.text)
		if i == m.cursor {
			cursor = "> "
			if m.focus == focusTree {
				style = style.Foreground(m.colors.accent).Bold(true)
			}
		}

		mark := "[ ]"
		if m.marked[n] {
			mark = "[x]"
		}

		icon := "  "
		detail := ""
		if n.IsDir() {
			icon = "▸ "
			if m.expanded[n.Path] {
				icon = "▾ "
			}
			detail = fmt.Sprintf("%d files", tree.CountFiles(n))
		} else {
			detail = models.FormatSize(n.Size)
			if !n.Modified.IsZero() {
				detail += "  " + n.Modified.Format("2006-01-02 15:04")
			}
		}

		line := fmt.Sprintf("%s%s %s%s%s", cursor, mark, strings.Repeat("  ", n.Depth()), icon, n.Name)
		detailStyle := lipgloss.NewStyle().Foreground(m.colors.muted)
		s.WriteString(style.Render(line) + "  " + detailStyle.Render(detail) + "\n")
	}
	return s.String()
}

func (m model) renderHistory() string {
	var s strings.Builder

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(m.colors.header)
	s.WriteString(headerStyle.Render("Archives") + "\n")
	s.WriteString(strings.Repeat("─", m.historyWidth()-2) + "\n")

	if len(m.history) == 0 {
		s.WriteString(lipgloss.NewStyle().Foreground(m.colors.muted).Render("(none yet)"))
		return s.String()
	}

	for i, p := range m.history {
		cursor := "  "
		style := lipgloss.NewStyle().Foreground(m.colors.text)
		if i == m.historyCursor && m.focus == focusHistory {
			cursor = "> "
			style = style.Foreground(m.colors.accent).Bold(true)
		}
		if p == m.archivePath {
			style = style.Underline(true)
		}
		s.WriteString(style.Render(truncate(cursor+filepath.Base(p), m.historyWidth()-2)) + "\n")
	}
	return s.String()
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.showAbout {
		return m.renderAbout()
	}

	historyPane := lipgloss.NewStyle().
		Width(m.historyWidth()).
		Height(m.bodyHeight()).
		Render(m.renderHistory())

	divider := lipgloss.NewStyle().
		Foreground(m.colors.border).
		Render(strings.TrimSuffix(strings.Repeat("│\n", m.bodyHeight()), "\n"))

	treePane := lipgloss.NewStyle().
		Width(m.treeWidth()).
		Height(m.bodyHeight()).
		Render(m.viewport.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top, historyPane, divider, treePane)

	return fmt.Sprintf("%s\n%s\n%s\n%s", m.renderHeader(), body, m.renderStatus(), m.renderFooter())
}

func (m model) renderHeader() string {
	title := buildinfo.Name
	if m.archivePath != "" {
		title = fmt.Sprintf("%s - %s", buildinfo.Name, m.archivePath)
	}

	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.colors.header).
		Background(m.colors.headerBg)

	return style.Render(title)
}

func (m model) renderStatus() string {
	if m.loading.Active() {
		return m.loading.View()
	}

	style := lipgloss.NewStyle().Foreground(m.colors.text)
	switch m.statusKind {
	case statusSuccess:
		style = style.Foreground(m.colors.success)
	case statusError:
		style = style.Foreground(m.colors.failure)
	}
	return style.Render(m.status)
}

func (m model) renderFooter() string {
	if m.prompt != promptNone {
		return m.input.View()
	}

	info := "o: open • x: extract all • s: extract selected • space: mark • ←/→: fold • tab: archives • ?: about • q: quit"
	return lipgloss.NewStyle().Foreground(m.colors.muted).Render(info)
}

func (m model) renderAbout() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(m.colors.accent)
	textStyle := lipgloss.NewStyle().Foreground(m.colors.text)
	hintStyle := lipgloss.NewStyle().Foreground(m.colors.muted)

	content := strings.Join([]string{
		titleStyle.Render(buildinfo.Name),
		"",
		textStyle.Render("Version: " + buildinfo.Version),
		textStyle.Render("Creator: " + buildinfo.Creator),
		textStyle.Render(buildinfo.Copyright),
		textStyle.Render(buildinfo.Website),
		"",
		hintStyle.Render("[any key to close]"),
	}, "\n")

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func truncate(s string, maxLen int) string {
	if maxLen <= 3 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// ShowTUI runs the browser until the user quits. initialArchive, when set, is
// opened on startup.
func ShowTUI(cfg *config.Config, exec *extraction.Executor, initialArchive string) error {
	m := initialModel(cfg, exec, lipgloss.HasDarkBackground())
	if initialArchive != "" {
		next, _ := m.openArchive(initialArchive)
		m = next.(model)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

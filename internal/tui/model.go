package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tdh8316/acclookup/internal/export"
	"github.com/tdh8316/acclookup/internal/history"
	"github.com/tdh8316/acclookup/internal/lookup"
	"github.com/tdh8316/acclookup/internal/output"
	"github.com/tdh8316/acclookup/internal/platform"
)

const defaultExportPath = "results.txt"

type pane int

const (
	paneUsername pane = iota
	panePlatforms
	paneExport
)

// Options wires a TUI session to the rest of the application.
type Options struct {
	Worker   *lookup.Worker
	Registry *platform.Registry
	// Selected is the initial checklist state.
	Selected   platform.Selection
	History    *history.Store
	ExportPath string
	NoColor    bool
	Logger     logrus.FieldLogger

	Input  io.Reader
	Output io.Writer
}

// searchDoneMsg carries the completion of a background search.
type searchDoneMsg lookup.Completion

// Model is the bubbletea model of the search screen.
type Model struct {
	worker   *lookup.Worker
	registry *platform.Registry
	history  *history.Store
	logger   logrus.FieldLogger

	parentCtx context.Context
	cancel    context.CancelFunc

	keymap  KeyMap
	help    help.Model
	input   textinput.Model
	path    textinput.Model
	spinner spinner.Model
	results viewport.Model

	names    []string
	selected platform.Selection
	cursor   int
	columns  int
	focus    pane

	// generation of the search whose results are wanted; 0 when none.
	generation uint64
	searching  bool
	username   string
	lines      []string

	status     string
	statusWarn bool
	exportPath string

	width  int
	height int
}

func NewModel(parentCtx context.Context, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	selected := opts.Selected
	if selected == nil {
		selected = platform.All(opts.Registry)
	}

	input := textinput.New()
	input.Placeholder = "username"
	input.Prompt = "› "
	input.CharLimit = 256
	input.ShowSuggestions = true
	input.Focus()

	path := textinput.New()
	path.Prompt = "Export to: "
	path.CharLimit = 1024

	exportPath := opts.ExportPath
	if exportPath == "" {
		exportPath = defaultExportPath
	}

	m := Model{
		worker:     opts.Worker,
		registry:   opts.Registry,
		history:    opts.History,
		logger:     logger,
		parentCtx:  parentCtx,
		keymap:     DefaultKeyMap(),
		help:       help.New(),
		input:      input,
		path:       path,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		results:    viewport.New(80, 10),
		names:      opts.Registry.Names(),
		selected:   copySelection(selected),
		columns:    4,
		exportPath: exportPath,
	}
	m.refreshSuggestions()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case spinner.TickMsg:
		if !m.searching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case searchDoneMsg:
		if msg.Generation != m.generation {
			m.logger.WithField("generation", msg.Generation).Debug("dropping stale search result")
			return m, nil
		}
		m.finish(lookup.Completion(msg))
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == paneExport {
		m.path, cmd = m.path.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.Quit) {
		m.stop()
		return m, tea.Quit
	}

	if m.focus == paneExport {
		return m.handleExportKey(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Search):
		return m.startSearch()

	case key.Matches(msg, m.keymap.Cancel):
		if m.searching {
			m.stop()
			m.setStatus("Search cancelled.", true)
		}
		return m, nil

	case key.Matches(msg, m.keymap.SwitchPane):
		if m.focus == paneUsername {
			m.focus = panePlatforms
			m.input.Blur()
			return m, nil
		}
		m.focus = paneUsername
		return m, m.input.Focus()

	case key.Matches(msg, m.keymap.Export):
		if len(m.lines) == 0 {
			m.setStatus("Nothing to export yet.", true)
			return m, nil
		}
		m.focus = paneExport
		m.input.Blur()
		m.path.SetValue(m.exportPath)
		m.path.CursorEnd()
		return m, m.path.Focus()

	case key.Matches(msg, m.keymap.Clear):
		m.stop()
		m.input.Reset()
		m.lines = nil
		m.username = ""
		m.results.SetContent("")
		m.setStatus("", false)
		return m, nil

	case key.Matches(msg, m.keymap.PageUp), key.Matches(msg, m.keymap.PageDown):
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}

	if m.focus == panePlatforms {
		m.handlePlatformKey(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handlePlatformKey(msg tea.KeyMsg) {
	n := len(m.names)
	if n == 0 {
		return
	}

	switch {
	case key.Matches(msg, m.keymap.Toggle):
		name := m.names[m.cursor]
		if m.selected.Has(name) {
			delete(m.selected, name)
		} else {
			m.selected[name] = struct{}{}
		}
	case key.Matches(msg, m.keymap.SelectAll):
		m.selected = platform.All(m.registry)
	case key.Matches(msg, m.keymap.SelectNone):
		m.selected = platform.NewSelection()
	case key.Matches(msg, m.keymap.Left):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keymap.Right):
		m.cursor = min(m.cursor+1, n-1)
	case key.Matches(msg, m.keymap.Up):
		if m.cursor-m.columns >= 0 {
			m.cursor -= m.columns
		}
	case key.Matches(msg, m.keymap.Down):
		if m.cursor+m.columns < n {
			m.cursor += m.columns
		}
	}
}

func (m Model) handleExportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Cancel):
		m.path.Blur()
		m.focus = paneUsername
		return m, m.input.Focus()

	case key.Matches(msg, m.keymap.Search):
		target := strings.TrimSpace(m.path.Value())
		if target == "" {
			m.setStatus("Enter a file name to export to.", true)
			return m, nil
		}
		if err := export.ToFile(target, m.lines); err != nil {
			m.logger.WithError(err).Warn("export failed")
			m.setStatus(fmt.Sprintf("Export failed: %v", err), true)
		} else {
			m.exportPath = target
			m.setStatus("Results exported to "+target, false)
		}
		m.path.Blur()
		m.focus = paneUsername
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

// startSearch cancels any search in flight and starts a new one. Its
// generation becomes the only one whose completion is displayed.
func (m Model) startSearch() (tea.Model, tea.Cmd) {
	username := strings.TrimSpace(m.input.Value())
	if username == "" {
		m.stop()
		m.username = ""
		m.lines = []string{output.MsgEmptyUsername}
		m.results.SetContent(warnStyle.Render(output.MsgEmptyUsername))
		m.setStatus(output.MsgEmptyUsername, true)
		return m, nil
	}

	// An empty checklist still runs; the search completes with no results.
	m.stop()
	ctx, cancel := context.WithCancel(m.parentCtx)
	m.cancel = cancel

	gen, done := m.worker.Start(ctx, username, copySelection(m.selected))
	m.generation = gen
	m.searching = true
	m.username = username
	m.lines = nil
	m.results.SetContent("")
	m.setStatus("", false)

	if m.history != nil {
		if err := m.history.Add(username); err != nil {
			m.logger.WithError(err).Warn("unable to save search history")
		}
		m.refreshSuggestions()
	}

	return m, tea.Batch(m.spinner.Tick, waitForCompletion(done))
}

func (m *Model) finish(c lookup.Completion) {
	m.searching = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	if len(c.Results) == 0 {
		m.lines = []string{output.MsgNoResults}
		m.results.SetContent(warnStyle.Render(output.MsgNoResults))
		m.setStatus(output.MsgNoResults, true)
		return
	}

	m.lines = c.Results.Lines()
	m.results.SetContent(renderResults(c.Results))
	m.results.GotoTop()
	m.setStatus(fmt.Sprintf("%s found on %d of %d platform(s) in %s.",
		c.Username, c.Results.Count(lookup.Exists), len(c.Results), c.Elapsed.Round(time.Millisecond)), false)
}

// stop cancels the search in flight, if any. Its completion will be dropped.
func (m *Model) stop() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.searching = false
	m.generation = 0
}

func (m *Model) setStatus(s string, warn bool) {
	m.status = s
	m.statusWarn = warn
}

func (m *Model) refreshSuggestions() {
	if m.history == nil {
		return
	}
	m.input.SetSuggestions(m.history.Load())
}

func (m *Model) layout() {
	m.help.Width = m.width
	m.columns = max(1, (m.width-4)/columnWidth)
	m.input.Width = max(10, m.width-8)
	m.path.Width = max(10, m.width-20)

	m.results.Width = max(20, m.width-4)
	used := lipgloss.Height(m.platformsView()) + fixedRows
	m.results.Height = max(3, m.height-used)
}

func waitForCompletion(done <-chan lookup.Completion) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-done
		if !ok {
			return nil
		}
		return searchDoneMsg(c)
	}
}

func copySelection(s platform.Selection) platform.Selection {
	out := make(platform.Selection, len(s))
	for name := range s {
		out[name] = struct{}{}
	}
	return out
}

// Run starts the interactive search screen and blocks until the user quits
// or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	initStyles(opts.NoColor)

	model := NewModel(ctx, opts)

	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}

	final, err := tea.NewProgram(model, progOpts...).Run()
	if m, ok := final.(Model); ok {
		m.stop()
	}
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return errors.Wrap(err, "run tui")
	}
	return nil
}

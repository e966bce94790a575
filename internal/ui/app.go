package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/listfeed/listfeed/internal/logtail"
	"github.com/listfeed/listfeed/internal/prefs"
	"github.com/listfeed/listfeed/internal/state"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Resources []Resource
	ThemeName string
	Tab       string // resource name of the initially active tab
	PrefsPath string // empty uses ~/.config/listfeed/prefs.toml
	LogPath   string
	Logger    *zap.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	prefsPath string
	logPath   string
	logger    *zap.Logger

	resources []Resource
	views     []View
	selected  []int
	active    int

	theme   Theme
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	detail  viewport.Model
	logs    viewport.Model

	width    int
	height   int
	ready    bool
	showHelp bool
	showLogs bool
	logErr   error
	logRead  time.Time
	now      time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := Model{
		ctx:       ctx,
		prefsPath: opts.PrefsPath,
		logPath:   opts.LogPath,
		logger:    logger,
		resources: opts.Resources,
		views:     make([]View, len(opts.Resources)),
		selected:  make([]int, len(opts.Resources)),
		theme:     GetTheme(opts.ThemeName),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		now:       time.Now(),
	}
	for i, r := range m.resources {
		m.views[i] = r.Current()
		if strings.EqualFold(r.Name(), opts.Tab) {
			m.active = i
		}
	}
	m.applyTheme()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, clockCmd()}
	for _, r := range m.resources {
		cmds = append(cmds, r.listen())
	}
	if cmd := m.ensureLoaded(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.detail = viewport.New(0, 0)
			m.logs = viewport.New(0, 0)
		}
		m.ready = true
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case stateMsg:
		idx := m.indexOf(msg.name)
		if idx < 0 {
			return m, nil
		}
		m.views[idx] = msg.view
		m.selected[idx] = clamp(m.selected[idx], 0, len(msg.view.Records)-1)
		if idx == m.active {
			m.updateDetail()
		}
		return m, m.resources[idx].listen()

	case resourceClosedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case clockMsg:
		m.now = time.Time(msg)
		cmds := []tea.Cmd{clockCmd()}
		if m.showLogs && m.now.Sub(m.logRead) >= LogRefreshInterval {
			cmds = append(cmds, readLogsCmd(m.logPath))
		}
		return m, tea.Batch(cmds...)

	case logLinesMsg:
		m.applyLogLines(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.applyTheme()
		m.updateDetail()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		m.showLogs = !m.showLogs
		if m.showLogs {
			return m, readLogsCmd(m.logPath)
		}
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.showLogs = false
		return m, nil
	}

	if m.showLogs {
		return m.handleLogsKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab(-1)
	case key.Matches(msg, m.keys.Retry):
		m.retry()
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		if r, v, ok := m.current(); ok && v.Phase != state.Loading {
			r.Load()
		}
		return m, nil
	}

	return m.handleListKey(msg)
}

// retry re-issues the request only when the active tab shows a failure.
func (m *Model) retry() {
	r, v, ok := m.current()
	if !ok || v.Phase != state.Failed {
		return
	}
	r.Retry()
}

func (m Model) switchTab(delta int) (tea.Model, tea.Cmd) {
	if len(m.resources) == 0 {
		return m, nil
	}
	m.active = (m.active + delta + len(m.resources)) % len(m.resources)
	m.updateDetail()
	m.savePrefs()
	return m, m.ensureLoaded()
}

// ensureLoaded issues the first load of the active tab.
func (m Model) ensureLoaded() tea.Cmd {
	r, v, ok := m.current()
	if !ok || v.Phase != state.Idle {
		return nil
	}
	return func() tea.Msg {
		r.Load()
		return nil
	}
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	_, v, ok := m.current()
	if !ok {
		return m, nil
	}
	n := len(v.Records)
	if n == 0 {
		return m, nil
	}

	sel := m.selected[m.active]
	switch {
	case key.Matches(msg, m.keys.Down):
		sel++
	case key.Matches(msg, m.keys.Up):
		sel--
	case key.Matches(msg, m.keys.Top):
		sel = 0
	case key.Matches(msg, m.keys.Bottom):
		sel = n - 1
	case key.Matches(msg, m.keys.HalfPageDown):
		m.detail.HalfViewDown()
		return m, nil
	case key.Matches(msg, m.keys.HalfPageUp):
		m.detail.HalfViewUp()
		return m, nil
	default:
		return m, nil
	}

	sel = clamp(sel, 0, n-1)
	if sel != m.selected[m.active] {
		m.selected[m.active] = sel
		m.updateDetail()
	}
	return m, nil
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.logs.LineDown(1)
	case key.Matches(msg, m.keys.Up):
		m.logs.LineUp(1)
	case key.Matches(msg, m.keys.Top):
		m.logs.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logs.GotoBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.logs.HalfViewDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.logs.HalfViewUp()
	}
	return m, nil
}

func (m Model) current() (Resource, View, bool) {
	if m.active < 0 || m.active >= len(m.resources) {
		return nil, View{}, false
	}
	return m.resources[m.active], m.views[m.active], true
}

func (m Model) indexOf(name string) int {
	for i, r := range m.resources {
		if r.Name() == name {
			return i
		}
	}
	return -1
}

func (m *Model) applyTheme() {
	s := m.theme.Styles()
	m.spinner.Style = s.AccentText
	m.help.Styles.ShortKey = s.AccentText
	m.help.Styles.ShortDesc = s.MutedText
	m.help.Styles.ShortSeparator = s.FaintText
	m.help.Styles.FullKey = s.AccentText
	m.help.Styles.FullDesc = s.Text
	m.help.Styles.FullSeparator = s.FaintText
}

func (m Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name}
	if r, _, ok := m.current(); ok {
		p.Tab = r.Name()
	}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", zap.Error(err))
	}
}

func (m *Model) applyLogLines(msg logLinesMsg) {
	m.logRead = m.now
	m.logErr = msg.err
	if msg.err != nil {
		return
	}
	atBottom := m.logs.AtBottom() || m.logs.TotalLineCount() == 0
	m.logs.SetContent(m.renderLogLines(msg.entries))
	if atBottom {
		m.logs.GotoBottom()
	}
}

// Messages

type clockMsg time.Time

type logLinesMsg struct {
	entries []logtail.Entry
	err     error
}

// Commands

func clockCmd() tea.Cmd {
	return tea.Tick(ClockInterval, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return logLinesMsg{}
		}
		lines, err := logtail.Read(path, LogTailLines)
		return logLinesMsg{entries: logtail.ParseLines(lines), err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context ends.
func Run(opts Options) error {
	defer func() {
		for _, r := range opts.Resources {
			r.release()
		}
	}()

	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}

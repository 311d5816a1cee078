package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/tessro/tubeq/internal/browser"
	"github.com/tessro/tubeq/internal/controller"
	"github.com/tessro/tubeq/internal/core"
	tqerrors "github.com/tessro/tubeq/internal/errors"
	"github.com/tessro/tubeq/internal/events"
	"github.com/tessro/tubeq/internal/lock"
	"github.com/tessro/tubeq/internal/playlistfile"
	"github.com/tessro/tubeq/internal/search"
	"github.com/tessro/tubeq/internal/tui/components"
	"github.com/tessro/tubeq/internal/tui/styles"
	"github.com/tessro/tubeq/internal/wizard"
	"github.com/tessro/tubeq/internal/ytid"
)

const (
	actionTimeout  = 10 * time.Second
	noticeDuration = 5 * time.Second
	pageSize       = 10
)

// Options wires the dashboard to a controller.
type Options struct {
	Controller *controller.Controller
	Player     core.Player
	Events     *events.Log
	// File is where ctrl+s saves the queue.
	File         string
	RefreshRate  time.Duration
	HoldDuration time.Duration
	Theme        string
	Logger       *slog.Logger
}

type uiMode int

const (
	modeNormal uiMode = iota
	modeAdd
	modeEdit
	modeSearch
	modeSort
	modeConfirmClear
	modeHelp
)

// Model is the main TUI model
type Model struct {
	ctrl    *controller.Controller
	player  core.Player
	events  *events.Log
	file    string
	refresh time.Duration
	logger  *slog.Logger

	keys keyMap
	help help.Model
	hold *lock.Hold

	width  int
	height int
	mode   uiMode

	// State
	snap      controller.Snapshot
	position  time.Duration
	holdProg  float64
	holding   bool
	pending   int
	savedHash uint64
	dirty     bool

	// Forms. add uses all three inputs, edit the last two.
	inputs   []textinput.Model
	focus    int
	formErr  error
	searcher *search.Searcher
	query    textinput.Model
	matches  []search.Match
	matchIdx int
	sortOpts []huh.Option[core.SortKey]
	sortIdx  int

	// Components
	nowPlaying *components.NowPlaying
	queueView  *components.Queue
	eventLog   *components.EventLog

	notice      string
	noticeUntil time.Time
	lastSeen    time.Time
	now         func() time.Time

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	if opts.Events == nil {
		opts.Events = events.NewLog(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.RefreshRate <= 0 {
		opts.RefreshRate = 500 * time.Millisecond
	}

	inputs := make([]textinput.Model, 3)
	for i, ph := range []string{"https://www.youtube.com/watch?v=...", "Title (blank to look up)", "Author (blank to look up)"} {
		ti := textinput.New()
		ti.Placeholder = ph
		ti.CharLimit = 300
		ti.Width = 50
		inputs[i] = ti
	}

	q := textinput.New()
	q.Placeholder = "Search queue..."
	q.Prompt = "/ "
	q.CharLimit = 100
	q.Width = 40

	m := Model{
		ctrl:       opts.Controller,
		player:     opts.Player,
		events:     opts.Events,
		file:       opts.File,
		refresh:    opts.RefreshRate,
		logger:     opts.Logger,
		keys:       defaultKeyMap(),
		help:       help.New(),
		hold:       lock.New(opts.HoldDuration),
		inputs:     inputs,
		searcher:   search.New(),
		query:      q,
		sortOpts:   wizard.SortOptions(),
		nowPlaying: components.NewNowPlaying(),
		queueView:  components.NewQueue(),
		eventLog:   components.NewEventLog(),
		now:        time.Now,
	}
	m.refreshState()
	m.savedHash = playlistfile.Fingerprint(m.snap.Items)
	m.dirty = false
	return m
}

// Messages
type tickMsg time.Time
type holdTickMsg time.Time
type positionMsg time.Duration
type endedMsg struct{}
type actionMsg struct{ err error }
type resolvedMsg struct {
	p   *controller.Pending
	res controller.Resolution
}
type savedMsg struct {
	hash uint64
	err  error
}

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func holdTick() tea.Cmd {
	return tea.Tick(lock.PollInterval, func(t time.Time) tea.Msg {
		return holdTickMsg(t)
	})
}

func (m Model) fetchPosition() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		pos, err := m.player.Position(ctx)
		if err != nil {
			return nil
		}
		return positionMsg(pos)
	}
}

// waitEnded blocks until the player reports the end of an item.
func (m Model) waitEnded() tea.Cmd {
	ch := m.player.Ended()
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return endedMsg{}
	}
}

// run performs a controller operation off the update loop.
func (m Model) run(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionMsg{err: fn(ctx)}
	}
}

func (m Model) resolve(p *controller.Pending) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		return resolvedMsg{p: p, res: m.ctrl.Resolve(ctx, p)}
	}
}

func (m Model) save() tea.Cmd {
	items := m.snap.Items
	file := m.file
	return func() tea.Msg {
		if err := playlistfile.Save(file, items); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{hash: playlistfile.Fingerprint(items)}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tick()}
	if m.player != nil {
		cmds = append(cmds, m.waitEnded())
	}
	return tea.Batch(cmds...)
}

// refreshState pulls a new snapshot and picks up notices emitted since the
// last refresh.
func (m *Model) refreshState() {
	m.snap = m.ctrl.Snapshot()
	m.dirty = playlistfile.Fingerprint(m.snap.Items) != m.savedHash

	recent := m.events.Recent(20)
	for _, e := range recent {
		if !e.Timestamp.After(m.lastSeen) {
			break
		}
		if isNotice(e) {
			m.setNotice(e.Message)
			break
		}
	}
	if len(recent) > 0 {
		m.lastSeen = recent[0].Timestamp
	}
}

func isNotice(e events.Event) bool {
	switch e.Type {
	case events.EventNotice, events.EventShortExcluded, events.EventDeduped:
		return e.Message != ""
	}
	return false
}

func (m *Model) setNotice(msg string) {
	m.notice = msg
	m.noticeUntil = m.now().Add(noticeDuration)
}

func (m *Model) setError(err error) {
	if err == nil {
		return
	}
	m.logger.Debug("action failed", "err", err)
	m.setNotice(tqerrors.Notice(err))
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.refreshState()
		if !m.noticeUntil.IsZero() && m.now().After(m.noticeUntil) {
			m.notice = ""
		}
		return m, tea.Batch(m.tick(), m.fetchPosition())

	case positionMsg:
		m.position = time.Duration(msg)
		return m, nil

	case holdTickMsg:
		progress, fired := m.hold.Poll(time.Time(msg))
		m.holdProg = progress
		if fired {
			m.ctrl.ToggleLock()
			m.refreshState()
		}
		if !m.hold.Active() {
			m.holding = false
			m.holdProg = 0
			return m, nil
		}
		return m, holdTick()

	case endedMsg:
		ctrl := m.ctrl
		return m, tea.Batch(
			m.run(func(ctx context.Context) error { return ctrl.OnEnded(ctx) }),
			m.waitEnded(),
		)

	case actionMsg:
		m.setError(msg.err)
		m.refreshState()
		return m, nil

	case resolvedMsg:
		m.pending = max(m.pending-1, 0)
		ctrl, p, res := m.ctrl, msg.p, msg.res
		return m, m.run(func(ctx context.Context) error {
			_, err := ctrl.Complete(ctx, p, res)
			if errors.Is(err, tqerrors.ErrShortExcluded) {
				// Already reported through the event log.
				return nil
			}
			return err
		})

	case savedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.savedHash = msg.hash
		m.refreshState()
		m.setNotice("保存しました")
		return m, nil
	}

	return m.updateInputs(msg)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case m.mode == modeNormal && key.Matches(msg, m.keys.Lock):
		return m.pressLock()
	}

	switch m.mode {
	case modeHelp:
		if key.Matches(msg, m.keys.Help) || msg.String() == "esc" {
			m.mode = modeNormal
		}
		return m, nil
	case modeAdd, modeEdit:
		return m.handleFormKey(msg)
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeSort:
		return m.handleSortKey(msg)
	case modeConfirmClear:
		return m.handleConfirmKey(msg)
	}

	if m.snap.Locked {
		m.setError(tqerrors.ErrLocked)
		return m, nil
	}
	return m.handleNormalKey(msg)
}

func (m Model) pressLock() (tea.Model, tea.Cmd) {
	m.hold.Press(m.now())
	if m.holding {
		return m, nil
	}
	m.holding = true
	return m, holdTick()
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.ctrl
	k := m.keys

	if d, ok := jumpDelta(msg.String()); ok {
		return m, m.run(func(ctx context.Context) error { return ctrl.Jump(ctx, d) })
	}

	switch {
	// Playback
	case key.Matches(msg, k.Prev):
		return m, m.run(ctrl.Prev)
	case key.Matches(msg, k.Next):
		return m, m.run(ctrl.Next)
	case key.Matches(msg, k.SeekBack):
		return m, m.run(func(ctx context.Context) error { return ctrl.Seek(ctx, -1) })
	case key.Matches(msg, k.SeekForward):
		return m, m.run(func(ctx context.Context) error { return ctrl.Seek(ctx, 1) })
	case key.Matches(msg, k.Pause):
		return m, m.run(ctrl.TogglePause)
	case key.Matches(msg, k.Stop):
		return m, m.run(ctrl.Stop)
	case key.Matches(msg, k.First):
		return m, m.run(ctrl.First)
	case key.Matches(msg, k.Last):
		return m, m.run(ctrl.Last)
	case key.Matches(msg, k.Loop):
		_, err := ctrl.ToggleLoop()
		return m.after(err)
	case key.Matches(msg, k.Shuffle):
		_, err := ctrl.ToggleShuffle()
		return m.after(err)

	// Selection
	case key.Matches(msg, k.Up):
		return m.after(ctrl.MoveSelection(-1))
	case key.Matches(msg, k.Down):
		return m.after(ctrl.MoveSelection(1))
	case key.Matches(msg, k.PageUp):
		return m.after(ctrl.MoveSelection(-pageSize))
	case key.Matches(msg, k.PageDown):
		return m.after(ctrl.MoveSelection(pageSize))
	case key.Matches(msg, k.Deselect):
		return m.after(ctrl.Select(core.NoIndex))
	case key.Matches(msg, k.PlaySel):
		i := m.snap.Selected
		if i == core.NoIndex {
			return m, nil
		}
		return m, m.run(func(ctx context.Context) error { return ctrl.PlayIndex(ctx, i) })

	// Queue editing
	case key.Matches(msg, k.Duplicate):
		if m.snap.Selected == core.NoIndex {
			return m.openAdd()
		}
		_, err := ctrl.DuplicateSelected()
		return m.after(err)
	case key.Matches(msg, k.Remove):
		return m, m.run(func(ctx context.Context) error {
			_, err := ctrl.RemoveSelected(ctx)
			return err
		})
	case key.Matches(msg, k.Add):
		return m.openAdd()
	case key.Matches(msg, k.Edit):
		return m.openEdit()
	case key.Matches(msg, k.Search):
		m.mode = modeSearch
		m.query.SetValue("")
		m.matches = nil
		m.matchIdx = 0
		cmd := m.query.Focus()
		return m, cmd
	case key.Matches(msg, k.Dedupe):
		_, err := ctrl.Dedupe()
		return m.after(err)
	case key.Matches(msg, k.Sort):
		m.mode = modeSort
		m.sortIdx = 0
		return m, nil
	case key.Matches(msg, k.Clear):
		if len(m.snap.Items) == 0 {
			return m, nil
		}
		m.mode = modeConfirmClear
		return m, nil

	// Misc
	case key.Matches(msg, k.Save):
		return m, m.save()
	case key.Matches(msg, k.Copy):
		if id := m.targetID(); id != "" {
			if err := clipboard.WriteAll(ytid.WatchURL(id)); err != nil {
				m.setError(err)
			} else {
				m.setNotice("URLをコピーしました")
			}
		}
		return m, nil
	case key.Matches(msg, k.Browser):
		if id := m.targetID(); id != "" {
			m.setError(browser.Open(ytid.WatchURL(id)))
		}
		return m, nil
	case key.Matches(msg, k.Help):
		m.mode = modeHelp
		return m, nil
	}

	return m, nil
}

// after refreshes state following a synchronous controller call.
func (m Model) after(err error) (tea.Model, tea.Cmd) {
	m.setError(err)
	m.refreshState()
	return m, nil
}

// targetID is the selected item's id, or the current item's.
func (m Model) targetID() string {
	i := m.snap.Selected
	if i == core.NoIndex {
		i = m.snap.Current
	}
	if i < 0 || i >= len(m.snap.Items) {
		return ""
	}
	return m.snap.Items[i].ID
}

func (m Model) openAdd() (tea.Model, tea.Cmd) {
	m.mode = modeAdd
	m.formErr = nil
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	cmd := m.focusInput(0)
	return m, cmd
}

func (m Model) openEdit() (tea.Model, tea.Cmd) {
	cur := m.snap.CurrentItem()
	if cur == nil {
		m.setError(tqerrors.ErrNoSelection)
		return m, nil
	}
	m.mode = modeEdit
	m.formErr = nil
	m.inputs[1].SetValue(cur.Title)
	m.inputs[2].SetValue(cur.Author)
	cmd := m.focusInput(1)
	return m, cmd
}

func (m *Model) focusInput(i int) tea.Cmd {
	m.focus = i
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == i {
			cmd = m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return cmd
}

func (m Model) firstInput() int {
	if m.mode == modeEdit {
		return 1
	}
	return 0
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	first := m.firstInput()
	n := len(m.inputs) - first

	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		m.focusInput(-1)
		return m, nil
	case "tab", "down":
		cmd := m.focusInput(first + (m.focus-first+1)%n)
		return m, cmd
	case "shift+tab", "up":
		cmd := m.focusInput(first + (m.focus-first+n-1)%n)
		return m, cmd
	case "enter":
		if m.mode == modeEdit {
			return m.submitEdit()
		}
		return m.submitAdd()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) submitAdd() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.inputs[0].Value())
	if err := wizard.ValidateRaw(raw); err != nil {
		m.formErr = err
		return m, nil
	}
	title := strings.TrimSpace(m.inputs[1].Value())
	author := strings.TrimSpace(m.inputs[2].Value())

	p, err := m.ctrl.BeginAdd(raw, title, author)
	if err != nil {
		m.formErr = err
		return m, nil
	}
	m.mode = modeNormal
	m.focusInput(-1)
	m.pending++
	m.refreshState()
	return m, m.resolve(p)
}

func (m Model) submitEdit() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.inputs[1].Value())
	author := strings.TrimSpace(m.inputs[2].Value())
	if err := m.ctrl.EditCurrent(title, author); err != nil {
		m.formErr = err
		return m, nil
	}
	m.mode = modeNormal
	m.focusInput(-1)
	m.refreshState()
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		m.matches = nil
		m.query.Blur()
		return m, nil
	case "enter":
		m.mode = modeNormal
		m.query.Blur()
		if len(m.matches) == 0 {
			return m, nil
		}
		i := m.matches[m.matchIdx].Index
		m.matches = nil
		ctrl := m.ctrl
		return m, m.run(func(ctx context.Context) error { return ctrl.PlayIndex(ctx, i) })
	case "down", "ctrl+n":
		if len(m.matches) > 0 {
			m.matchIdx = (m.matchIdx + 1) % len(m.matches)
			return m.after(m.ctrl.Select(m.matches[m.matchIdx].Index))
		}
		return m, nil
	case "up", "ctrl+p":
		if len(m.matches) > 0 {
			m.matchIdx = (m.matchIdx + len(m.matches) - 1) % len(m.matches)
			return m.after(m.ctrl.Select(m.matches[m.matchIdx].Index))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	m.matches = m.searcher.Items(m.query.Value(), m.snap.Items)
	m.matchIdx = 0
	if len(m.matches) > 0 {
		m.setError(m.ctrl.Select(m.matches[0].Index))
		m.refreshState()
	}
	return m, cmd
}

func (m Model) handleSortKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
	case "up":
		m.sortIdx = (m.sortIdx + len(m.sortOpts) - 1) % len(m.sortOpts)
	case "down":
		m.sortIdx = (m.sortIdx + 1) % len(m.sortOpts)
	case "enter":
		m.mode = modeNormal
		return m.after(m.ctrl.Sort(m.sortOpts[m.sortIdx].Value))
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = modeNormal
		return m, m.run(m.ctrl.Clear)
	case "n", "N", "esc":
		m.mode = modeNormal
	}
	return m, nil
}

// updateInputs forwards non-key messages, such as cursor blinks, to the
// focused input.
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case modeAdd, modeEdit:
		if m.focus >= 0 && m.focus < len(m.inputs) {
			m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		}
	case modeSearch:
		m.query, cmd = m.query.Update(msg)
	}
	return m, cmd
}

// Run starts the TUI application
func Run(opts Options) error {
	styles.Apply(opts.Theme)

	model := NewModel(opts)
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err := p.Run()
	return err
}

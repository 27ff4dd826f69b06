// internal/tui/app.go
//
// The crewdeck dashboard as a bubbletea program. bubbletea follows The Elm
// Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen
//
// Three loops feed the model. Snapshot refreshes replace the whole snapshot
// at once or, on failure, leave the previous one standing. Playback ticks
// walk the demo engine through its script and end in the single workflow
// fetch. Dispatches post one action and schedule a refresh afterwards
// whether the action succeeded or not.

package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/crewdeck/crewdeck/internal/api"
	"github.com/crewdeck/crewdeck/internal/config"
	"github.com/crewdeck/crewdeck/internal/logbook"
	"github.com/crewdeck/crewdeck/internal/playback"
	"github.com/crewdeck/crewdeck/internal/profile"
)

// recentLogLines bounds the in-memory log panel. The full history lives in
// the logbook file.
const recentLogLines = 6

// App is the bubbletea model for the dashboard.
type App struct {
	cfg     *config.Config
	profile profile.Profile
	client  *api.Client
	fetcher *api.SnapshotFetcher
	logbook *logbook.Logbook

	keys    keyMap
	spinner spinner.Model

	feed   *playback.Feed
	engine *playback.Engine
	script playback.Script
	clock  func() time.Time

	snapshot  *api.Snapshot
	demo      *api.DemoWorkflow
	loading   bool
	active    string
	selection int
	internal  bool
	reviewer  string
	status    string
	recent    []string

	width  int
	height int
}

// Option customizes App construction for tests and alternate runtimes.
type Option func(*App)

// WithClient swaps the backend client, mostly so tests can point the
// dashboard at a local httptest server.
func WithClient(client *api.Client) Option {
	return func(a *App) {
		if client != nil {
			a.client = client
		}
	}
}

// WithScript replaces the demo script.
func WithScript(script playback.Script) Option {
	return func(a *App) {
		if len(script) > 0 {
			a.script = script
		}
	}
}

// WithClock injects the time source used for feed timestamps and the log
// panel.
func WithClock(clock func() time.Time) Option {
	return func(a *App) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// WithLogbook replaces the logbook destination.
func WithLogbook(lb *logbook.Logbook) Option {
	return func(a *App) {
		if lb != nil {
			a.logbook = lb
		}
	}
}

// NewApp assembles the dashboard for one deck profile.
func NewApp(cfg *config.Config, deck profile.Profile, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("tui: config is required")
	}
	normalized := deck.Normalized()
	if err := normalized.Validate(); err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	app := &App{
		cfg:      cfg,
		profile:  normalized,
		keys:     defaultKeyMap(),
		script:   playback.DefaultScript(),
		clock:    func() time.Time { return time.Now().UTC() },
		internal: cfg.InternalMode(),
		reviewer: resolveReviewer(),
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.logbook == nil {
		lb, err := logbook.New(cfg.LogbookPath())
		if err != nil {
			return nil, fmt.Errorf("tui: %w", err)
		}
		app.logbook = lb
	}
	if app.client == nil {
		app.client = api.NewClient(api.WithBaseURL(cfg.BaseURL()), api.WithTimeout(cfg.APITimeout()))
	}
	// Seed the log panel with the tail of the previous session.
	app.recent = app.logbook.Tail(recentLogLines)
	app.fetcher = api.NewSnapshotFetcher(app.client, app.profile.FetchPlan())
	app.feed = playback.NewFeed(playback.MaxEntries)
	engine, err := playback.NewEngine(app.feed, app.script, playback.WithClock(app.clock))
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	app.engine = engine
	app.spinner = spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))),
	)
	if tabs := app.profile.VisibleTabs(app.internal, 0); len(tabs) > 0 {
		app.active = tabs[0].ID
	}
	return app, nil
}

// resolveReviewer names the operator recorded on screening decisions.
func resolveReviewer() string {
	if user := strings.TrimSpace(os.Getenv("USER")); user != "" {
		return user
	}
	return "crewdeck"
}

type snapshotMsg struct {
	snapshot *api.Snapshot
	err      error
}

type dispatchMsg struct {
	op      string
	err     error
	surface bool
	refresh bool
}

type playbackTickMsg struct{}

type demoResultMsg struct {
	workflow *api.DemoWorkflow
	err      error
}

// Init fires the first snapshot fetch.
func (a *App) Init() tea.Cmd {
	a.logInfo("dashboard started: profile %s, backend %s", a.profile.ID, a.cfg.BaseURL())
	return a.refresh()
}

// Update routes messages into state changes and follow-up commands.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(msg)
	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	case snapshotMsg:
		return a.handleSnapshot(msg)
	case dispatchMsg:
		return a.handleDispatch(msg)
	case playbackTickMsg:
		return a.handlePlaybackTick()
	case demoResultMsg:
		return a.handleDemoResult(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.logInfo("dashboard closed")
		return a, tea.Quit
	case key.Matches(msg, a.keys.Refresh):
		if a.loading {
			return a, nil
		}
		a.setStatus("Refreshing...")
		return a, a.refresh()
	case key.Matches(msg, a.keys.Demo):
		return a.startDemo()
	case key.Matches(msg, a.keys.NextTab):
		a.cycleTab(1)
		return a, nil
	case key.Matches(msg, a.keys.PrevTab):
		a.cycleTab(-1)
		return a, nil
	case key.Matches(msg, a.keys.Up):
		a.moveSelection(-1)
		return a, nil
	case key.Matches(msg, a.keys.Down):
		a.moveSelection(1)
		return a, nil
	case key.Matches(msg, a.keys.Approve):
		return a, a.decide("approve")
	case key.Matches(msg, a.keys.Reject):
		return a, a.decide("reject")
	}
	if n := tabDigit(msg); n > 0 {
		a.selectTabIndex(n - 1)
	}
	return a, nil
}

// tabDigit maps the keys 1-9 onto tab positions, zero for any other key.
func tabDigit(msg tea.KeyMsg) int {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return 0
	}
	r := msg.Runes[0]
	if r < '1' || r > '9' {
		return 0
	}
	return int(r - '0')
}

// refresh starts one snapshot batch. The loading flag is cleared when the
// resulting snapshotMsg arrives, success or not.
func (a *App) refresh() tea.Cmd {
	a.loading = true
	fetcher := a.fetcher
	fetch := func() tea.Msg {
		snap, err := fetcher.Fetch(context.Background())
		return snapshotMsg{snapshot: snap, err: err}
	}
	return tea.Batch(fetch, a.spinner.Tick)
}

func (a *App) handleSnapshot(msg snapshotMsg) (tea.Model, tea.Cmd) {
	a.loading = false
	if msg.err != nil {
		// Keep the previous snapshot on screen; the failure stays visible
		// in the log panel without tearing down the view.
		a.logError("snapshot refresh failed: %v", msg.err)
		return a, nil
	}
	a.snapshot = msg.snapshot
	a.clampSelection()
	a.ensureActiveTab()
	a.setStatus("Updated " + msg.snapshot.FetchedAt.Format("15:04:05"))
	return a, nil
}

func (a *App) handleDispatch(msg dispatchMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.logError("%s failed: %v", msg.op, msg.err)
		if msg.surface {
			a.setStatus(fmt.Sprintf("%s failed: %v", msg.op, msg.err))
		}
	} else {
		a.logInfo("%s done", msg.op)
		a.setStatus(msg.op + " done")
	}
	if msg.refresh {
		return a, a.refresh()
	}
	return a, nil
}

func (a *App) startDemo() (tea.Model, tea.Cmd) {
	if a.engine.Busy() {
		a.setStatus("Demo already running")
		return a, nil
	}
	delay, err := a.engine.Start()
	if err != nil {
		a.setStatus("Demo already running")
		return a, nil
	}
	a.demo = nil
	a.selectTabID("activity")
	a.setStatus("Demo running...")
	a.logInfo("demo playback started: %d scripted steps", a.engine.Steps())
	return a, a.tickPlayback(delay)
}

func (a *App) tickPlayback(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg { return playbackTickMsg{} })
}

func (a *App) handlePlaybackTick() (tea.Model, tea.Cmd) {
	adv, err := a.engine.Advance()
	if err != nil {
		// A stale tick after completion; nothing to do.
		return a, nil
	}
	if adv.Fetch {
		return a, a.fetchDemo()
	}
	return a, a.tickPlayback(adv.Next)
}

// fetchDemo runs the one real backend call that closes a playback run.
func (a *App) fetchDemo() tea.Cmd {
	client := a.client
	return func() tea.Msg {
		workflow, err := client.DemoWorkflow(context.Background())
		return demoResultMsg{workflow: workflow, err: err}
	}
}

func (a *App) handleDemoResult(msg demoResultMsg) (tea.Model, tea.Cmd) {
	a.engine.Complete(msg.err)
	if msg.err != nil {
		a.logError("demo workflow fetch failed: %v", msg.err)
		a.setStatus("Demo finished, summary unavailable")
		return a, nil
	}
	a.demo = msg.workflow
	a.setStatus("Demo complete")
	a.logInfo("demo playback finished: %d backend steps", len(msg.workflow.Steps))
	return a, nil
}

// decide posts the screening decision for the highlighted queue entry. It is
// a no-op outside the review tab.
func (a *App) decide(verb string) tea.Cmd {
	tab, ok := a.currentTab()
	if !ok || !tab.Review {
		return nil
	}
	cand, ok := a.selectedCandidate()
	if !ok {
		a.setStatus("Review queue is empty")
		return nil
	}
	label := "Approve"
	call := a.client.ApproveCandidate
	if verb == "reject" {
		label = "Reject"
		call = a.client.RejectCandidate
	}
	op := fmt.Sprintf("%s %s", label, cand.Name)
	id := cand.CandidateID
	decision := api.ScreeningDecisionRequest{Reviewer: a.reviewer}
	a.setStatus(op + "...")
	return func() tea.Msg {
		_, err := call(context.Background(), id, decision)
		return dispatchMsg{op: op, err: err, surface: true, refresh: true}
	}
}

func (a *App) visibleTabs() []profile.Tab {
	return a.profile.VisibleTabs(a.internal, a.snapshot.QueueLength())
}

func (a *App) currentTab() (profile.Tab, bool) {
	for _, tab := range a.visibleTabs() {
		if tab.ID == a.active {
			return tab, true
		}
	}
	return profile.Tab{}, false
}

// ensureActiveTab falls back to the first visible tab when the active one
// disappears, which happens when the review queue drains.
func (a *App) ensureActiveTab() {
	tabs := a.visibleTabs()
	if len(tabs) == 0 {
		a.active = ""
		return
	}
	for _, tab := range tabs {
		if tab.ID == a.active {
			return
		}
	}
	a.active = tabs[0].ID
	a.selection = 0
}

func (a *App) cycleTab(step int) {
	tabs := a.visibleTabs()
	if len(tabs) == 0 {
		return
	}
	idx := 0
	for i, tab := range tabs {
		if tab.ID == a.active {
			idx = i
			break
		}
	}
	idx = (idx + step + len(tabs)) % len(tabs)
	a.active = tabs[idx].ID
	a.selection = 0
}

func (a *App) selectTabIndex(idx int) {
	tabs := a.visibleTabs()
	if idx < 0 || idx >= len(tabs) {
		return
	}
	a.active = tabs[idx].ID
	a.selection = 0
}

func (a *App) selectTabID(id string) {
	for _, tab := range a.visibleTabs() {
		if tab.ID == id {
			a.active = id
			return
		}
	}
}

func (a *App) moveSelection(step int) {
	tab, ok := a.currentTab()
	if !ok || !tab.Review {
		return
	}
	a.selection += step
	a.clampSelection()
}

func (a *App) clampSelection() {
	n := 0
	if a.snapshot != nil && a.snapshot.Screening != nil {
		n = len(a.snapshot.Screening.Candidates)
	}
	if n == 0 {
		a.selection = 0
		return
	}
	if a.selection < 0 {
		a.selection = 0
	}
	if a.selection >= n {
		a.selection = n - 1
	}
}

func (a *App) selectedCandidate() (api.QueuedCandidate, bool) {
	if a.snapshot == nil || a.snapshot.Screening == nil {
		return api.QueuedCandidate{}, false
	}
	queue := a.snapshot.Screening.Candidates
	if len(queue) == 0 {
		return api.QueuedCandidate{}, false
	}
	idx := a.selection
	if idx < 0 || idx >= len(queue) {
		idx = 0
	}
	return queue[idx], true
}

func (a *App) setStatus(message string) {
	a.status = message
}

func (a *App) logInfo(format string, args ...any) {
	a.logbook.Info(format, args...)
	a.remember("INFO", fmt.Sprintf(format, args...))
}

func (a *App) logError(format string, args ...any) {
	a.logbook.Error(format, args...)
	a.remember("ERROR", fmt.Sprintf(format, args...))
}

func (a *App) remember(level, message string) {
	line := fmt.Sprintf("%s %-5s %s", a.clock().Format("15:04:05"), level, message)
	a.recent = append(a.recent, line)
	if len(a.recent) > recentLogLines {
		a.recent = a.recent[len(a.recent)-recentLogLines:]
	}
}

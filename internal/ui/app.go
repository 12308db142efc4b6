package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"

	"github.com/audi70r/cocostat/internal/config"
	"github.com/audi70r/cocostat/internal/git"
	"github.com/audi70r/cocostat/internal/gitlog"
	"github.com/audi70r/cocostat/internal/stats"
	"github.com/audi70r/cocostat/internal/ui/views"
)

// Dataset is the parsed history handed to the UI
type Dataset struct {
	Path         string
	Commits      []gitlog.Commit
	CodebaseSize int
}

// Loader produces a Dataset, reporting progress while it scans
type Loader func(ctx context.Context, onProgress func(git.ScanProgress)) (*Dataset, error)

// App represents the main application
type App struct {
	tview  *tview.Application
	pages  *tview.Pages
	config *config.Config
	load   Loader
	log    logrus.FieldLogger

	progressView *views.ProgressView
	mainView     *MainView

	repoStats *stats.Repository
	ctx       context.Context
	scanning  atomic.Bool
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, load Loader, log logrus.FieldLogger) *App {
	app := &App{
		tview:  tview.NewApplication(),
		pages:  tview.NewPages(),
		config: cfg,
		load:   load,
		log:    log,
	}

	app.progressView = views.NewProgressView()
	app.mainView = NewMainView(app.tview, cfg, app.onRescan)

	app.pages.AddPage("progress", app.progressView.Root(), true, true)
	app.pages.AddPage("main", app.mainView.Root(), true, false)
	app.tview.SetRoot(app.pages, true)
	return app
}

// Run loads the data in the background and blocks until the user quits
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.ctx = ctx

	a.scanning.Store(true)
	go a.scan(ctx)
	return a.tview.Run()
}

// onRescan starts a new scan unless one is still running
func (a *App) onRescan() {
	if !a.scanning.CompareAndSwap(false, true) {
		a.log.Debug("scan in progress, ignoring rescan")
		return
	}
	a.progressView.SetProgress(0, 0)
	a.progressView.SetStatus("Rescanning...")
	a.pages.SwitchToPage("progress")
	go a.scan(a.ctx)
}

// scan loads and aggregates the data. The caller sets scanning beforehand.
func (a *App) scan(ctx context.Context) {
	defer a.scanning.Store(false)

	data, err := a.load(ctx, func(p git.ScanProgress) {
		a.tview.QueueUpdateDraw(func() {
			a.progressView.SetScan(p)
		})
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		a.log.WithError(err).Error("failed to load commits")
		a.tview.QueueUpdateDraw(func() {
			a.progressView.SetStatus(fmt.Sprintf("[red]Error:[-] %v (Ctrl-C to quit)", err))
		})
		return
	}

	repo := BuildRepository(data, a.config)
	a.log.WithFields(logrus.Fields{
		"commits": repo.TotalCommits,
		"authors": repo.TotalAuthors,
	}).Info("statistics ready")

	a.tview.QueueUpdateDraw(func() {
		a.repoStats = repo
		a.mainView.SetData(repo, data.Commits)
		a.pages.SwitchToPage("main")
		a.tview.SetFocus(a.mainView.GetFocusable())
	})
}

// BuildRepository aggregates data into statistics and folds author aliases
func BuildRepository(data *Dataset, cfg *config.Config) *stats.Repository {
	agg := stats.NewAggregator(data.Path, stats.DateRange{Since: cfg.Since, Until: cfg.Until}, cfg.Timezone)
	agg.ProcessCommits(data.Commits)

	repo := agg.Finalize()
	repo.CodebaseSize = data.CodebaseSize
	if len(cfg.AuthorAliases) > 0 {
		repo.ApplyAuthorAliases(cfg.AuthorAliases)
	}
	return repo
}

// statsView is implemented by every page of the main view
type statsView interface {
	Root() tview.Primitive
	GetFocusable() tview.Primitive
	Refresh(repo *stats.Repository)
}

// sortableView is a statsView whose rows can be re-sorted in place
type sortableView interface {
	statsView
	CycleSortColumn()
	ReverseSortOrder()
	Render()
}

// MainView is the main statistics display view
type MainView struct {
	root      *tview.Flex
	menuList  *tview.List
	viewPages *tview.Pages
	statusBar *tview.TextView
	header    *tview.TextView
	app       *tview.Application
	config    *config.Config
	onRescan  func()

	commitsView *views.CommitsView
	views       map[string]statsView
	order       []string

	currentView string
	repoStats   *stats.Repository
}

// NewMainView creates the main statistics view
func NewMainView(app *tview.Application, cfg *config.Config, onRescan func()) *MainView {
	m := &MainView{
		app:      app,
		config:   cfg,
		onRescan: onRescan,
	}

	m.setupLayout()
	return m
}

func (m *MainView) setupLayout() {
	m.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	m.header.SetBackgroundColor(tcell.ColorDarkBlue)

	m.menuList = tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)
	m.menuList.SetBorder(true).SetTitle(" Views ")

	cfg := m.config
	m.commitsView = views.NewCommitsView(cfg.Timezone, cfg.TimeFormat24h)
	m.views = map[string]statsView{
		"Summary":     views.NewSummaryView(cfg.MaxFiles),
		"Commits":     m.commitsView,
		"Leaderboard": views.NewLeaderboardView(),
		"Activity":    views.NewActivityView(cfg.Timezone, cfg.SparklineWidth, cfg.RollingWindow),
		"Top Files":   views.NewFilesView(cfg.MaxFiles),
		"Hotspots":    views.NewHotspotsView(cfg.MaxFiles, cfg.HotspotAuthorThreshold),
	}
	m.order = []string{"Summary", "Commits", "Leaderboard", "Activity", "Top Files", "Hotspots"}

	m.viewPages = tview.NewPages()
	m.viewPages.SetBorder(true)

	for i, name := range m.order {
		m.menuList.AddItem(name, "", rune('1'+i), func() {
			m.switchView(name)
		})
		m.viewPages.AddPage(name, m.views[name].Root(), true, i == 0)
	}

	m.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	m.statusBar.SetBackgroundColor(tcell.ColorDarkBlue)
	m.switchView(m.order[0])

	contentFlex := tview.NewFlex().
		AddItem(m.menuList, 18, 0, true).
		AddItem(m.viewPages, 0, 1, false)

	m.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(m.header, 1, 0, false).
		AddItem(contentFlex, 0, 1, true).
		AddItem(m.statusBar, 1, 0, false)

	m.root.SetInputCapture(m.handleInput)
}

func (m *MainView) handleInput(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyTab, tcell.KeyBacktab:
		m.toggleFocus()
		return nil
	case tcell.KeyEsc:
		if m.app.GetFocus() != m.menuList {
			m.app.SetFocus(m.menuList)
			return nil
		}
	}

	switch event.Rune() {
	case 'q', 'Q':
		m.app.Stop()
		return nil
	case 'R':
		if m.onRescan != nil {
			m.onRescan()
		}
		return nil
	case 's', 'S':
		if v, ok := m.views[m.currentView].(sortableView); ok {
			v.CycleSortColumn()
			v.Render()
		}
		return nil
	case 'r':
		if v, ok := m.views[m.currentView].(sortableView); ok {
			v.ReverseSortOrder()
			v.Render()
		}
		return nil
	}

	return event
}

func (m *MainView) toggleFocus() {
	if m.app.GetFocus() == m.menuList {
		m.app.SetFocus(m.views[m.currentView].GetFocusable())
	} else {
		m.app.SetFocus(m.menuList)
	}
}

func (m *MainView) switchView(name string) {
	if _, ok := m.views[name]; !ok {
		return
	}
	m.currentView = name
	m.viewPages.SwitchToPage(name)
	m.viewPages.SetTitle(" " + name + " ")
	m.updateStatusBar()
}

// updateStatusBar shows context-sensitive controls
func (m *MainView) updateStatusBar() {
	baseControls := "[yellow]Tab[-] Focus  [yellow]↑↓[-] Navigate  [yellow]R[-] Rescan  [yellow]q[-] Quit"

	var viewControls string
	if _, ok := m.views[m.currentView].(sortableView); ok {
		viewControls = "[yellow]s[-] Sort  [yellow]r[-] Reverse  "
	}

	m.statusBar.SetText(viewControls + baseControls)
}

// SetData updates all views with repository statistics
func (m *MainView) SetData(repoStats *stats.Repository, commits []gitlog.Commit) {
	m.repoStats = repoStats

	dateRange := fmt.Sprintf("%s to %s",
		m.config.Since.Format("2006-01-02"),
		m.config.Until.Format("2006-01-02"))
	m.header.SetText(fmt.Sprintf("[::b]CocoStat[-:-:-] - %s (%s) - %d commits by %d authors",
		filepath.Base(repoStats.Path), dateRange, repoStats.TotalCommits, repoStats.TotalAuthors))

	m.commitsView.SetCommits(commits)
	for _, name := range m.order {
		m.views[name].Refresh(repoStats)
	}
}

// Root returns the root primitive
func (m *MainView) Root() tview.Primitive {
	return m.root
}

// GetFocusable returns the focusable component
func (m *MainView) GetFocusable() tview.Primitive {
	return m.menuList
}

package ui

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audi70r/cocostat/internal/config"
	"github.com/audi70r/cocostat/internal/git"
	"github.com/audi70r/cocostat/internal/gitlog"
	"github.com/audi70r/cocostat/internal/logging"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Timezone = time.UTC
	cfg.Since = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg.Until = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	return cfg
}

func testDataset() *Dataset {
	return &Dataset{
		Path: "/src/demo",
		Commits: []gitlog.Commit{
			{
				Revision:  "aaaaaaa",
				Author:    "rstoyanchev",
				Timestamp: 1600000000,
				Message:   "first",
				Changes:   []gitlog.FileChange{{File: "a.go", Deleted: 4, Added: 1}},
			},
			{
				Revision:  "bbbbbbb",
				Author:    "Rossen Stoyanchev",
				Timestamp: 1600003600,
				Message:   "second",
				Changes:   []gitlog.FileChange{{File: "a.go", Deleted: 1, Added: 1}},
			},
		},
		CodebaseSize: 100,
	}
}

func TestBuildRepository(t *testing.T) {
	repo := BuildRepository(testDataset(), testConfig())

	assert.Equal(t, "/src/demo", repo.Path)
	assert.Equal(t, 2, repo.TotalCommits)
	assert.Equal(t, 2, repo.TotalAuthors)
	assert.Equal(t, 100, repo.CodebaseSize)
}

func TestBuildRepository_Aliases(t *testing.T) {
	cfg := testConfig()
	cfg.AuthorAliases = map[string]string{"rstoyanchev": "Rossen Stoyanchev"}

	repo := BuildRepository(testDataset(), cfg)

	assert.Equal(t, 1, repo.TotalAuthors)
	require.Contains(t, repo.Authors, "Rossen Stoyanchev")
	assert.Equal(t, 2, repo.Authors["Rossen Stoyanchev"].Commits)
	assert.NotContains(t, repo.Authors, "rstoyanchev")
}

func TestMainView_SetData(t *testing.T) {
	cfg := testConfig()
	data := testDataset()
	m := NewMainView(tview.NewApplication(), cfg, nil)

	m.SetData(BuildRepository(data, cfg), data.Commits)

	header := m.header.GetText(true)
	assert.Contains(t, header, "demo")
	assert.Contains(t, header, "2020-01-01 to 2021-01-01")
	assert.Contains(t, header, "2 commits by 2 authors")
	assert.Equal(t, "Summary", m.currentView)
	assert.NotContains(t, m.statusBar.GetText(true), "Sort")
}

func TestMainView_SwitchAndSort(t *testing.T) {
	cfg := testConfig()
	data := testDataset()
	m := NewMainView(tview.NewApplication(), cfg, nil)
	m.SetData(BuildRepository(data, cfg), data.Commits)

	m.switchView("Commits")
	assert.Equal(t, "Commits", m.currentView)
	assert.Contains(t, m.statusBar.GetText(true), "Sort")

	assert.Nil(t, m.handleInput(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone)))
	assert.Equal(t, "aaaaaaa", m.commitsView.GetFocusable().(*tview.Table).GetCell(1, 0).Text)

	m.switchView("Nope")
	assert.Equal(t, "Commits", m.currentView)
}

func TestMainView_Rescan(t *testing.T) {
	called := false
	m := NewMainView(tview.NewApplication(), testConfig(), func() { called = true })

	m.handleInput(tcell.NewEventKey(tcell.KeyRune, 'R', tcell.ModNone))
	assert.True(t, called)

	passthrough := tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)
	assert.Equal(t, passthrough, m.handleInput(passthrough))
}

func TestApp_RescanIgnoredWhileScanning(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	started := make(chan struct{}, 2)
	load := func(ctx context.Context, _ func(git.ScanProgress)) (*Dataset, error) {
		calls.Add(1)
		started <- struct{}{}
		<-ctx.Done()
		return nil, ctx.Err()
	}

	a := NewApp(testConfig(), load, logging.Discard())
	a.ctx = ctx

	a.onRescan()
	<-started
	a.onRescan()
	assert.Equal(t, int32(1), calls.Load())

	// a cancelled load returns without queueing UI updates
	cancel()
	require.Eventually(t, func() bool { return !a.scanning.Load() }, time.Second, 5*time.Millisecond)

	a.onRescan()
	<-started
	assert.Equal(t, int32(2), calls.Load())
}

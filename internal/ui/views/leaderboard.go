package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/audi70r/cocostat/internal/stats"
)

// LeaderboardView displays author statistics
type LeaderboardView struct {
	*sortTable
	repo *stats.Repository
}

// NewLeaderboardView creates a new leaderboard view
func NewLeaderboardView() *LeaderboardView {
	return &LeaderboardView{
		sortTable: newSortTable([]column{
			{title: "#"},
			{title: "Author", key: "name"},
			{title: "Commits", key: "commits"},
			{title: "Additions", key: "additions"},
			{title: "Deletions", key: "deletions"},
			{title: "Net", key: "net"},
			{title: "Files", key: "files"},
		}, 2),
	}
}

// Refresh updates the view with new data
func (v *LeaderboardView) Refresh(repo *stats.Repository) {
	v.repo = repo
	v.Render()
}

// Render redraws the rows using the current sort settings
func (v *LeaderboardView) Render() {
	v.reset()
	if v.repo == nil {
		return
	}

	authors := v.repo.GetLeaderboard(v.sortKey(), v.sortAsc)
	for i, author := range authors {
		row := i + 1
		net := author.Additions - author.Deletions

		v.table.SetCell(row, 0, rankCell(row))
		v.table.SetCell(row, 1, tview.NewTableCell(author.Name).
			SetExpansion(1))
		v.table.SetCell(row, 2, numberCell("%d", author.Commits, tcell.ColorWhite))
		v.table.SetCell(row, 3, numberCell("+%d", author.Additions, tcell.ColorGreen))
		v.table.SetCell(row, 4, numberCell("-%d", author.Deletions, tcell.ColorRed))
		v.table.SetCell(row, 5, numberCell("%+d", net, netColor(net)))
		v.table.SetCell(row, 6, numberCell("%d", len(author.FilesTouched), tcell.ColorWhite))
	}

	v.setInfo("[yellow]%d[-] authors", len(authors))
}

func netColor(net int) tcell.Color {
	switch {
	case net > 0:
		return tcell.ColorGreen
	case net < 0:
		return tcell.ColorRed
	default:
		return tcell.ColorWhite
	}
}

package views

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/audi70r/cocostat/internal/gitlog"
	"github.com/audi70r/cocostat/internal/stats"
)

// CommitsView lists parsed commits with a per-file detail pane
type CommitsView struct {
	*sortTable
	detail  *tview.TextView
	commits []gitlog.Commit
	shown   []int // table row - 1 -> index into commits
	tz      *time.Location
	layout  string
}

// NewCommitsView creates a new commits view
func NewCommitsView(tz *time.Location, clock24h bool) *CommitsView {
	if tz == nil {
		tz = time.Local
	}
	layout := "2006-01-02 15:04"
	if !clock24h {
		layout = "2006-01-02 03:04PM"
	}

	v := &CommitsView{
		sortTable: newSortTable([]column{
			{title: "Rev"},
			{title: "Date", key: "date"},
			{title: "Author", key: "author"},
			{title: "Files", key: "files"},
			{title: "+", key: "additions"},
			{title: "-", key: "deletions"},
			{title: "Message"},
		}, 1),
		tz:     tz,
		layout: layout,
	}

	v.detail = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	v.detail.SetBorder(true).SetTitle(" Changes ")

	v.table.SetSelectionChangedFunc(func(row, _ int) {
		v.showDetail(row)
	})

	// detail pane below the table, above the info line
	v.root.Clear().
		AddItem(v.table, 0, 2, true).
		AddItem(v.detail, 0, 1, false).
		AddItem(v.info, 1, 0, false)
	return v
}

// Refresh updates the view with new data. repo is unused but keeps the
// signature shared with the other views.
func (v *CommitsView) Refresh(_ *stats.Repository) {
	v.Render()
}

// SetCommits replaces the listed commits
func (v *CommitsView) SetCommits(commits []gitlog.Commit) {
	v.commits = commits
	v.Render()
}

// Render redraws the rows using the current sort settings
func (v *CommitsView) Render() {
	v.reset()

	v.shown = make([]int, len(v.commits))
	for i := range v.shown {
		v.shown[i] = i
	}
	key, asc := v.sortKey(), v.sortAsc
	sort.SliceStable(v.shown, func(i, j int) bool {
		ci, cj := &v.commits[v.shown[i]], &v.commits[v.shown[j]]
		var less, equal bool
		switch key {
		case "author":
			less, equal = ci.Author < cj.Author, ci.Author == cj.Author
		case "files":
			less, equal = len(ci.Changes) < len(cj.Changes), len(ci.Changes) == len(cj.Changes)
		case "additions":
			ai, _ := lineTotals(ci)
			aj, _ := lineTotals(cj)
			less, equal = ai < aj, ai == aj
		case "deletions":
			_, di := lineTotals(ci)
			_, dj := lineTotals(cj)
			less, equal = di < dj, di == dj
		default:
			less, equal = ci.Timestamp < cj.Timestamp, ci.Timestamp == cj.Timestamp
		}
		if equal {
			return v.shown[i] < v.shown[j]
		}
		if asc {
			return less
		}
		return !less
	})

	for i, idx := range v.shown {
		row := i + 1
		c := &v.commits[idx]
		added, deleted := lineTotals(c)

		v.table.SetCell(row, 0, tview.NewTableCell(c.Revision).
			SetTextColor(tcell.ColorYellow))
		v.table.SetCell(row, 1, tview.NewTableCell(c.Time().In(v.tz).Format(v.layout)).
			SetTextColor(tcell.ColorLightCyan))
		v.table.SetCell(row, 2, tview.NewTableCell(tview.Escape(c.Author)))
		v.table.SetCell(row, 3, numberCell("%d", len(c.Changes), tcell.ColorWhite))
		v.table.SetCell(row, 4, numberCell("+%d", added, tcell.ColorGreen))
		v.table.SetCell(row, 5, numberCell("-%d", deleted, tcell.ColorRed))
		v.table.SetCell(row, 6, tview.NewTableCell(tview.Escape(truncateRight(c.Message, 72))).
			SetExpansion(1))
	}

	v.setInfo("[yellow]%d[-] commits", len(v.commits))
	if len(v.shown) > 0 {
		v.table.Select(1, 0)
	}
	v.showDetail(1)
}

func (v *CommitsView) showDetail(row int) {
	if row < 1 || row > len(v.shown) {
		v.detail.SetText("")
		return
	}
	c := &v.commits[v.shown[row-1]]

	var sb strings.Builder
	fmt.Fprintf(&sb, "[yellow]%s[-] %s  [cyan]%s[-]\n%s\n\n", c.Revision, tview.Escape(c.Author),
		c.Time().In(v.tz).Format(v.layout), tview.Escape(c.Message))
	for _, fc := range c.Changes {
		if fc.IsBinary() {
			fmt.Fprintf(&sb, "  [gray]%6s %6s[-] %s\n", "bin", "bin", tview.Escape(fc.File))
			continue
		}
		fmt.Fprintf(&sb, "  [green]%6s[-] [red]%6s[-] %s\n",
			fmt.Sprintf("+%d", fc.Additions()), fmt.Sprintf("-%d", fc.Deletions()), tview.Escape(fc.File))
	}
	if len(c.Changes) == 0 {
		sb.WriteString("  [gray]no file changes[-]\n")
	}
	v.detail.SetText(sb.String())
	v.detail.ScrollToBeginning()
}

// lineTotals sums line counts, binary changes contribute nothing
func lineTotals(c *gitlog.Commit) (added, deleted int) {
	for _, fc := range c.Changes {
		if fc.IsBinary() {
			continue
		}
		added += fc.Additions()
		deleted += fc.Deletions()
	}
	return added, deleted
}

package views

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/audi70r/cocostat/internal/git"
)

const progressBarWidth = 50

// ProgressView shows repository scanning while the history loads
type ProgressView struct {
	root     *tview.Flex
	bar      *tview.TextView
	status   *tview.TextView
	count    *tview.TextView
	finished *tview.TextView

	done, total int
	lastCommits int
}

// NewProgressView creates a new progress view
func NewProgressView() *ProgressView {
	p := &ProgressView{
		bar:      centeredText(),
		status:   centeredText(),
		count:    centeredText(),
		finished: tview.NewTextView().SetDynamicColors(true),
	}

	title := centeredText().SetText("[::b]Reading Commit History[-:-:-]")
	title.SetBackgroundColor(tcell.ColorDarkBlue)

	column := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(p.status, 2, 0, false).
		AddItem(p.bar, 3, 0, false).
		AddItem(p.count, 2, 0, false).
		AddItem(p.finished, 0, 2, false)

	p.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(title, 1, 0, false).
		AddItem(tview.NewFlex().
			AddItem(nil, 0, 1, false).
			AddItem(column, 60, 0, false).
			AddItem(nil, 0, 1, false), 0, 1, false)

	p.SetProgress(0, 0)
	return p
}

func centeredText() *tview.TextView {
	return tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
}

// SetProgress redraws the bar for done of total repositories. A zero total
// keeps the previous one.
func (p *ProgressView) SetProgress(done, total int) {
	p.done = done
	if total > 0 {
		p.total = total
	}
	if done == 0 {
		p.finished.Clear()
		p.lastCommits = 0
	}

	var pct float64
	if p.total > 0 {
		pct = min(float64(done)/float64(p.total)*100, 100)
	}
	filled := int(pct / 100 * progressBarWidth)
	p.bar.SetText(fmt.Sprintf("[green]%s[-][gray]%s[-]\n%.1f%%",
		strings.Repeat("█", filled), strings.Repeat("░", progressBarWidth-filled), pct))

	if p.total > 0 {
		p.count.SetText(fmt.Sprintf("[yellow]%d[-] / [yellow]%d[-] repositories scanned", done, p.total))
	} else {
		p.count.SetText(fmt.Sprintf("[yellow]%d[-] repositories scanned", done))
	}
}

// SetScan applies a scan update and lists the repository it finished
func (p *ProgressView) SetScan(sp git.ScanProgress) {
	p.SetProgress(sp.ReposDone, sp.ReposTotal)

	if sp.CurrentRepo != "" {
		fmt.Fprintf(p.finished, "  [green]✓[-] %-40s [cyan]%6d[-] commits\n",
			tview.Escape(filepath.Base(sp.CurrentRepo)), sp.CommitsParsed-p.lastCommits)
		p.lastCommits = sp.CommitsParsed
	}

	if sp.Done {
		p.SetStatus(fmt.Sprintf("Parsed %d commits, building statistics...", sp.CommitsParsed))
	} else if sp.CurrentRepo != "" {
		p.SetStatus(fmt.Sprintf("Finished %s (%d commits so far)", sp.CurrentRepo, sp.CommitsParsed))
	}
}

// SetStatus updates the status message
func (p *ProgressView) SetStatus(status string) {
	p.status.SetText("[white]" + status + "[-]")
}

// Status returns the status message without color tags
func (p *ProgressView) Status() string {
	return p.status.GetText(true)
}

// Root returns the root primitive
func (p *ProgressView) Root() tview.Primitive {
	return p.root
}

package views

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/audi70r/cocostat/internal/stats"
)

// SummaryView displays overall change statistics and directory ownership
type SummaryView struct {
	root *tview.Flex
	text *tview.TextView
	repo *stats.Repository
	dirs int
}

// NewSummaryView creates a new summary view listing at most dirs directories
func NewSummaryView(dirs int) *SummaryView {
	v := &SummaryView{dirs: dirs}

	v.text = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetTextAlign(tview.AlignLeft)

	v.root = tview.NewFlex().
		AddItem(nil, 2, 0, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 1, 0, false).
			AddItem(v.text, 0, 1, true).
			AddItem(nil, 1, 0, false), 0, 1, true).
		AddItem(nil, 2, 0, false)
	return v
}

// Refresh updates the view with new data
func (v *SummaryView) Refresh(repo *stats.Repository) {
	v.repo = repo
	v.Render()
}

// Render rebuilds the text content
func (v *SummaryView) Render() {
	if v.repo == nil {
		return
	}
	s := v.repo.GetSummary()

	var addPct, delPct float64
	if s.TotalChanges > 0 {
		addPct = float64(s.TotalAdditions) / float64(s.TotalChanges) * 100
		delPct = 100 - addPct
	}
	barWidth := 50
	addBar := int(addPct / 100 * float64(barWidth))
	if s.TotalChanges == 0 {
		addBar = 0
		barWidth = 0
	}
	net := s.TotalAdditions - s.TotalDeletions

	var sb strings.Builder
	fmt.Fprintf(&sb, "[::b]Change Summary[-:-:-]\n\n%s\n\n", rule)

	fmt.Fprintf(&sb, "  Total Commits:      [cyan]%d[-]\n", s.Commits)
	fmt.Fprintf(&sb, "  Total Authors:      [cyan]%d[-]\n", s.Authors)
	fmt.Fprintf(&sb, "  Files Touched:      [cyan]%d[-]\n", s.FilesTouched)
	fmt.Fprintf(&sb, "  Binary Changes:     [cyan]%d[-]\n", s.BinaryChanges)
	fmt.Fprintf(&sb, "  Renames:            [cyan]%d[-]\n", s.Renames)
	if !s.FirstCommit.IsZero() {
		fmt.Fprintf(&sb, "  First Commit:       [cyan]%s[-]\n", s.FirstCommit.Format("2006-01-02 15:04"))
		fmt.Fprintf(&sb, "  Last Commit:        [cyan]%s[-]\n", s.LastCommit.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&sb, "\n%s\n\n", rule)

	fmt.Fprintf(&sb, "  [::b]Lines Changed[-:-:-]\n\n")
	fmt.Fprintf(&sb, "  [green]+ Additions:[-]        [green]%s[-] lines\n", formatNumber(s.TotalAdditions))
	fmt.Fprintf(&sb, "  [red]- Deletions:[-]        [red]%s[-] lines\n", formatNumber(s.TotalDeletions))
	fmt.Fprintf(&sb, "  [white]= Total Changes:[-]    [white]%s[-] lines\n", formatNumber(s.TotalChanges))
	fmt.Fprintf(&sb, "  Net Change:         [%s]%+d[-] lines\n\n", getNetColor(net), net)
	fmt.Fprintf(&sb, "  [green]%s[-][red]%s[-]\n\n", strings.Repeat("█", addBar), strings.Repeat("█", barWidth-addBar))
	fmt.Fprintf(&sb, "  [green]%.1f%% additions[-]  |  [red]%.1f%% deletions[-]\n\n", addPct, delPct)
	fmt.Fprintf(&sb, "  Avg per Commit:     [cyan]%.1f[-] lines\n", safeDivide(float64(s.TotalChanges), float64(s.Commits)))
	fmt.Fprintf(&sb, "  Avg per Author:     [cyan]%.1f[-] lines\n", safeDivide(float64(s.TotalChanges), float64(s.Authors)))

	if s.CodebaseSize > 0 {
		fmt.Fprintf(&sb, "\n%s\n\n  [::b]Codebase Size[-:-:-]\n\n", rule)
		fmt.Fprintf(&sb, "  Current Size:       [cyan]%s[-] lines\n", formatNumber(s.CodebaseSize))
		fmt.Fprintf(&sb, "  Churn Rate:         [%s]%.1f%%[-] of codebase touched\n", getChurnColor(s.RefactoredPercent), s.RefactoredPercent)
		fmt.Fprintf(&sb, "  Churn Level:        %s\n", getChurnIndicator(s.RefactoredPercent))
	}

	v.writeOwnership(&sb)
	v.text.SetText(sb.String())
	v.text.ScrollToBeginning()
}

func (v *SummaryView) writeOwnership(sb *strings.Builder) {
	dirs := v.repo.GetOwnership("changes", false)
	if len(dirs) == 0 {
		return
	}
	if v.dirs > 0 && len(dirs) > v.dirs {
		dirs = dirs[:v.dirs]
	}

	fmt.Fprintf(sb, "\n%s\n\n  [::b]Directory Ownership[-:-:-]\n\n", rule)
	for _, d := range dirs {
		owner := d.TopOwner()
		if owner == nil {
			continue
		}
		fmt.Fprintf(sb, "  %-30s [cyan]%7d[-] changes  [green]%s[-] (%.0f%%)\n",
			truncateLeft(d.Path, 30), d.TotalChanges, owner.Name, owner.Share)
	}
}

func formatNumber(n int) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	}
	if n >= 1000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%d", n)
}

func getNetColor(net int) string {
	if net > 0 {
		return "green"
	} else if net < 0 {
		return "red"
	}
	return "white"
}

func getChurnColor(pct float64) string {
	if pct >= 100 {
		return "red"
	} else if pct >= 50 {
		return "yellow"
	}
	return "cyan"
}

func getChurnIndicator(pct float64) string {
	if pct >= 200 {
		return "[red]Very High[-] (major rewrite)"
	} else if pct >= 100 {
		return "[red]High[-] (significant refactoring)"
	} else if pct >= 50 {
		return "[yellow]Moderate[-] (active development)"
	} else if pct >= 20 {
		return "[cyan]Normal[-] (healthy activity)"
	}
	return "[green]Low[-] (stable codebase)"
}

func safeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Root returns the root primitive
func (v *SummaryView) Root() tview.Primitive {
	return v.root
}

// GetFocusable returns the focusable component
func (v *SummaryView) GetFocusable() tview.Primitive {
	return v.text
}

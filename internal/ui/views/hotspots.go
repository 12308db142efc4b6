package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/audi70r/cocostat/internal/stats"
)

// HotspotsView displays files with high churn and many authors
type HotspotsView struct {
	*sortTable
	repo       *stats.Repository
	limit      int
	minAuthors int
}

// NewHotspotsView creates a new hotspots view
func NewHotspotsView(limit, minAuthors int) *HotspotsView {
	return &HotspotsView{
		sortTable: newSortTable([]column{
			{title: "#"},
			{title: "File", key: "path"},
			{title: "Churn%", key: "churn"},
			{title: "Touches", key: "touches"},
			{title: "Authors", key: "authors"},
			{title: "Risk", key: "risk"},
		}, 5),
		limit:      limit,
		minAuthors: minAuthors,
	}
}

// Refresh updates the view with new data
func (v *HotspotsView) Refresh(repo *stats.Repository) {
	v.repo = repo
	v.Render()
}

// Render redraws the rows using the current sort settings
func (v *HotspotsView) Render() {
	v.reset()
	if v.repo == nil {
		return
	}

	hotspots := v.repo.GetHotspots(v.limit, v.minAuthors)
	sortHotspots(hotspots, v.sortKey(), v.sortAsc)

	highRisk := 0
	for i, spot := range hotspots {
		row := i + 1
		if spot.RiskScore >= 50 {
			highRisk++
		}

		authorColor := tcell.ColorWhite
		if spot.AuthorCount >= 5 {
			authorColor = tcell.ColorRed
		} else if spot.AuthorCount >= 3 {
			authorColor = tcell.ColorYellow
		}

		v.table.SetCell(row, 0, rankCell(row))
		v.table.SetCell(row, 1, tview.NewTableCell(truncateLeft(spot.Path, 50)).
			SetExpansion(1))
		v.table.SetCell(row, 2, tview.NewTableCell(fmt.Sprintf("%.1f%%", spot.ChurnScore)).
			SetAlign(tview.AlignRight))
		v.table.SetCell(row, 3, numberCell("%d", spot.TouchCount, tcell.ColorWhite))
		v.table.SetCell(row, 4, numberCell("%d", spot.AuthorCount, authorColor))
		v.table.SetCell(row, 5, tview.NewTableCell(fmt.Sprintf("%.0f %s", spot.RiskScore, getRiskBar(spot.RiskScore))).
			SetTextColor(getRiskColor(spot.RiskScore)).
			SetAlign(tview.AlignRight))
	}

	v.setInfo("[yellow]%d[-] hotspots (%d+ authors) | [red]%d[-] high-risk", len(hotspots), v.minAuthors, highRisk)
}

func sortHotspots(hotspots []*stats.HotspotFile, key string, ascending bool) {
	sort.SliceStable(hotspots, func(i, j int) bool {
		hi, hj := hotspots[i], hotspots[j]
		var less, equal bool
		switch key {
		case "path":
			less, equal = hi.Path < hj.Path, hi.Path == hj.Path
		case "churn":
			less, equal = hi.ChurnScore < hj.ChurnScore, hi.ChurnScore == hj.ChurnScore
		case "touches":
			less, equal = hi.TouchCount < hj.TouchCount, hi.TouchCount == hj.TouchCount
		case "authors":
			less, equal = hi.AuthorCount < hj.AuthorCount, hi.AuthorCount == hj.AuthorCount
		default:
			less, equal = hi.RiskScore < hj.RiskScore, hi.RiskScore == hj.RiskScore
		}
		if equal {
			return hi.Path < hj.Path
		}
		if ascending {
			return less
		}
		return !less
	})
}

func getRiskColor(score float64) tcell.Color {
	if score >= 70 {
		return tcell.ColorRed
	} else if score >= 50 {
		return tcell.ColorOrange
	} else if score >= 30 {
		return tcell.ColorYellow
	}
	return tcell.ColorGreen
}

// getRiskBar renders score as five blocks
func getRiskBar(score float64) string {
	filled := min(max(int(score/20), 0), 5)
	return strings.Repeat("█", filled) + strings.Repeat("░", 5-filled)
}

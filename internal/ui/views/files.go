package views

import (
	"path"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/audi70r/cocostat/internal/stats"
)

// FilesView displays top changed files
type FilesView struct {
	*sortTable
	repo  *stats.Repository
	limit int
}

// NewFilesView creates a new files view showing at most limit files
func NewFilesView(limit int) *FilesView {
	return &FilesView{
		sortTable: newSortTable([]column{
			{title: "#"},
			{title: "File", key: "path"},
			{title: "Changes", key: "changes"},
			{title: "Touches", key: "touches"},
			{title: "Authors", key: "authors"},
			{title: "+Lines", key: "additions"},
			{title: "-Lines", key: "deletions"},
		}, 2),
		limit: limit,
	}
}

// Refresh updates the view with new data
func (v *FilesView) Refresh(repo *stats.Repository) {
	v.repo = repo
	v.Render()
}

// Render redraws the rows using the current sort settings
func (v *FilesView) Render() {
	v.reset()
	if v.repo == nil {
		return
	}

	files := v.repo.GetTopFiles(v.sortKey(), v.sortAsc, v.limit)
	for i, file := range files {
		row := i + 1

		name := truncateLeft(file.Path, 50)
		pathColor := getDirColor(path.Dir(file.Path))
		if file.Binary {
			name += " (bin)"
			pathColor = tcell.ColorDarkGray
		}

		authorCount := len(file.Authors)
		authorColor := tcell.ColorWhite
		if authorCount >= 5 {
			authorColor = tcell.ColorRed
		} else if authorCount >= 3 {
			authorColor = tcell.ColorYellow
		}

		v.table.SetCell(row, 0, rankCell(row))
		v.table.SetCell(row, 1, tview.NewTableCell(name).
			SetTextColor(pathColor).
			SetExpansion(1))
		v.table.SetCell(row, 2, numberCell("%d", file.TotalChanges, tcell.ColorWhite))
		v.table.SetCell(row, 3, numberCell("%d", file.TouchCount, tcell.ColorWhite))
		v.table.SetCell(row, 4, numberCell("%d", authorCount, authorColor))
		v.table.SetCell(row, 5, numberCell("+%d", file.Additions, tcell.ColorGreen))
		v.table.SetCell(row, 6, numberCell("-%d", file.Deletions, tcell.ColorRed))
	}

	v.setInfo("[yellow]%d[-] files shown (of %d)", len(files), len(v.repo.FileStats))
}

func getDirColor(dir string) tcell.Color {
	colors := []tcell.Color{
		tcell.ColorLightCyan,
		tcell.ColorLightGreen,
		tcell.ColorLightYellow,
		tcell.ColorLightBlue,
		tcell.ColorWhite,
	}

	hash := 0
	for _, c := range dir {
		hash = hash*31 + int(c)
	}
	if hash < 0 {
		hash = -hash
	}

	return colors[hash%len(colors)]
}

package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// column describes one table column; an empty key makes it unsortable
type column struct {
	title string
	key   string
}

// sortTable is the table + info line layout shared by the list views
type sortTable struct {
	root    *tview.Flex
	table   *tview.Table
	info    *tview.TextView
	columns []column
	sortCol int
	sortAsc bool
}

func newSortTable(columns []column, sortCol int) *sortTable {
	t := &sortTable{
		columns: columns,
		sortCol: sortCol,
	}

	t.table = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0).
		SetSeparator(' ')

	t.info = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	t.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.table, 0, 1, true).
		AddItem(t.info, 1, 0, false)

	t.renderHeader()
	return t
}

func (t *sortTable) renderHeader() {
	for col, c := range t.columns {
		text := c.title
		if col == t.sortCol {
			if t.sortAsc {
				text += "▲"
			} else {
				text += "▼"
			}
		}
		t.table.SetCell(0, col, tview.NewTableCell(text).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false).
			SetAttributes(tcell.AttrBold))
	}
}

// reset drops all data rows and redraws the header
func (t *sortTable) reset() {
	for row := t.table.GetRowCount() - 1; row > 0; row-- {
		t.table.RemoveRow(row)
	}
	t.renderHeader()
}

func (t *sortTable) sortKey() string {
	return t.columns[t.sortCol].key
}

func (t *sortTable) sortTitle() string {
	return t.columns[t.sortCol].title
}

func (t *sortTable) setInfo(format string, args ...interface{}) {
	t.info.SetText(fmt.Sprintf(format, args...) +
		fmt.Sprintf(" | Sort: [green]%s[-] | [s] cycle column, [r] reverse", t.sortTitle()))
}

// CycleSortColumn moves to the next sortable column
func (t *sortTable) CycleSortColumn() {
	for i := 1; i <= len(t.columns); i++ {
		next := (t.sortCol + i) % len(t.columns)
		if t.columns[next].key != "" {
			t.sortCol = next
			return
		}
	}
}

// ReverseSortOrder reverses the sort order
func (t *sortTable) ReverseSortOrder() {
	t.sortAsc = !t.sortAsc
}

// Root returns the root primitive
func (t *sortTable) Root() tview.Primitive {
	return t.root
}

// GetFocusable returns the focusable component
func (t *sortTable) GetFocusable() tview.Primitive {
	return t.table
}

func rankCell(rank int) *tview.TableCell {
	return tview.NewTableCell(fmt.Sprintf("%d", rank)).
		SetTextColor(tcell.ColorDarkGray).
		SetAlign(tview.AlignRight)
}

func numberCell(format string, n int, color tcell.Color) *tview.TableCell {
	return tview.NewTableCell(fmt.Sprintf(format, n)).
		SetTextColor(color).
		SetAlign(tview.AlignRight)
}

// truncateLeft keeps the tail of long paths, which carries the file name
func truncateLeft(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return "..." + string(r[len(r)-width+3:])
}

// truncateRight shortens free text such as commit messages
func truncateRight(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return strings.TrimSpace(string(r[:width-1])) + "…"
}

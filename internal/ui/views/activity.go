package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/audi70r/cocostat/internal/stats"
	"github.com/audi70r/cocostat/internal/ui/components"
)

var weekdayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

const rule = "[yellow]━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━[-]"

// ActivityView shows commits over time and the weekday x hour heatmap
type ActivityView struct {
	root *tview.Flex
	text *tview.TextView

	repo          *stats.Repository
	tz            *time.Location
	sparkWidth    int
	rollingWindow int
}

// NewActivityView creates a new activity view
func NewActivityView(tz *time.Location, sparkWidth, rollingWindow int) *ActivityView {
	if tz == nil {
		tz = time.Local
	}
	v := &ActivityView{
		tz:            tz,
		sparkWidth:    sparkWidth,
		rollingWindow: max(rollingWindow, 1),
	}

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
func (v *ActivityView) Refresh(repo *stats.Repository) {
	v.repo = repo
	v.Render()
}

// Render rebuilds the text content
func (v *ActivityView) Render() {
	if v.repo == nil {
		return
	}
	timeline := v.repo.GetTimeline(v.rollingWindow)
	if len(timeline.Values) == 0 {
		v.text.SetText("[yellow]No commit data available[-]")
		return
	}

	var sb strings.Builder
	v.writeTimeline(&sb, timeline)
	sb.WriteString(rule + "\n\n")
	v.writeHeatmap(&sb, v.repo.GetHeatmap(v.tz))
	v.text.SetText(sb.String())
	v.text.ScrollToBeginning()
}

func (v *ActivityView) writeTimeline(sb *strings.Builder, timeline *stats.TimelineData) {
	total, peakIdx := 0, 0
	minVal := timeline.Values[0]
	for i, val := range timeline.Values {
		total += val
		if val > timeline.Values[peakIdx] {
			peakIdx = i
		}
		minVal = min(minVal, val)
	}
	days := len(timeline.Values)

	fmt.Fprintf(sb, "[::b]Commits Over Time[-:-:-]\n\n%s\n\n", rule)
	fmt.Fprintf(sb, "  [::b]Daily Activity[-:-:-]\n\n  [green]%s[-]\n\n  %s to %s\n\n",
		components.RenderSparklineWithWidth(timeline.Values, v.sparkWidth),
		timeline.Labels[0], timeline.Labels[days-1])
	fmt.Fprintf(sb, "  [::b]Weekly Activity[-:-:-]\n\n  [cyan]%s[-]\n\n%s\n\n",
		components.RenderSparklineWithWidth(aggregateWeekly(timeline.Labels, timeline.Values), v.sparkWidth), rule)

	fmt.Fprintf(sb, "  [::b]Statistics[-:-:-]\n\n")
	fmt.Fprintf(sb, "  Period:             [cyan]%d[-] days\n", days)
	fmt.Fprintf(sb, "  Total Commits:      [cyan]%d[-]\n", total)
	fmt.Fprintf(sb, "  Average per Day:    [cyan]%.2f[-]\n", float64(total)/float64(days))
	fmt.Fprintf(sb, "  Peak Day:           [green]%d[-] commits on [green]%s[-]\n", timeline.Values[peakIdx], timeline.Labels[peakIdx])
	fmt.Fprintf(sb, "  Minimum Day:        [red]%d[-] commits\n\n", minVal)

	fmt.Fprintf(sb, "  [::b]%d-Day Rolling Average[-:-:-]\n\n", v.rollingWindow)
	fmt.Fprintf(sb, "  Current:            [cyan]%.2f[-] commits/day\n", timeline.RollingAvg[days-1])
	fmt.Fprintf(sb, "  Trend:              %s\n\n", getTrendIndicator(timeline.RollingAvg, v.rollingWindow))
}

func (v *ActivityView) writeHeatmap(sb *strings.Builder, heatmap *stats.HeatmapData) {
	peak := components.FindPeak(heatmap.Matrix)
	workPct := components.WorkHoursShare(heatmap.Matrix)

	fmt.Fprintf(sb, "[::b]Work Hours Heatmap[-:-:-]\n\n  Timezone: [cyan]%s[-]\n\n", heatmap.Timezone)
	sb.WriteString(components.RenderHeatmap(heatmap.Matrix, heatmap.MaxValue))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "  Peak Time:          [green]%s[-] at [green]%02d:00[-] ([cyan]%d[-] commits)\n",
		weekdayNames[peak.Day], peak.Hour, peak.Value)
	fmt.Fprintf(sb, "  Work Hours (Mon-Fri, 9-18):   [cyan]%.1f%%[-]\n", workPct)
	fmt.Fprintf(sb, "  Pattern:            %s\n\n", getWorkPattern(workPct))

	row := make([]string, 7)
	for day, total := range peak.DayRows {
		row[day] = fmt.Sprintf("%s: [cyan]%4d[-]", weekdayNames[day][:3], total)
	}
	fmt.Fprintf(sb, "  %s\n  %s\n", strings.Join(row[:4], "  "), strings.Join(row[4:], "  "))
}

// aggregateWeekly sums daily values per ISO week, labels are "2006-01-02"
func aggregateWeekly(labels []string, values []int) []int {
	var result []int
	lastYear, lastWeek := -1, -1
	for i, label := range labels {
		d, err := time.Parse("2006-01-02", label)
		if err != nil {
			continue
		}
		year, week := d.ISOWeek()
		if year != lastYear || week != lastWeek {
			result = append(result, 0)
			lastYear, lastWeek = year, week
		}
		result[len(result)-1] += values[i]
	}
	return result
}

// getTrendIndicator compares the last window of rolling averages with the one before
func getTrendIndicator(rollingAvg []float64, window int) string {
	if len(rollingAvg) < 2*window {
		return "[gray]Insufficient data[-]"
	}

	var recentSum, prevSum float64
	for _, v := range rollingAvg[len(rollingAvg)-window:] {
		recentSum += v
	}
	for _, v := range rollingAvg[len(rollingAvg)-2*window : len(rollingAvg)-window] {
		prevSum += v
	}

	pctChange := 0.0
	if prevSum > 0 {
		pctChange = (recentSum - prevSum) / prevSum * 100
	}

	if pctChange > 10 {
		return fmt.Sprintf("[green]↑ +%.1f%%[-] (increasing)", pctChange)
	} else if pctChange < -10 {
		return fmt.Sprintf("[red]↓ %.1f%%[-] (decreasing)", pctChange)
	}
	return fmt.Sprintf("[yellow]→ %.1f%%[-] (stable)", pctChange)
}

func getWorkPattern(workPct float64) string {
	if workPct >= 80 {
		return "[green]Highly structured (mostly work hours)[-]"
	} else if workPct >= 60 {
		return "[cyan]Balanced (mix of work and off hours)[-]"
	} else if workPct >= 40 {
		return "[yellow]Flexible (significant off-hours work)[-]"
	}
	return "[red]Non-traditional (mostly off-hours)[-]"
}

// Root returns the root primitive
func (v *ActivityView) Root() tview.Primitive {
	return v.root
}

// GetFocusable returns the focusable component
func (v *ActivityView) GetFocusable() tview.Primitive {
	return v.text
}

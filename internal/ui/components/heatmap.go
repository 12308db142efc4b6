package components

import (
	"fmt"
	"strings"
)

// Monday first, matching stats.Repository.HourlyMatrix
var weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// tview color names from cold to hot
var heatColors = []string{"gray", "blue", "green", "yellow", "red"}

// HeatmapPeak summarises a weekday x hour matrix
type HeatmapPeak struct {
	Day     int
	Hour    int
	Value   int
	Total   int
	DayRows [7]int
}

// heatIndex maps a cell value onto heatColors
func heatIndex(val, maxValue int) int {
	if maxValue <= 0 || val <= 0 {
		return 0
	}
	return min((val*(len(heatColors)-1))/maxValue, len(heatColors)-1)
}

// RenderHeatmap creates a colored weekday x hour grid for a tview TextView
func RenderHeatmap(matrix [7][24]int, maxValue int) string {
	var sb strings.Builder

	sb.WriteString("      ")
	for h := 0; h < 24; h++ {
		if h%3 == 0 {
			fmt.Fprintf(&sb, "[white]%02d[-]", h)
		} else {
			sb.WriteString("  ")
		}
	}
	sb.WriteString("\n")

	for day, name := range weekdays {
		fmt.Fprintf(&sb, "[yellow]%-5s[-] ", name)
		for hour := 0; hour < 24; hour++ {
			fmt.Fprintf(&sb, "[%s]██[-]", heatColors[heatIndex(matrix[day][hour], maxValue)])
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n      [gray]Low[-] ")
	for _, color := range heatColors {
		fmt.Fprintf(&sb, "[%s]██[-]", color)
	}
	sb.WriteString(" [red]High[-]")

	return sb.String()
}

// FindPeak returns the busiest cell plus per-weekday totals
func FindPeak(matrix [7][24]int) HeatmapPeak {
	var p HeatmapPeak
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			v := matrix[day][hour]
			p.Total += v
			p.DayRows[day] += v
			if v > p.Value {
				p.Day, p.Hour, p.Value = day, hour, v
			}
		}
	}
	return p
}

// WorkHoursShare returns the percentage of commits made Mon-Fri 09:00-18:00
func WorkHoursShare(matrix [7][24]int) float64 {
	var work, total int
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			total += matrix[day][hour]
			if day < 5 && hour >= 9 && hour < 18 {
				work += matrix[day][hour]
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(work) / float64(total) * 100
}

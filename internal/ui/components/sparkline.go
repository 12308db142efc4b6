package components

import (
	"strings"
)

// U+2581 to U+2588
var sparkBars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline converts values to a unicode sparkline scaled between
// the smallest and largest value
func RenderSparkline(values []int) string {
	if len(values) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	if hi == lo {
		return strings.Repeat(string(sparkBars[len(sparkBars)/2]), len(values))
	}

	var sb strings.Builder
	scale := float64(len(sparkBars)-1) / float64(hi-lo)
	for _, v := range values {
		idx := int(float64(v-lo) * scale)
		sb.WriteRune(sparkBars[max(0, min(idx, len(sparkBars)-1))])
	}
	return sb.String()
}

// RenderSparklineWithWidth averages values into at most width buckets
// before rendering
func RenderSparklineWithWidth(values []int, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	return RenderSparkline(Downsample(values, width))
}

// Downsample averages values into width buckets; shorter input is returned as is
func Downsample(values []int, width int) []int {
	if len(values) <= width {
		return values
	}

	out := make([]int, width)
	bucket := float64(len(values)) / float64(width)
	for i := range out {
		start := int(float64(i) * bucket)
		end := min(int(float64(i+1)*bucket), len(values))
		sum := 0
		for _, v := range values[start:end] {
			sum += v
		}
		if end > start {
			out[i] = sum / (end - start)
		}
	}
	return out
}

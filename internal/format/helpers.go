package format

import (
	"fmt"
	"math"
)

// FmtScore formats a metric score to four decimal places.
// NaN (e.g. correlation over a constant column) renders as "-".
func FmtScore(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}

// FmtInterval formats a confidence or bucket interval as "[lo, hi]".
func FmtInterval(lo, hi float64) string {
	return fmt.Sprintf("[%s, %s]", trimFloat(lo), trimFloat(hi))
}

// FmtDelta formats a signed score difference, keeping the explicit "+".
func FmtDelta(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%+.4f", v)
}

// FmtCount formats a sample count with a thousands separator.
func FmtCount(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}

// Truncate shortens s to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// trimFloat renders a float compactly: integers without a decimal point,
// everything else with up to four significant decimals.
func trimFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e12 {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.4g", v)
}

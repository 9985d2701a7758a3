package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/yairfalse/kartta/internal/history"
)

// TrendFormatter renders drift trend summaries as text.
type TrendFormatter struct{}

// NewTrendFormatter creates a formatter.
func NewTrendFormatter() *TrendFormatter {
	return &TrendFormatter{}
}

// FormatTrend renders a trend summary. With fewer than two snapshots it
// reports that trend analysis needs more data.
func (f *TrendFormatter) FormatTrend(summary *history.TrendSummary) string {
	var sb strings.Builder
	rule := strings.Repeat("=", 60)

	sb.WriteString(rule + "\n")
	sb.WriteString("DRIFT TREND ANALYSIS\n")
	sb.WriteString(rule + "\n\n")

	if summary.Insufficient {
		sb.WriteString(fmt.Sprintf("Not enough history for trend analysis (%d snapshot(s), need 2).\n", summary.Snapshots))
		return sb.String()
	}

	span := summary.LastCaptured.Sub(summary.FirstCaptured)
	sb.WriteString(fmt.Sprintf("Snapshots:      %d\n", summary.Snapshots))
	sb.WriteString(fmt.Sprintf("First captured: %s\n", summary.FirstCaptured.UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Last captured:  %s\n", summary.LastCaptured.UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Span:           %s\n", span))
	sb.WriteString(fmt.Sprintf("With drift:     %d\n", summary.Changed))
	sb.WriteString(fmt.Sprintf("Stability:      %.1f%%\n\n", summary.StabilityRate*100))

	sb.WriteString("Architecture Growth:\n")
	for _, growth := range summary.Growth {
		sb.WriteString(fmt.Sprintf("  %-14s %d -> %d (%+d)\n", growth.Label+":", growth.First, growth.Last, growth.Delta))
	}
	return sb.String()
}

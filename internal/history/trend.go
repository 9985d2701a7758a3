package history

import (
	"time"

	"github.com/yairfalse/kartta/pkg/types"
)

// MetricGrowth is the first-to-last delta of one headline metric.
type MetricGrowth struct {
	Label string `json:"label"`
	First int    `json:"first"`
	Last  int    `json:"last"`
	Delta int    `json:"delta"`
}

// TrendSummary is the derived trend view over the whole history.
type TrendSummary struct {
	// Insufficient is true when fewer than two entries exist; the remaining
	// fields are then limited to Snapshots.
	Insufficient  bool           `json:"insufficient_data"`
	Snapshots     int            `json:"snapshots"`
	FirstCaptured time.Time      `json:"first_captured,omitempty"`
	LastCaptured  time.Time      `json:"last_captured,omitempty"`
	Changed       int            `json:"changed"`
	StabilityRate float64        `json:"stability_rate"`
	Growth        []MetricGrowth `json:"growth,omitempty"`
}

// Trend analyzes the stored history. With fewer than two entries it reports
// insufficient data instead of failing.
func (s *Store) Trend() (*TrendSummary, error) {
	records, err := s.History()
	if err != nil {
		return nil, err
	}
	return SummarizeTrend(records), nil
}

// SummarizeTrend computes the trend over an explicit record list.
func SummarizeTrend(records []types.DriftRecord) *TrendSummary {
	summary := &TrendSummary{Snapshots: len(records)}
	if len(records) < 2 {
		summary.Insufficient = true
		return summary
	}

	first := records[0]
	last := records[len(records)-1]
	summary.FirstCaptured = first.Timestamp
	summary.LastCaptured = last.Timestamp

	for _, record := range records {
		if record.DriftScore > 0 {
			summary.Changed++
		}
	}
	summary.StabilityRate = float64(len(records)-summary.Changed) / float64(len(records))

	summary.Growth = []MetricGrowth{
		growth("Services", first.Metrics.TotalServices, last.Metrics.TotalServices),
		growth("Dependencies", first.Metrics.TotalDependencies, last.Metrics.TotalDependencies),
		growth("Endpoints", first.Metrics.TotalEndpoints, last.Metrics.TotalEndpoints),
		growth("Journeys", first.Metrics.TotalJourneys, last.Metrics.TotalJourneys),
	}
	return summary
}

func growth(label string, first, last int) MetricGrowth {
	return MetricGrowth{Label: label, First: first, Last: last, Delta: last - first}
}

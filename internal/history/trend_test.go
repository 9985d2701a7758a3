package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yairfalse/kartta/pkg/types"
)

func record(ts time.Time, score int, metrics types.ArchitectureMetrics) types.DriftRecord {
	return types.DriftRecord{
		Timestamp:  ts,
		Hash:       "h",
		DriftScore: score,
		Metrics:    metrics,
	}
}

func TestSummarizeTrend_InsufficientData(t *testing.T) {
	assert.True(t, SummarizeTrend(nil).Insufficient)

	one := []types.DriftRecord{record(time.Now(), 0, types.ArchitectureMetrics{})}
	summary := SummarizeTrend(one)
	assert.True(t, summary.Insufficient)
	assert.Equal(t, 1, summary.Snapshots)
}

func TestSummarizeTrend_GrowthAndStability(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []types.DriftRecord{
		record(base, 0, types.ArchitectureMetrics{TotalServices: 3, TotalDependencies: 2, TotalEndpoints: 5, TotalJourneys: 2}),
		record(base.Add(time.Hour), 22, types.ArchitectureMetrics{TotalServices: 4, TotalDependencies: 3, TotalEndpoints: 6, TotalJourneys: 2}),
		record(base.Add(2*time.Hour), 0, types.ArchitectureMetrics{TotalServices: 4, TotalDependencies: 3, TotalEndpoints: 6, TotalJourneys: 2}),
		record(base.Add(3*time.Hour), 40, types.ArchitectureMetrics{TotalServices: 2, TotalDependencies: 1, TotalEndpoints: 4, TotalJourneys: 1}),
	}

	summary := SummarizeTrend(records)

	assert.False(t, summary.Insufficient)
	assert.Equal(t, 4, summary.Snapshots)
	assert.Equal(t, base, summary.FirstCaptured)
	assert.Equal(t, base.Add(3*time.Hour), summary.LastCaptured)
	assert.Equal(t, 2, summary.Changed)
	assert.InDelta(t, 0.5, summary.StabilityRate, 1e-9)

	require.Len(t, summary.Growth, 4)
	assert.Equal(t, MetricGrowth{Label: "Services", First: 3, Last: 2, Delta: -1}, summary.Growth[0])
	assert.Equal(t, MetricGrowth{Label: "Dependencies", First: 2, Last: 1, Delta: -1}, summary.Growth[1])
	assert.Equal(t, MetricGrowth{Label: "Endpoints", First: 5, Last: 4, Delta: -1}, summary.Growth[2])
	assert.Equal(t, MetricGrowth{Label: "Journeys", First: 2, Last: 1, Delta: -1}, summary.Growth[3])
}

func TestTrend_FromStore(t *testing.T) {
	store := newTestStore(t)

	summary, err := store.Trend()
	require.NoError(t, err)
	assert.True(t, summary.Insufficient)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err = store.Append(testArch(base, []string{"auth"}, nil))
	require.NoError(t, err)
	_, err = store.Append(testArch(base.Add(time.Hour), []string{"auth", "product"}, map[string][]string{"auth": {"product"}}))
	require.NoError(t, err)

	summary, err = store.Trend()
	require.NoError(t, err)
	assert.False(t, summary.Insufficient)
	assert.Equal(t, 2, summary.Snapshots)
	assert.Equal(t, 1, summary.Changed)
	assert.InDelta(t, 0.5, summary.StabilityRate, 1e-9)
	assert.Equal(t, 1, summary.Growth[0].Delta)
}

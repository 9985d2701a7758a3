package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yairfalse/kartta/pkg/types"
)

func TestFormatDriftReport_Changes(t *testing.T) {
	formatter := NewDriftFormatter(true)
	cs := &types.ChangeSet{
		ServicesAdded:       []string{"payment"},
		DependenciesAdded:   []types.DependencyEdge{{Source: "product", Target: "payment"}},
		DependenciesRemoved: []types.DependencyEdge{{Source: "auth", Target: "legacy"}},
		EndpointsRemoved:    []types.EndpointRef{{Service: "legacy", Endpoint: "/old"}},
	}

	report := formatter.FormatDriftReport("old.json", "new.json", cs, 22, types.SeverityMedium)

	assert.Contains(t, report, "ARCHITECTURE DRIFT REPORT")
	assert.Contains(t, report, "Baseline:  old.json")
	assert.Contains(t, report, "Drift Score: 22/100")
	assert.Contains(t, report, "MEDIUM")
	assert.Contains(t, report, "+ payment")
	assert.Contains(t, report, "+ product -> payment")
	assert.Contains(t, report, "- auth -> legacy")
	assert.Contains(t, report, "- legacy:/old")
	assert.Contains(t, report, "Review changes with the team")
}

func TestFormatDriftReport_NoChanges(t *testing.T) {
	formatter := NewDriftFormatter(true)
	report := formatter.FormatDriftReport("", "", &types.ChangeSet{}, 0, types.SeverityNoChange)

	assert.Contains(t, report, "Architecture is stable")
	assert.Contains(t, report, "No action required")
	assert.NotContains(t, report, "Service Changes")
}

func TestFormatDriftReport_Initial(t *testing.T) {
	formatter := NewDriftFormatter(true)
	cs := &types.ChangeSet{Initial: true}
	report := formatter.FormatDriftReport("", "", cs, 0, types.SeverityNoChange)

	assert.Contains(t, report, "Initial snapshot")
}

func TestFormatSummary(t *testing.T) {
	formatter := NewDriftFormatter(true)
	cs := &types.ChangeSet{ServicesAdded: []string{"a", "b"}}

	assert.Equal(t, "2 changes, drift score 30/100, severity MEDIUM\n",
		formatter.FormatSummary(cs, 30, types.SeverityMedium))
	assert.Equal(t, "initial snapshot, drift score 0\n",
		formatter.FormatSummary(&types.ChangeSet{Initial: true}, 0, types.SeverityNoChange))
}

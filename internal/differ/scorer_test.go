package differ

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yairfalse/kartta/pkg/types"
)

func changeSet(svcAdd, svcRem, depAdd, depRem, epAdd, epRem int) *types.ChangeSet {
	cs := &types.ChangeSet{}
	for i := 0; i < svcAdd; i++ {
		cs.ServicesAdded = append(cs.ServicesAdded, fmt.Sprintf("svc-add-%d", i))
	}
	for i := 0; i < svcRem; i++ {
		cs.ServicesRemoved = append(cs.ServicesRemoved, fmt.Sprintf("svc-rem-%d", i))
	}
	for i := 0; i < depAdd; i++ {
		cs.DependenciesAdded = append(cs.DependenciesAdded, types.DependencyEdge{Source: "a", Target: fmt.Sprintf("t%d", i)})
	}
	for i := 0; i < depRem; i++ {
		cs.DependenciesRemoved = append(cs.DependenciesRemoved, types.DependencyEdge{Source: "b", Target: fmt.Sprintf("t%d", i)})
	}
	for i := 0; i < epAdd; i++ {
		cs.EndpointsAdded = append(cs.EndpointsAdded, types.EndpointRef{Service: "a", Endpoint: fmt.Sprintf("/e%d", i)})
	}
	for i := 0; i < epRem; i++ {
		cs.EndpointsRemoved = append(cs.EndpointsRemoved, types.EndpointRef{Service: "b", Endpoint: fmt.Sprintf("/e%d", i)})
	}
	return cs
}

func TestScore_Weights(t *testing.T) {
	tests := []struct {
		name         string
		cs           *types.ChangeSet
		wantScore    int
		wantSeverity types.Severity
	}{
		{"empty", changeSet(0, 0, 0, 0, 0, 0), 0, types.SeverityNoChange},
		{"one endpoint added", changeSet(0, 0, 0, 0, 1, 0), 3, types.SeverityLow},
		{"service plus dependency added", changeSet(1, 0, 1, 0, 0, 0), 22, types.SeverityMedium},
		{"service removed with two edges", changeSet(0, 1, 0, 2, 0, 0), 40, types.SeverityMedium},
		{"three services removed", changeSet(0, 3, 0, 0, 0, 0), 60, types.SeverityHigh},
		{"four services removed", changeSet(0, 4, 0, 0, 0, 0), 80, types.SeverityCritical},
		{"clamped at 100", changeSet(10, 10, 0, 0, 0, 0), 100, types.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, severity := Score(tt.cs)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantSeverity, severity)
		})
	}
}

func TestScore_Bounded(t *testing.T) {
	for svcRem := 0; svcRem <= 12; svcRem += 3 {
		for epAdd := 0; epAdd <= 40; epAdd += 10 {
			score, _ := Score(changeSet(0, svcRem, 0, 0, epAdd, 0))
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		}
	}
}

func TestScore_InitialChangeSet(t *testing.T) {
	score, severity := Score(InitialChangeSet())
	assert.Equal(t, 0, score)
	assert.Equal(t, types.SeverityNoChange, severity)

	score, severity = Score(nil)
	assert.Equal(t, 0, score)
	assert.Equal(t, types.SeverityNoChange, severity)
}

func TestSeverityForScore_Thresholds(t *testing.T) {
	tests := []struct {
		score int
		want  types.Severity
	}{
		{0, types.SeverityNoChange},
		{1, types.SeverityLow},
		{19, types.SeverityLow},
		{20, types.SeverityMedium},
		{49, types.SeverityMedium},
		{50, types.SeverityHigh},
		{79, types.SeverityHigh},
		{80, types.SeverityCritical},
		{100, types.SeverityCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SeverityForScore(tt.score), "score %d", tt.score)
	}
}

func TestSeverityForScore_Monotonic(t *testing.T) {
	rank := map[types.Severity]int{
		types.SeverityNoChange: 0,
		types.SeverityLow:      1,
		types.SeverityMedium:   2,
		types.SeverityHigh:     3,
		types.SeverityCritical: 4,
	}

	prev := SeverityForScore(0)
	for score := 1; score <= 100; score++ {
		curr := SeverityForScore(score)
		assert.GreaterOrEqual(t, rank[curr], rank[prev], "severity regressed at score %d", score)
		prev = curr
	}
}

package differ

import "github.com/yairfalse/kartta/pkg/types"

// Category weights. Removals outweigh additions in every category, and
// services outweigh dependencies which outweigh endpoints.
const (
	WeightServiceAdded      = 15
	WeightServiceRemoved    = 20
	WeightDependencyAdded   = 7
	WeightDependencyRemoved = 10
	WeightEndpointAdded     = 3
	WeightEndpointRemoved   = 5

	// MaxScore is the clamp ceiling for the drift score.
	MaxScore = 100
)

// Score maps a change set to a drift score in [0,100] and its severity tier.
// The function is stateless and reproducible from the change set alone; the
// initial change set always scores zero.
func Score(cs *types.ChangeSet) (int, types.Severity) {
	if cs == nil || cs.Initial {
		return 0, types.SeverityNoChange
	}

	score := len(cs.ServicesAdded)*WeightServiceAdded +
		len(cs.ServicesRemoved)*WeightServiceRemoved +
		len(cs.DependenciesAdded)*WeightDependencyAdded +
		len(cs.DependenciesRemoved)*WeightDependencyRemoved +
		len(cs.EndpointsAdded)*WeightEndpointAdded +
		len(cs.EndpointsRemoved)*WeightEndpointRemoved

	if score > MaxScore {
		score = MaxScore
	}
	return score, SeverityForScore(score)
}

// SeverityForScore maps a score on the 0-100 scale to its discrete tier.
func SeverityForScore(score int) types.Severity {
	switch {
	case score <= 0:
		return types.SeverityNoChange
	case score < 20:
		return types.SeverityLow
	case score < 50:
		return types.SeverityMedium
	case score < 80:
		return types.SeverityHigh
	default:
		return types.SeverityCritical
	}
}

// Package analyzer derives display-only metrics from journey summaries.
// Frequencies annotate reports and diagrams; they are never part of snapshot
// identity and never affect the fingerprint.
package analyzer

import (
	"sort"

	"github.com/yairfalse/kartta/pkg/types"
)

// FrequencyReport counts how often services, endpoints and edges were
// observed across journeys.
type FrequencyReport struct {
	ServiceCalls    map[string]int               `json:"service_calls"`
	EndpointCalls   map[types.EndpointRef]int    `json:"-"`
	DependencyCalls map[types.DependencyEdge]int `json:"-"`
}

// CallFrequencies walks every journey and counts service traversals,
// endpoint invocations and consecutive-service handoffs.
func CallFrequencies(journeys []types.Journey) *FrequencyReport {
	report := &FrequencyReport{
		ServiceCalls:    make(map[string]int),
		EndpointCalls:   make(map[types.EndpointRef]int),
		DependencyCalls: make(map[types.DependencyEdge]int),
	}

	for _, journey := range journeys {
		for _, svc := range journey.Services {
			report.ServiceCalls[svc]++
		}
		for _, call := range journey.Endpoints {
			report.EndpointCalls[types.EndpointRef{Service: call.Service, Endpoint: call.Endpoint}]++
		}
		for i := 0; i+1 < len(journey.Services); i++ {
			edge := types.DependencyEdge{Source: journey.Services[i], Target: journey.Services[i+1]}
			report.DependencyCalls[edge]++
		}
	}
	return report
}

// EdgeCount pairs an edge with its observed frequency.
type EdgeCount struct {
	Edge  types.DependencyEdge
	Calls int
}

// BusiestEdges returns edges ordered by call count, busiest first, ties
// broken by edge name for stable output.
func (r *FrequencyReport) BusiestEdges() []EdgeCount {
	out := make([]EdgeCount, 0, len(r.DependencyCalls))
	for edge, calls := range r.DependencyCalls {
		out = append(out, EdgeCount{Edge: edge, Calls: calls})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return out[i].Edge.String() < out[j].Edge.String()
	})
	return out
}

// Calls returns the observed frequency for one edge.
func (r *FrequencyReport) Calls(edge types.DependencyEdge) int {
	return r.DependencyCalls[edge]
}

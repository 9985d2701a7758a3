// Package differ diffs two architecture snapshots into a change set and
// scores the result into a bounded drift score with a severity tier.
package differ

import (
	"sort"

	"github.com/yairfalse/kartta/pkg/types"
)

// Comparator performs set-difference comparison between two snapshots along
// the three identity facets. Comparison is string equality on canonicalized
// identifiers; there is no fuzzy matching.
type Comparator struct{}

// NewComparator creates a comparator.
func NewComparator() *Comparator {
	return &Comparator{}
}

// InitialChangeSet returns the distinguished change set for a first-ever
// snapshot: all facets empty and Initial set, so scoring yields zero without
// claiming the architecture is unchanged.
func InitialChangeSet() *types.ChangeSet {
	cs := emptyChangeSet()
	cs.Initial = true
	return cs
}

// Compare diffs baseline against current. A nil baseline is treated as the
// initial comparison.
func (c *Comparator) Compare(baseline, current *types.Architecture) *types.ChangeSet {
	if baseline == nil {
		return InitialChangeSet()
	}

	cs := emptyChangeSet()

	cs.ServicesAdded, cs.ServicesRemoved = diffStrings(baseline.Services, current.Services)

	baseEdges := edgeSet(baseline)
	currEdges := edgeSet(current)
	for edge := range currEdges {
		if _, ok := baseEdges[edge]; !ok {
			cs.DependenciesAdded = append(cs.DependenciesAdded, edge)
		}
	}
	for edge := range baseEdges {
		if _, ok := currEdges[edge]; !ok {
			cs.DependenciesRemoved = append(cs.DependenciesRemoved, edge)
		}
	}
	sortEdges(cs.DependenciesAdded)
	sortEdges(cs.DependenciesRemoved)

	baseRefs := refSet(baseline)
	currRefs := refSet(current)
	for ref := range currRefs {
		if _, ok := baseRefs[ref]; !ok {
			cs.EndpointsAdded = append(cs.EndpointsAdded, ref)
		}
	}
	for ref := range baseRefs {
		if _, ok := currRefs[ref]; !ok {
			cs.EndpointsRemoved = append(cs.EndpointsRemoved, ref)
		}
	}
	sortRefs(cs.EndpointsAdded)
	sortRefs(cs.EndpointsRemoved)

	return cs
}

func emptyChangeSet() *types.ChangeSet {
	return &types.ChangeSet{
		ServicesAdded:       []string{},
		ServicesRemoved:     []string{},
		DependenciesAdded:   []types.DependencyEdge{},
		DependenciesRemoved: []types.DependencyEdge{},
		EndpointsAdded:      []types.EndpointRef{},
		EndpointsRemoved:    []types.EndpointRef{},
	}
}

func diffStrings(baseline, current []string) (added, removed []string) {
	added = []string{}
	removed = []string{}

	base := make(map[string]struct{}, len(baseline))
	for _, s := range baseline {
		base[s] = struct{}{}
	}
	curr := make(map[string]struct{}, len(current))
	for _, s := range current {
		curr[s] = struct{}{}
	}

	for s := range curr {
		if _, ok := base[s]; !ok {
			added = append(added, s)
		}
	}
	for s := range base {
		if _, ok := curr[s]; !ok {
			removed = append(removed, s)
		}
	}

	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

func edgeSet(arch *types.Architecture) map[types.DependencyEdge]struct{} {
	set := make(map[types.DependencyEdge]struct{}, arch.DependencyCount())
	for _, edge := range arch.DependencyEdges() {
		set[edge] = struct{}{}
	}
	return set
}

func refSet(arch *types.Architecture) map[types.EndpointRef]struct{} {
	set := make(map[types.EndpointRef]struct{}, arch.EndpointCount())
	for _, ref := range arch.EndpointRefs() {
		set[ref] = struct{}{}
	}
	return set
}

func sortEdges(edges []types.DependencyEdge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
}

func sortRefs(refs []types.EndpointRef) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Service != refs[j].Service {
			return refs[i].Service < refs[j].Service
		}
		return refs[i].Endpoint < refs[j].Endpoint
	})
}

package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Architecture is the inferred system state at one point in time: the set of
// discovered services, the directed call edges between them, and the endpoint
// catalog per service. Identity is defined by Services, Dependencies and
// Endpoints only; Timestamp and Journeys are informational.
type Architecture struct {
	ID              string              `json:"id,omitempty"`
	Timestamp       time.Time           `json:"timestamp"`
	DiscoveryMethod string              `json:"discovery_method,omitempty"`
	Services        []string            `json:"services"`
	Dependencies    map[string][]string `json:"service_dependencies"`
	Endpoints       map[string][]string `json:"service_endpoints"`
	Journeys        []Journey           `json:"user_journeys"`
	Metrics         ArchitectureMetrics `json:"metrics"`
}

// ArchitectureMetrics carries the headline counts of a snapshot. Derived from
// the identity facets plus the journey list; recomputed on Normalize.
type ArchitectureMetrics struct {
	TotalServices     int `json:"total_services"`
	TotalDependencies int `json:"total_dependencies"`
	TotalEndpoints    int `json:"total_endpoints"`
	TotalJourneys     int `json:"total_journeys"`
}

// Validate checks structural requirements. It does not enforce the closure
// invariant; call Normalize for that.
func (a *Architecture) Validate() error {
	if a.Timestamp.IsZero() {
		return errors.New("architecture timestamp is required")
	}
	if a.Services == nil {
		return errors.New("architecture services cannot be nil")
	}
	for _, svc := range a.Services {
		if strings.TrimSpace(svc) == "" {
			return errors.New("architecture contains an empty service name")
		}
	}
	return nil
}

// ClosureViolations returns every service referenced as a dependency source,
// dependency target, or endpoint owner that is missing from Services.
func (a *Architecture) ClosureViolations() []string {
	known := make(map[string]bool, len(a.Services))
	for _, svc := range a.Services {
		known[svc] = true
	}

	seen := make(map[string]bool)
	var missing []string
	note := func(svc string) {
		if svc != "" && !known[svc] && !seen[svc] {
			seen[svc] = true
			missing = append(missing, svc)
		}
	}

	for src, targets := range a.Dependencies {
		note(src)
		for _, dst := range targets {
			note(dst)
		}
	}
	for svc := range a.Endpoints {
		note(svc)
	}

	sort.Strings(missing)
	return missing
}

// Normalize canonicalizes the snapshot in place: services sorted and
// deduplicated, dependency targets and endpoint lists sorted per key,
// self-edges dropped, closure violations repaired by including the missing
// service, and metrics recomputed. Returns the services that had to be
// auto-included so the caller can log the invariant violation.
func (a *Architecture) Normalize() []string {
	repaired := a.ClosureViolations()
	a.Services = append(a.Services, repaired...)
	a.Services = sortedUnique(a.Services)

	if a.Dependencies == nil {
		a.Dependencies = make(map[string][]string)
	}
	for src, targets := range a.Dependencies {
		out := targets[:0]
		for _, dst := range sortedUnique(targets) {
			if dst != src {
				out = append(out, dst)
			}
		}
		if len(out) == 0 {
			delete(a.Dependencies, src)
			continue
		}
		a.Dependencies[src] = out
	}

	if a.Endpoints == nil {
		a.Endpoints = make(map[string][]string)
	}
	for svc, eps := range a.Endpoints {
		eps = sortedUnique(eps)
		if len(eps) == 0 {
			delete(a.Endpoints, svc)
			continue
		}
		a.Endpoints[svc] = eps
	}

	a.Metrics = ArchitectureMetrics{
		TotalServices:     len(a.Services),
		TotalDependencies: a.DependencyCount(),
		TotalEndpoints:    a.EndpointCount(),
		TotalJourneys:     len(a.Journeys),
	}
	return repaired
}

// DependencyCount returns the number of directed edges in the snapshot.
func (a *Architecture) DependencyCount() int {
	n := 0
	for _, targets := range a.Dependencies {
		n += len(targets)
	}
	return n
}

// EndpointCount returns the number of endpoints across all services.
func (a *Architecture) EndpointCount() int {
	n := 0
	for _, eps := range a.Endpoints {
		n += len(eps)
	}
	return n
}

// DependencyEdges flattens the dependency mapping into edge values, sorted.
func (a *Architecture) DependencyEdges() []DependencyEdge {
	edges := make([]DependencyEdge, 0, a.DependencyCount())
	for src, targets := range a.Dependencies {
		for _, dst := range targets {
			edges = append(edges, DependencyEdge{Source: src, Target: dst})
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].less(edges[j]) })
	return edges
}

// EndpointRefs flattens the endpoint catalog into reference values, sorted.
func (a *Architecture) EndpointRefs() []EndpointRef {
	refs := make([]EndpointRef, 0, a.EndpointCount())
	for svc, eps := range a.Endpoints {
		for _, ep := range eps {
			refs = append(refs, EndpointRef{Service: svc, Endpoint: ep})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].less(refs[j]) })
	return refs
}

// String returns a short description of the snapshot.
func (a *Architecture) String() string {
	return fmt.Sprintf("architecture %s (%d services, %d dependencies, %d endpoints)",
		a.Timestamp.Format(time.RFC3339), len(a.Services), a.DependencyCount(), a.EndpointCount())
}

func sortedUnique(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[i-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}

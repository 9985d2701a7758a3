package tracer

import (
	"time"

	"github.com/yairfalse/kartta/internal/logger"
	"github.com/yairfalse/kartta/pkg/types"
)

// DiscoveryMethod tags snapshots produced by this inferencer.
const DiscoveryMethod = "correlation_tracing"

// Inferencer converts ordered traces into an architecture snapshot. All
// state lives in a per-run accumulator, so concurrent inferences never
// cross-contaminate.
type Inferencer struct {
	log logger.Logger
}

// NewInferencer creates an inferencer.
func NewInferencer(log logger.Logger) *Inferencer {
	return &Inferencer{log: log}
}

// accumulator collects the union facets across traces. Facet identity is
// set membership only; call frequency is derived elsewhere and never stored
// here.
type accumulator struct {
	services  map[string]struct{}
	deps      map[types.DependencyEdge]struct{}
	endpoints map[types.EndpointRef]struct{}
	journeys  []types.Journey
}

func newAccumulator() *accumulator {
	return &accumulator{
		services:  make(map[string]struct{}),
		deps:      make(map[types.DependencyEdge]struct{}),
		endpoints: make(map[types.EndpointRef]struct{}),
	}
}

// Infer builds an architecture snapshot from the given traces. Traces are
// processed independently and merged by set union, so the identity facets do
// not depend on trace order; only the informational journey list follows the
// input order. Empty traces contribute nothing.
func (inf *Inferencer) Infer(traces []types.Trace) *types.Architecture {
	acc := newAccumulator()

	for _, trace := range traces {
		if trace.IsEmpty() {
			continue
		}
		journey := acc.analyzeTrace(trace)
		if len(journey.Services) > 0 {
			acc.journeys = append(acc.journeys, journey)
		}
	}

	return acc.build(time.Now().UTC(), inf.log)
}

// analyzeTrace walks one trace in event order. Dependency edges come from the
// sequential-adjacency heuristic: whenever consecutive events land on
// different services, a directed edge is recorded from the previous service
// to the current one. The heuristic accepts false edges from out-of-order or
// asynchronous logging; no causal verification is attempted.
func (acc *accumulator) analyzeTrace(trace types.Trace) types.Journey {
	journey := types.Journey{
		CorrelationID: trace.CorrelationID,
		JourneyName:   trace.JourneyName,
		Endpoints:     []types.EndpointCall{},
	}

	seen := make(map[string]struct{})
	previous := ""

	for _, event := range trace.Events {
		service := event.Service
		if service == "" {
			continue
		}

		if _, ok := seen[service]; !ok {
			seen[service] = struct{}{}
			journey.Services = append(journey.Services, service)
			acc.services[service] = struct{}{}
		}

		if event.Endpoint != "" {
			journey.Endpoints = append(journey.Endpoints, types.EndpointCall{
				Service:   service,
				Endpoint:  event.Endpoint,
				Timestamp: event.Timestamp,
			})
			acc.endpoints[types.EndpointRef{Service: service, Endpoint: event.Endpoint}] = struct{}{}
		}

		// Same-service repeats never create self-edges.
		if previous != "" && previous != service {
			acc.deps[types.DependencyEdge{Source: previous, Target: service}] = struct{}{}
		}
		previous = service
	}

	if len(journey.Services) > 0 {
		journey.StartService = journey.Services[0]
		journey.EndService = journey.Services[len(journey.Services)-1]
	}
	journey.ServiceCount = len(journey.Services)
	return journey
}

// build materializes the accumulated sets into a normalized snapshot.
func (acc *accumulator) build(ts time.Time, log logger.Logger) *types.Architecture {
	arch := &types.Architecture{
		Timestamp:       ts,
		DiscoveryMethod: DiscoveryMethod,
		Services:        make([]string, 0, len(acc.services)),
		Dependencies:    make(map[string][]string),
		Endpoints:       make(map[string][]string),
		Journeys:        acc.journeys,
	}
	if arch.Journeys == nil {
		arch.Journeys = []types.Journey{}
	}

	for svc := range acc.services {
		arch.Services = append(arch.Services, svc)
	}
	for edge := range acc.deps {
		arch.Dependencies[edge.Source] = append(arch.Dependencies[edge.Source], edge.Target)
	}
	for ref := range acc.endpoints {
		arch.Endpoints[ref.Service] = append(arch.Endpoints[ref.Service], ref.Endpoint)
	}

	if repaired := arch.Normalize(); len(repaired) > 0 {
		log.WithField("services", repaired).Warn("closure invariant repaired: auto-included referenced services")
	}
	return arch
}

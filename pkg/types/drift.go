package types

import (
	"fmt"
	"time"
)

// DependencyEdge identifies one directed service-to-service call edge. Kept
// as a pair rather than a delimited string so service names containing the
// display separator cannot collide.
type DependencyEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// String renders the edge in the conventional report form.
func (e DependencyEdge) String() string {
	return e.Source + " -> " + e.Target
}

func (e DependencyEdge) less(other DependencyEdge) bool {
	if e.Source != other.Source {
		return e.Source < other.Source
	}
	return e.Target < other.Target
}

// EndpointRef identifies one endpoint owned by one service.
type EndpointRef struct {
	Service  string `json:"service"`
	Endpoint string `json:"endpoint"`
}

// String renders the reference in the conventional report form.
func (r EndpointRef) String() string {
	return r.Service + ":" + r.Endpoint
}

func (r EndpointRef) less(other EndpointRef) bool {
	if r.Service != other.Service {
		return r.Service < other.Service
	}
	return r.Endpoint < other.Endpoint
}

// Severity is the discrete tier derived from a drift score.
type Severity string

const (
	SeverityNoChange Severity = "NO_CHANGE"
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// IsValid checks if the Severity is a known tier.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityNoChange, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// RequiresAction reports whether the tier should gate a CI/CD pipeline.
func (s Severity) RequiresAction() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// ChangeSet is the result of comparing two architecture snapshots along the
// three identity facets, each split into added and removed. Initial marks the
// distinguished first-ever comparison: all facets empty, scored as zero
// without implying "no change occurred".
type ChangeSet struct {
	Initial             bool             `json:"initial_snapshot,omitempty"`
	ServicesAdded       []string         `json:"services_added"`
	ServicesRemoved     []string         `json:"services_removed"`
	DependenciesAdded   []DependencyEdge `json:"dependencies_added"`
	DependenciesRemoved []DependencyEdge `json:"dependencies_removed"`
	EndpointsAdded      []EndpointRef    `json:"endpoints_added"`
	EndpointsRemoved    []EndpointRef    `json:"endpoints_removed"`
}

// IsEmpty reports whether no changes are recorded in any facet.
func (c *ChangeSet) IsEmpty() bool {
	return len(c.ServicesAdded) == 0 && len(c.ServicesRemoved) == 0 &&
		len(c.DependenciesAdded) == 0 && len(c.DependenciesRemoved) == 0 &&
		len(c.EndpointsAdded) == 0 && len(c.EndpointsRemoved) == 0
}

// ChangeCount returns the total number of changes across all facets.
func (c *ChangeSet) ChangeCount() int {
	return len(c.ServicesAdded) + len(c.ServicesRemoved) +
		len(c.DependenciesAdded) + len(c.DependenciesRemoved) +
		len(c.EndpointsAdded) + len(c.EndpointsRemoved)
}

// DriftRecord is one history entry: the snapshot that was appended, its
// content hash, the change set against the predecessor, and the derived
// score and severity.
type DriftRecord struct {
	ID           string              `json:"id"`
	Timestamp    time.Time           `json:"timestamp"`
	Hash         string              `json:"hash"`
	Architecture *Architecture       `json:"architecture"`
	Changes      *ChangeSet          `json:"changes"`
	DriftScore   int                 `json:"drift_score"`
	Severity     Severity            `json:"severity"`
	Metrics      ArchitectureMetrics `json:"metrics"`
}

// Validate checks that the record is internally consistent.
func (r *DriftRecord) Validate() error {
	if r.Hash == "" {
		return fmt.Errorf("drift record hash cannot be empty")
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("drift record timestamp cannot be zero")
	}
	if r.Architecture == nil {
		return fmt.Errorf("drift record architecture cannot be nil")
	}
	if r.Changes == nil {
		return fmt.Errorf("drift record changes cannot be nil")
	}
	if r.DriftScore < 0 || r.DriftScore > 100 {
		return fmt.Errorf("drift score %d outside [0,100]", r.DriftScore)
	}
	if !r.Severity.IsValid() {
		return fmt.Errorf("invalid severity: %s", r.Severity)
	}
	return nil
}

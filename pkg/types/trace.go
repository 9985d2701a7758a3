package types

import (
	"errors"
	"strings"
	"time"
)

// Event is one observed unit of work inside a traced request. Service is the
// only field required for inference; Endpoint may be empty for internal work
// that never touched an API surface.
type Event struct {
	Service   string    `json:"service"`
	Endpoint  string    `json:"endpoint,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate checks that the event carries enough information to be inferred on.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Service) == "" {
		return errors.New("event service is required")
	}
	return nil
}

// Trace is the ordered sequence of events sharing one correlation ID. Order
// is significant: it is the only signal used for dependency inference. An
// empty trace is valid and contributes nothing to a discovery run.
type Trace struct {
	CorrelationID string  `json:"correlation_id"`
	JourneyName   string  `json:"journey_name,omitempty"`
	Events        []Event `json:"events"`
}

// IsEmpty reports whether the trace carries no events, typically because the
// fetch failed or the collector had nothing for this correlation ID.
func (t *Trace) IsEmpty() bool {
	return len(t.Events) == 0
}

// EventCount returns the number of events in the trace.
func (t *Trace) EventCount() int {
	return len(t.Events)
}

// EndpointCall records one endpoint invocation observed inside a journey.
type EndpointCall struct {
	Service   string    `json:"service"`
	Endpoint  string    `json:"endpoint"`
	Timestamp time.Time `json:"timestamp"`
}

// Journey summarizes one traced request flow: the first-occurrence service
// path and every endpoint call, in observed order. Journeys are informational
// only and never participate in snapshot identity or hashing.
type Journey struct {
	CorrelationID string         `json:"correlation_id"`
	JourneyName   string         `json:"journey_name,omitempty"`
	Services      []string       `json:"services"`
	Endpoints     []EndpointCall `json:"endpoints"`
	StartService  string         `json:"start_service,omitempty"`
	EndService    string         `json:"end_service,omitempty"`
	ServiceCount  int            `json:"service_count"`
}

// JourneyRef names a correlation ID to be discovered, as read from the
// journey catalog document.
type JourneyRef struct {
	Name          string `json:"name"`
	CorrelationID string `json:"correlation_id"`
}

// Validate checks the catalog entry.
func (j *JourneyRef) Validate() error {
	if strings.TrimSpace(j.CorrelationID) == "" {
		return errors.New("journey correlation_id is required")
	}
	return nil
}

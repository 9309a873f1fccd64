// Package observing collects traces of container activity: one span per
// handled event and one record per emitted state. Tracers are attached
// through the container's hook mechanism and never affect correctness.
package observing

import "time"

// An EventSpan represents the handling of one dispatched event, from the
// moment the handler starts until it completes.
type EventSpan struct {
	ID        string    `json:"id"`
	Container string    `json:"container"`
	Kind      string    `json:"kind"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Failed    bool      `json:"failed"`
}

// An Emission records one state emitted while a span was in flight.
type Emission struct {
	SpanID      string    `json:"span_id"`
	Container   string    `json:"container"`
	StateKind   string    `json:"state_kind"`
	Operation   string    `json:"operation,omitempty"`
	Progress    float64   `json:"progress,omitempty"`
	HasProgress bool      `json:"has_progress"`
	Time        time.Time `json:"time"`
}

// SpanFilter is a function that can filter interesting spans. If this
// function returns true, the span is considered useful.
type SpanFilter func(s EventSpan) bool

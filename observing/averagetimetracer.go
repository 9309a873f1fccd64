package observing

import (
	"sync"
	"time"
)

// AverageTimeTracer collects the average handling time of event spans. If
// the filter is nil, all spans are counted.
type AverageTimeTracer struct {
	filter SpanFilter

	lock          sync.Mutex
	totalTime     time.Duration
	inflightSpans map[string]EventSpan
	spanCount     uint64
}

// NewAverageTimeTracer creates a new AverageTimeTracer
func NewAverageTimeTracer(filter SpanFilter) *AverageTimeTracer {
	t := &AverageTimeTracer{
		filter:        filter,
		inflightSpans: make(map[string]EventSpan),
	}
	return t
}

// AverageTime returns the average time spent handling one event.
func (t *AverageTimeTracer) AverageTime() time.Duration {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.spanCount == 0 {
		return 0
	}

	return t.totalTime / time.Duration(t.spanCount)
}

// TotalCount returns the total number of completed spans.
func (t *AverageTimeTracer) TotalCount() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.spanCount
}

// StartSpan records the span start time
func (t *AverageTimeTracer) StartSpan(span EventSpan) {
	if t.filter != nil && !t.filter(span) {
		return
	}

	t.lock.Lock()
	t.inflightSpans[span.ID] = span
	t.lock.Unlock()
}

// RecordEmission does nothing
func (t *AverageTimeTracer) RecordEmission(_ Emission) {
	// Do nothing
}

// EndSpan records the end of the span
func (t *AverageTimeTracer) EndSpan(span EventSpan) {
	t.lock.Lock()
	defer t.lock.Unlock()

	original, ok := t.inflightSpans[span.ID]
	if !ok {
		return
	}

	delete(t.inflightSpans, span.ID)

	t.totalTime += span.EndTime.Sub(original.StartTime)
	t.spanCount++
}

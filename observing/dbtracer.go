package observing

import (
	"sync"
	"time"

	"github.com/gurkanfikretgunak/corestate/core"
	"github.com/gurkanfikretgunak/corestate/datarecording"
)

const (
	spanTableName     = "event_spans"
	emissionTableName = "state_emissions"
)

type spanTableEntry struct {
	ID        string
	Container string
	Kind      string
	StartTime float64
	EndTime   float64
	Failed    bool
}

type emissionTableEntry struct {
	SpanID      string
	Container   string
	StateKind   string
	Operation   string
	Progress    float64
	HasProgress bool
	Time        float64
}

// DBTracer is a tracer that stores spans and emissions into a database
// through a datarecording backend.
type DBTracer struct {
	mu         sync.Mutex
	timeTeller core.TimeTeller
	backend    datarecording.DataRecorder

	tracingSpans map[string]EventSpan
}

// NewDBTracer creates a new DBTracer and prepares its tables.
func NewDBTracer(
	timeTeller core.TimeTeller,
	backend datarecording.DataRecorder,
) *DBTracer {
	t := &DBTracer{
		timeTeller:   timeTeller,
		backend:      backend,
		tracingSpans: make(map[string]EventSpan),
	}

	backend.CreateTable(spanTableName, spanTableEntry{})
	backend.CreateTable(emissionTableName, emissionTableEntry{})

	return t
}

// StartSpan marks the start of an event span.
func (t *DBTracer) StartSpan(span EventSpan) {
	t.startingSpanMustBeValid(span)

	t.mu.Lock()
	t.tracingSpans[span.ID] = span
	t.mu.Unlock()
}

func (t *DBTracer) startingSpanMustBeValid(span EventSpan) {
	if span.ID == "" {
		panic("span ID must be set")
	}

	if span.Kind == "" {
		panic("span kind must be set")
	}

	if span.Container == "" {
		panic("span container must be set")
	}
}

// RecordEmission writes a state emission immediately.
func (t *DBTracer) RecordEmission(e Emission) {
	t.backend.InsertData(emissionTableName, emissionTableEntry{
		SpanID:      e.SpanID,
		Container:   e.Container,
		StateKind:   e.StateKind,
		Operation:   e.Operation,
		Progress:    e.Progress,
		HasProgress: e.HasProgress,
		Time:        timeToSeconds(e.Time),
	})
}

// EndSpan completes a span and writes it.
func (t *DBTracer) EndSpan(span EventSpan) {
	t.mu.Lock()
	original, ok := t.tracingSpans[span.ID]
	if !ok {
		t.mu.Unlock()
		return
	}

	delete(t.tracingSpans, span.ID)
	t.mu.Unlock()

	original.EndTime = span.EndTime
	original.Failed = span.Failed

	t.backend.InsertData(spanTableName, spanTableEntry{
		ID:        original.ID,
		Container: original.Container,
		Kind:      original.Kind,
		StartTime: timeToSeconds(original.StartTime),
		EndTime:   timeToSeconds(original.EndTime),
		Failed:    original.Failed,
	})
}

func timeToSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

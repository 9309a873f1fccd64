package observing

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// CSVTracer is a tracer that can store completed event spans into a CSV
// file. Emissions are not written; use the DBTracer for full emission logs.
type CSVTracer struct {
	path string
	file *os.File

	mu         sync.Mutex
	spans      []EventSpan
	bufferSize int
}

// NewCSVTracer creates a new CSVTracer.
func NewCSVTracer(path string) *CSVTracer {
	return &CSVTracer{
		path:       path,
		bufferSize: 1000,
	}
}

// Init creates the tracing csv file. The file must not already exist.
func (t *CSVTracer) Init() {
	if t.path == "" {
		t.path = "corestate_trace_" + xid.New().String()
	}

	filename := t.path + ".csv"
	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	file, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	t.file = file

	fmt.Fprintf(file, "ID, Container, Kind, Start, End, Failed\n")

	atexit.Register(func() {
		t.Flush()
		err := t.file.Close()
		if err != nil {
			panic(err)
		}
	})
}

// StartSpan does nothing; spans are written when they complete.
func (t *CSVTracer) StartSpan(_ EventSpan) {
	// Do nothing
}

// RecordEmission does nothing.
func (t *CSVTracer) RecordEmission(_ Emission) {
	// Do nothing
}

// EndSpan buffers a completed span for writing.
func (t *CSVTracer) EndSpan(span EventSpan) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.spans = append(t.spans, span)
	if len(t.spans) >= t.bufferSize {
		t.flushLocked()
	}
}

// Flush writes the buffered spans to the CSV file.
func (t *CSVTracer) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.flushLocked()
}

func (t *CSVTracer) flushLocked() {
	for _, span := range t.spans {
		fmt.Fprintf(t.file, "%s, %s, %s, %.6f, %.6f, %t\n",
			span.ID,
			span.Container,
			span.Kind,
			float64(span.StartTime.UnixNano())/1e9,
			float64(span.EndTime.UnixNano())/1e9,
			span.Failed,
		)
	}

	t.spans = nil
}

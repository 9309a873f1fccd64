package observing

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gurkanfikretgunak/corestate/core"
)

type capturingBackend struct {
	tables  map[string]any
	inserts map[string][]any
}

func newCapturingBackend() *capturingBackend {
	return &capturingBackend{
		tables:  make(map[string]any),
		inserts: make(map[string][]any),
	}
}

func (b *capturingBackend) CreateTable(tableName string, sampleEntry any) {
	b.tables[tableName] = sampleEntry
}

func (b *capturingBackend) InsertData(tableName string, entry any) {
	b.inserts[tableName] = append(b.inserts[tableName], entry)
}

func (b *capturingBackend) ListTables() []string {
	tables := make([]string, 0, len(b.tables))
	for table := range b.tables {
		tables = append(tables, table)
	}
	return tables
}

func (b *capturingBackend) Flush() {}

func (b *capturingBackend) Close() error { return nil }

var _ = Describe("DBTracer", func() {
	var (
		backend *capturingBackend
		tracer  *DBTracer
	)

	BeforeEach(func() {
		backend = newCapturingBackend()
		tracer = NewDBTracer(core.WallClock{}, backend)
	})

	It("should create its tables on construction", func() {
		Expect(backend.tables).To(HaveKey(spanTableName))
		Expect(backend.tables).To(HaveKey(emissionTableName))
	})

	It("should write a span when it completes", func() {
		start := time.Now()
		span := EventSpan{
			ID:        "1",
			Container: "C",
			Kind:      string(core.KindLoadData),
			StartTime: start,
		}

		tracer.StartSpan(span)
		Expect(backend.inserts[spanTableName]).To(BeEmpty())

		span.EndTime = start.Add(time.Millisecond)
		tracer.EndSpan(span)

		Expect(backend.inserts[spanTableName]).To(HaveLen(1))
		entry := backend.inserts[spanTableName][0].(spanTableEntry)
		Expect(entry.ID).To(Equal("1"))
		Expect(entry.Kind).To(Equal(string(core.KindLoadData)))
		Expect(entry.EndTime).To(BeNumerically(">", entry.StartTime))
	})

	It("should ignore ending a span that never started", func() {
		tracer.EndSpan(EventSpan{ID: "ghost"})

		Expect(backend.inserts[spanTableName]).To(BeEmpty())
	})

	It("should write emissions immediately", func() {
		tracer.RecordEmission(Emission{
			SpanID:      "1",
			Container:   "C",
			StateKind:   string(core.KindLoading),
			Operation:   "Updating data...",
			Progress:    0.4,
			HasProgress: true,
			Time:        time.Now(),
		})

		Expect(backend.inserts[emissionTableName]).To(HaveLen(1))
		entry := backend.inserts[emissionTableName][0].(emissionTableEntry)
		Expect(entry.Progress).To(BeNumerically("~", 0.4, 1e-9))
		Expect(entry.HasProgress).To(BeTrue())
	})

	It("should panic on a span without an ID", func() {
		Expect(func() {
			tracer.StartSpan(EventSpan{Container: "C", Kind: "LoadData"})
		}).To(Panic())
	})
})

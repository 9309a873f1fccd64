package observing

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gurkanfikretgunak/corestate/core"
	"github.com/gurkanfikretgunak/corestate/datarecording"
)

var _ = Describe("TraceReader", func() {
	var reader *TraceReader

	BeforeEach(func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace")

		recorder := datarecording.New(path)
		tracer := NewDBTracer(core.WallClock{}, recorder)

		start := time.Now()
		writeSpan(tracer, "1", "C1", string(core.KindLoadData),
			start, false)
		writeSpan(tracer, "2", "C1", string(core.KindUpdateData),
			start.Add(time.Millisecond), true)
		writeSpan(tracer, "3", "C2", string(core.KindLoadData),
			start.Add(2*time.Millisecond), false)

		tracer.RecordEmission(Emission{
			SpanID:      "2",
			Container:   "C1",
			StateKind:   string(core.KindLoading),
			Operation:   "Updating data...",
			Progress:    0.2,
			HasProgress: true,
			Time:        start,
		})
		tracer.RecordEmission(Emission{
			SpanID:    "2",
			Container: "C1",
			StateKind: string(core.KindError),
			Time:      start.Add(time.Millisecond),
		})

		Expect(recorder.Close()).To(Succeed())

		reader = NewTraceReader(path + ".sqlite3")
	})

	AfterEach(func() {
		Expect(reader.Close()).To(Succeed())
	})

	It("should list the containers that recorded spans", func() {
		Expect(reader.ListContainers()).To(Equal([]string{"C1", "C2"}))
	})

	It("should return spans oldest first", func() {
		spans := reader.ListSpans(SpanQuery{})

		Expect(spans).To(HaveLen(3))
		Expect(spans[0].ID).To(Equal("1"))
		Expect(spans[1].ID).To(Equal("2"))
		Expect(spans[2].ID).To(Equal("3"))
		Expect(spans[1].EndTime.After(spans[1].StartTime)).To(BeTrue())
	})

	It("should filter spans by container and kind", func() {
		spans := reader.ListSpans(SpanQuery{
			Container: "C1",
			Kind:      string(core.KindLoadData),
		})

		Expect(spans).To(HaveLen(1))
		Expect(spans[0].ID).To(Equal("1"))
	})

	It("should filter failed spans", func() {
		spans := reader.ListSpans(SpanQuery{FailedOnly: true})

		Expect(spans).To(HaveLen(1))
		Expect(spans[0].ID).To(Equal("2"))
		Expect(spans[0].Failed).To(BeTrue())
	})

	It("should cap the number of returned spans", func() {
		Expect(reader.ListSpans(SpanQuery{Limit: 2})).To(HaveLen(2))
	})

	It("should read the emissions of a span in order", func() {
		emissions := reader.ListEmissions("2")

		Expect(emissions).To(HaveLen(2))
		Expect(emissions[0].StateKind).To(Equal(string(core.KindLoading)))
		Expect(emissions[0].Progress).To(BeNumerically("~", 0.2, 1e-9))
		Expect(emissions[0].HasProgress).To(BeTrue())
		Expect(emissions[1].StateKind).To(Equal(string(core.KindError)))
	})
})

func writeSpan(
	tracer *DBTracer,
	id, container, kind string,
	start time.Time,
	failed bool,
) {
	span := EventSpan{
		ID:        id,
		Container: container,
		Kind:      kind,
		StartTime: start,
	}
	tracer.StartSpan(span)

	span.EndTime = start.Add(time.Millisecond)
	span.Failed = failed
	tracer.EndSpan(span)
}

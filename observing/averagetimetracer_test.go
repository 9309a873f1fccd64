package observing

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AverageTimeTracer", func() {
	It("should average the duration of completed spans", func() {
		tracer := NewAverageTimeTracer(nil)

		start := time.Now()

		tracer.StartSpan(EventSpan{ID: "1", StartTime: start})
		tracer.EndSpan(EventSpan{
			ID:      "1",
			EndTime: start.Add(10 * time.Millisecond),
		})

		tracer.StartSpan(EventSpan{ID: "2", StartTime: start})
		tracer.EndSpan(EventSpan{
			ID:      "2",
			EndTime: start.Add(20 * time.Millisecond),
		})

		Expect(tracer.TotalCount()).To(Equal(uint64(2)))
		Expect(tracer.AverageTime()).To(Equal(15 * time.Millisecond))
	})

	It("should skip spans rejected by the filter", func() {
		tracer := NewAverageTimeTracer(func(s EventSpan) bool {
			return s.Kind == "UpdateData"
		})

		start := time.Now()

		tracer.StartSpan(EventSpan{ID: "1", Kind: "LoadData", StartTime: start})
		tracer.EndSpan(EventSpan{
			ID:      "1",
			Kind:    "LoadData",
			EndTime: start.Add(10 * time.Millisecond),
		})

		Expect(tracer.TotalCount()).To(Equal(uint64(0)))
	})

	It("should report zero average with no spans", func() {
		tracer := NewAverageTimeTracer(nil)

		Expect(tracer.AverageTime()).To(Equal(time.Duration(0)))
	})
})

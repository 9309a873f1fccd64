package observing

import (
	"log"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gurkanfikretgunak/corestate/core"
)

type collectingTracer struct {
	mu        sync.Mutex
	started   []EventSpan
	ended     []EventSpan
	emissions []Emission
}

func (t *collectingTracer) StartSpan(span EventSpan) {
	t.mu.Lock()
	t.started = append(t.started, span)
	t.mu.Unlock()
}

func (t *collectingTracer) RecordEmission(e Emission) {
	t.mu.Lock()
	t.emissions = append(t.emissions, e)
	t.mu.Unlock()
}

func (t *collectingTracer) EndSpan(span EventSpan) {
	t.mu.Lock()
	t.ended = append(t.ended, span)
	t.mu.Unlock()
}

func (t *collectingTracer) endedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.ended)
}

var _ = Describe("CollectTrace", func() {
	var (
		container *core.Container
		tracer    *collectingTracer
	)

	BeforeEach(func() {
		container = core.MakeContainerBuilder().
			WithName("TracedContainer").
			WithLoadDuration(time.Millisecond).
			WithUpdateDuration(5 * time.Millisecond).
			WithLogger(log.New(GinkgoWriter, "", 0)).
			Build()
		tracer = &collectingTracer{}

		CollectTrace(container, tracer, core.WallClock{})
	})

	AfterEach(func() {
		container.Dispose()
	})

	It("should trace the span of a load event", func() {
		container.Dispatch(core.NewLoadDataEventWithData("abc"))

		Eventually(tracer.endedCount, "2s").Should(Equal(1))

		tracer.mu.Lock()
		defer tracer.mu.Unlock()

		span := tracer.ended[0]
		Expect(span.Container).To(Equal("TracedContainer"))
		Expect(span.Kind).To(Equal(string(core.KindLoadData)))
		Expect(span.Failed).To(BeFalse())
		Expect(span.EndTime.Before(span.StartTime)).To(BeFalse())

		Expect(tracer.started).To(HaveLen(1))
		Expect(tracer.started[0].ID).To(Equal(span.ID))
	})

	It("should stamp emissions with the in-flight span ID", func() {
		container.Dispatch(core.NewLoadDataEventWithData("abc"))

		Eventually(tracer.endedCount, "2s").Should(Equal(1))

		tracer.mu.Lock()
		defer tracer.mu.Unlock()

		Expect(tracer.emissions).ToNot(BeEmpty())

		kinds := []string{}
		for _, e := range tracer.emissions {
			Expect(e.SpanID).To(Equal(tracer.ended[0].ID))
			kinds = append(kinds, e.StateKind)
		}

		Expect(kinds[0]).To(Equal(string(core.KindLoading)))
		Expect(kinds[len(kinds)-1]).To(Equal(string(core.KindLoaded)))
	})

	It("should record update progress on emissions", func() {
		container.Dispatch(core.UpdateDataEvent{Data: "abc"})

		Eventually(tracer.endedCount, "2s").Should(Equal(1))

		tracer.mu.Lock()
		defer tracer.mu.Unlock()

		withProgress := 0
		for _, e := range tracer.emissions {
			if e.HasProgress {
				withProgress++
			}
		}

		Expect(withProgress).To(BeNumerically(">", 1))
	})

	It("should panic when the same tracer is attached twice", func() {
		Expect(func() {
			CollectTrace(container, tracer, core.WallClock{})
		}).To(Panic())
	})
})

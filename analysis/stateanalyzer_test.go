package analysis

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	gomock "go.uber.org/mock/gomock"

	"github.com/gurkanfikretgunak/corestate/core"
)

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time {
	return c.now
}

type analyzedDomain struct {
	core.HookableBase
	name string
}

func (d *analyzedDomain) Name() string {
	return d.name
}

var _ = Describe("StateAnalyzer", func() {
	var (
		mockCtrl *gomock.Controller
		clock    *manualClock
		logger   *MockPerfLogger
		domain   *analyzedDomain
		t0       time.Time
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		t0 = time.Unix(1000, 0)
		clock = &manualClock{now: t0}
		logger = NewMockPerfLogger(mockCtrl)
		domain = &analyzedDomain{name: "C1"}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	emit := func(analyzer *StateAnalyzer, state core.State) {
		analyzer.Func(core.HookCtx{
			Domain: domain,
			Pos:    core.HookPosStateEmit,
			Item:   state,
		})
	}

	It("should report dwell time per state kind", func() {
		analyzer := MakeStateAnalyzerBuilder().
			WithPerfLogger(logger).
			WithTimeTeller(clock).
			WithContainer(domain).
			Build()

		clock.now = t0.Add(100 * time.Millisecond)
		emit(analyzer, core.LoadingState{Operation: "Loading data..."})

		clock.now = t0.Add(150 * time.Millisecond)
		logger.EXPECT().AddDataEntry(PerfAnalyzerEntry{
			Start:     timeToSeconds(t0),
			End:       timeToSeconds(clock.now),
			Where:     "C1",
			What:      string(core.KindInitial),
			EntryType: "StateDwell",
			Value:     (100 * time.Millisecond).Seconds(),
			Unit:      "s",
		})
		logger.EXPECT().AddDataEntry(PerfAnalyzerEntry{
			Start:     timeToSeconds(t0),
			End:       timeToSeconds(clock.now),
			Where:     "C1",
			What:      string(core.KindLoading),
			EntryType: "StateDwell",
			Value:     (50 * time.Millisecond).Seconds(),
			Unit:      "s",
		})

		analyzer.Summarize()
	})

	It("should summarize completed periods", func() {
		analyzer := MakeStateAnalyzerBuilder().
			WithPerfLogger(logger).
			WithTimeTeller(clock).
			WithContainer(domain).
			WithPeriod(time.Second).
			Build()

		clock.now = t0.Add(100 * time.Millisecond)
		emit(analyzer, core.LoadingState{Operation: "Loading data..."})

		clock.now = t0.Add(1100 * time.Millisecond)
		logger.EXPECT().AddDataEntry(PerfAnalyzerEntry{
			Start:     timeToSeconds(t0),
			End:       timeToSeconds(t0.Add(time.Second)),
			Where:     "C1",
			What:      string(core.KindInitial),
			EntryType: "StateDwell",
			Value:     (100 * time.Millisecond).Seconds(),
			Unit:      "s",
		})
		logger.EXPECT().AddDataEntry(PerfAnalyzerEntry{
			Start:     timeToSeconds(t0),
			End:       timeToSeconds(t0.Add(time.Second)),
			Where:     "C1",
			What:      string(core.KindLoading),
			EntryType: "StateDwell",
			Value:     (900 * time.Millisecond).Seconds(),
			Unit:      "s",
		})

		emit(analyzer, core.LoadedState{Data: "abc"})
	})
})

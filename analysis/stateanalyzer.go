package analysis

import (
	"sync"
	"time"

	"github.com/tebeka/atexit"

	"github.com/gurkanfikretgunak/corestate/core"
)

// StateAnalyzer records how long a container dwells in each state kind.
type StateAnalyzer struct {
	PerfLogger
	core.TimeTeller

	container core.Named
	usePeriod bool
	period    time.Duration

	lock           sync.Mutex
	startTime      time.Time
	lastTime       time.Time
	lastKind       core.StateKind
	kindToDuration map[core.StateKind]time.Duration
}

// Func is a function that records state changes.
func (a *StateAnalyzer) Func(ctx core.HookCtx) {
	if ctx.Pos != core.HookPosStateEmit {
		return
	}

	now := a.Now()
	state := ctx.Item.(core.State)

	a.lock.Lock()
	defer a.lock.Unlock()

	if a.usePeriod {
		lastPeriodEndTime := a.periodEndTime(a.lastTime)

		if now.After(lastPeriodEndTime) {
			a.summarize()
		}
	}

	a.kindToDuration[a.lastKind] += now.Sub(a.lastTime)
	a.lastKind = state.StateKind()
	a.lastTime = now
}

// Summarize flushes the dwell times accumulated so far to the performance
// logger.
func (a *StateAnalyzer) Summarize() {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.summarize()
}

func (a *StateAnalyzer) summarize() {
	now := a.Now()

	if !a.usePeriod {
		a.summarizePeriod(now, a.startTime, now)
		a.kindToDuration = make(map[core.StateKind]time.Duration)
		a.lastTime = now
		return
	}

	periodStartTime := a.periodStartTime(a.lastTime)
	periodEndTime := a.periodEndTime(a.lastTime)

	for periodEndTime.Before(now) {
		a.summarizePeriod(now, periodStartTime, periodEndTime)

		a.kindToDuration = make(map[core.StateKind]time.Duration)
		a.lastTime = periodEndTime
		periodStartTime = periodEndTime
		periodEndTime = periodStartTime.Add(a.period)
	}
}

func (a *StateAnalyzer) summarizePeriod(
	now, periodStartTime, periodEndTime time.Time,
) {
	durations := make(
		map[core.StateKind]time.Duration, len(a.kindToDuration))
	for kind, duration := range a.kindToDuration {
		durations[kind] = duration
	}

	summarizeEndTime := minTime(periodEndTime, now)
	if summarizeEndTime.After(a.lastTime) {
		durations[a.lastKind] += summarizeEndTime.Sub(a.lastTime)
	}

	for kind, duration := range durations {
		if duration == 0 {
			continue
		}

		a.PerfLogger.AddDataEntry(PerfAnalyzerEntry{
			Start:     timeToSeconds(periodStartTime),
			End:       timeToSeconds(summarizeEndTime),
			Where:     a.container.Name(),
			What:      string(kind),
			EntryType: "StateDwell",
			Value:     duration.Seconds(),
			Unit:      "s",
		})
	}
}

func (a *StateAnalyzer) periodStartTime(t time.Time) time.Time {
	return t.Truncate(a.period)
}

func (a *StateAnalyzer) periodEndTime(t time.Time) time.Time {
	return a.periodStartTime(t).Add(a.period)
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}

	return b
}

func timeToSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// StateAnalyzerBuilder can build a StateAnalyzer.
type StateAnalyzerBuilder struct {
	perfLogger PerfLogger
	timeTeller core.TimeTeller
	usePeriod  bool
	period     time.Duration
	container  core.NamedHookable
}

// MakeStateAnalyzerBuilder creates a StateAnalyzerBuilder.
func MakeStateAnalyzerBuilder() StateAnalyzerBuilder {
	return StateAnalyzerBuilder{}
}

// WithPerfLogger sets the PerfLogger to use.
func (b StateAnalyzerBuilder) WithPerfLogger(
	perfLogger PerfLogger,
) StateAnalyzerBuilder {
	b.perfLogger = perfLogger
	return b
}

// WithTimeTeller sets the TimeTeller to use.
func (b StateAnalyzerBuilder) WithTimeTeller(
	timeTeller core.TimeTeller,
) StateAnalyzerBuilder {
	b.timeTeller = timeTeller
	return b
}

// WithPeriod makes the analyzer summarize dwell times periodically rather
// than only at exit.
func (b StateAnalyzerBuilder) WithPeriod(
	period time.Duration,
) StateAnalyzerBuilder {
	b.usePeriod = true
	b.period = period
	return b
}

// WithContainer sets the container to analyze.
func (b StateAnalyzerBuilder) WithContainer(
	container core.NamedHookable,
) StateAnalyzerBuilder {
	b.container = container
	return b
}

// Build creates a StateAnalyzer and attaches it to the container.
func (b StateAnalyzerBuilder) Build() *StateAnalyzer {
	if b.perfLogger == nil {
		panic("perfLogger is not set")
	}

	if b.timeTeller == nil {
		panic("timeTeller is not set")
	}

	if b.container == nil {
		panic("container is not set")
	}

	now := b.timeTeller.Now()
	analyzer := &StateAnalyzer{
		PerfLogger:     b.perfLogger,
		TimeTeller:     b.timeTeller,
		container:      b.container,
		usePeriod:      b.usePeriod,
		period:         b.period,
		startTime:      now,
		lastTime:       now,
		lastKind:       core.KindInitial,
		kindToDuration: make(map[core.StateKind]time.Duration),
	}

	b.container.AcceptHook(analyzer)

	atexit.Register(func() {
		analyzer.Summarize()
	})

	return analyzer
}

package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// DefaultData is the deterministic literal substituted when a load resolves
// with no usable data.
const DefaultData = "Default Core Widget Data"

const updateProgressSteps = 5

// An Operation performs the actual work behind a load or update. The default
// operations simulate latency; callers can substitute real I/O. The context
// is cancelled when the container is disposed, but the container never
// abandons a running operation on its own.
type Operation func(ctx context.Context, data string) (string, error)

// An Observer is a callback invoked synchronously with every newly emitted
// state, in emission order.
type Observer func(s State)

// A Container holds the current immutable state snapshot and transitions it
// strictly via dispatched events. All handler execution happens on the
// container's single dispatcher goroutine, so the cache slot and metrics are
// only ever mutated from there. The cache slot is still lock-guarded; it is
// read from other goroutines through CachedData.
type Container struct {
	HookableBase

	name       string
	logger     *log.Logger
	timeTeller TimeTeller

	dispatcher *Dispatcher

	stateLock    sync.RWMutex
	currentState State

	stampLock sync.Mutex
	lastStamp time.Time

	cacheLock sync.Mutex
	cache     string
	hasCache  bool

	metrics *OperationMetrics

	loadOp         Operation
	updateOp       Operation
	loadDuration   time.Duration
	updateDuration time.Duration
	trimInput      bool

	opCtx       context.Context
	opCancel    context.CancelFunc
	disposeOnce sync.Once
}

// Name returns the name of the container.
func (c *Container) Name() string {
	return c.name
}

// Dispatch enqueues an event for processing. It returns immediately; the
// outcome is observed through the emitted state stream, never through an
// error returned to the caller.
func (c *Container) Dispatch(e Event) {
	c.dispatcher.Dispatch(e)
}

// CurrentState returns the latest emitted state snapshot. It never blocks
// and is always defined; a freshly built container reports InitialState.
func (c *Container) CurrentState() State {
	c.stateLock.RLock()
	defer c.stateLock.RUnlock()

	return c.currentState
}

// Subscribe registers an observer that is invoked synchronously with every
// newly emitted state. It returns an unsubscribe handle.
func (c *Container) Subscribe(o Observer) (unsubscribe func()) {
	h := &observerHook{observe: o}
	c.AcceptHook(h)

	return func() {
		c.DetachHook(h)
	}
}

// Metrics returns the operation counters of the container.
func (c *Container) Metrics() *OperationMetrics {
	return c.metrics
}

// CachedData returns the content of the cache slot and whether the slot is
// occupied.
func (c *Container) CachedData() (string, bool) {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()

	return c.cache, c.hasCache
}

func (c *Container) setCache(data string) {
	c.cacheLock.Lock()
	c.cache = data
	c.hasCache = true
	c.cacheLock.Unlock()
}

func (c *Container) clearCache() {
	c.cacheLock.Lock()
	c.cache = ""
	c.hasCache = false
	c.cacheLock.Unlock()
}

// Pause stops the container from processing further events. Dispatched
// events queue up until Continue is called.
func (c *Container) Pause() {
	c.dispatcher.Pause()
}

// Continue resumes event processing after a Pause.
func (c *Container) Continue() {
	c.dispatcher.Continue()
}

// Pending returns the number of events waiting to be processed.
func (c *Container) Pending() int {
	return c.dispatcher.Pending()
}

// Dispose stops the container. The in-flight handler, if any, runs to
// completion; queued events are discarded, observers are released, and the
// final metrics are flushed to the logger. Events dispatched after Dispose
// are dropped.
func (c *Container) Dispose() {
	c.disposeOnce.Do(func() {
		c.opCancel()
		c.dispatcher.Stop()
		c.flushMetrics()
		c.ClearHooks()
	})
}

// Handle processes one event. It is invoked by the container's dispatcher
// and must not be called directly. Any failure, including a panic in an
// operation, is converted into an ErrorState emission.
func (c *Container) Handle(e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			failure := OperationFailure{
				Op:  string(e.Kind()),
				Err: fmt.Errorf("%v", r),
			}
			c.failOperation(failure)
			err = failure
		}
	}()

	switch evt := e.(type) {
	case LoadDataEvent:
		return c.handleLoadData(evt)
	case UpdateDataEvent:
		return c.handleUpdateData(evt)
	case ResetDataEvent:
		return c.handleResetData(evt)
	default:
		log.Panicf("container %s cannot handle event of kind %s",
			c.name, e.Kind())
	}

	return nil
}

func (c *Container) handleLoadData(e LoadDataEvent) error {
	// Read-through cache short-circuit. No Loading state is emitted on this
	// path.
	if !e.ForceReload && !e.HasData {
		if cached, ok := c.CachedData(); ok {
			now := c.stampNow()
			c.emit(LoadedState{
				Data: cached,
				Metadata: map[string]any{
					"source":    "cache",
					"cached_at": now,
				},
				Timestamp: now,
			})

			return nil
		}
	}

	c.emit(LoadingState{Operation: "Loading data..."})

	start := c.timeTeller.Now()

	input := ""
	if e.HasData {
		input = e.Data
	}

	loaded, err := c.loadOp(c.opCtx, input)
	if err != nil {
		return c.failOperation(OperationFailure{Op: MetricLoad, Err: err})
	}

	resolved := c.resolveData(loaded)

	if err := Validate(resolved); err != nil {
		return c.failOperation(err)
	}

	c.setCache(resolved)

	count := c.metrics.Increment(MetricLoad)
	c.emit(LoadedState{
		Data:      resolved,
		Metadata:  c.operationMetadata(MetricLoad, start, count),
		Timestamp: c.stampNow(),
	})

	return nil
}

func (c *Container) handleUpdateData(e UpdateDataEvent) error {
	// The size ceiling applies to every update; ValidateData only controls
	// the empty-data check.
	if len(e.Data) > DataSizeLimit {
		return c.failOperation(TooLongError{Length: len(e.Data)})
	}

	if e.ValidateData {
		if err := Validate(e.Data); err != nil {
			return c.failOperation(err)
		}
	}

	zero := 0.0
	c.emit(LoadingState{Operation: "Updating data...", Progress: &zero})

	start := c.timeTeller.Now()

	// Observers must see monotonically increasing progress, not a single
	// jump.
	stepInterval := c.updateDuration / updateProgressSteps
	for i := 1; i <= updateProgressSteps; i++ {
		time.Sleep(stepInterval)

		progress := float64(i) / updateProgressSteps
		c.emit(LoadingState{
			Operation: "Updating data...",
			Progress:  &progress,
		})
	}

	updated, err := c.updateOp(c.opCtx, e.Data)
	if err != nil {
		return c.failOperation(OperationFailure{Op: MetricUpdate, Err: err})
	}

	c.setCache(updated)

	count := c.metrics.Increment(MetricUpdate)
	c.emit(LoadedState{
		Data:      updated,
		Metadata:  c.operationMetadata(MetricUpdate, start, count),
		Timestamp: c.stampNow(),
	})

	return nil
}

func (c *Container) handleResetData(e ResetDataEvent) error {
	if e.ClearCache {
		c.clearCache()
	}

	c.emit(InitialState{})
	c.metrics.Increment(MetricReset)

	return nil
}

func (c *Container) failOperation(err error) error {
	c.metrics.Increment(MetricErrors)
	c.emit(ErrorState{
		Message:   err.Error(),
		ErrorCode: ClassifyError(err),
		Timestamp: c.stampNow(),
	})

	return err
}

// resolveData substitutes the default literal when the data is absent or
// blank after trimming. Trimming of non-blank data is caller-configurable.
func (c *Container) resolveData(data string) string {
	if strings.TrimSpace(data) == "" {
		return DefaultData
	}

	if c.trimInput {
		return strings.TrimSpace(data)
	}

	return data
}

func (c *Container) operationMetadata(
	op string,
	start time.Time,
	count uint64,
) map[string]any {
	return map[string]any{
		"operation":       op,
		"duration_ms":     c.timeTeller.Now().Sub(start).Milliseconds(),
		"operation_count": count,
		"cache_available": true,
	}
}

func (c *Container) emit(s State) {
	c.stateLock.Lock()
	c.currentState = s
	c.stateLock.Unlock()

	c.InvokeHook(HookCtx{
		Domain: c,
		Pos:    HookPosStateEmit,
		Item:   s,
	})
}

// stampNow returns the current time, clamped so that emitted timestamps
// never decrease within one container.
func (c *Container) stampNow() time.Time {
	c.stampLock.Lock()
	defer c.stampLock.Unlock()

	now := c.timeTeller.Now()
	if now.Before(c.lastStamp) {
		now = c.lastStamp
	}
	c.lastStamp = now

	return now
}

func (c *Container) flushMetrics() {
	snapshot := c.metrics.Snapshot()
	c.logger.Printf(
		"container %s disposed, final metrics: load=%d update=%d reset=%d errors=%d",
		c.name,
		snapshot[MetricLoad],
		snapshot[MetricUpdate],
		snapshot[MetricReset],
		snapshot[MetricErrors],
	)
}

type observerHook struct {
	observe Observer
}

func (h *observerHook) Func(ctx HookCtx) {
	if ctx.Pos != HookPosStateEmit {
		return
	}

	h.observe(ctx.Item.(State))
}

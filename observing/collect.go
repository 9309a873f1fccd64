package observing

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/gurkanfikretgunak/corestate/core"
)

// CollectTrace lets the tracer collect traces from a container. Attaching
// the same tracer to a domain twice is a programming error.
func CollectTrace(
	domain core.NamedHookable,
	tracer Tracer,
	timeTeller core.TimeTeller,
) {
	hookable, ok := domain.(interface{ Hooks() []core.Hook })
	if ok {
		for _, hook := range hookable.Hooks() {
			hook, isTraceHook := hook.(*traceHook)
			if isTraceHook && hook.t == tracer {
				panic(fmt.Sprintf(
					"domain %s already has tracer %s",
					domain.Name(), reflect.TypeOf(tracer)))
			}
		}
	}

	h := &traceHook{
		t:          tracer,
		timeTeller: timeTeller,
	}
	domain.AcceptHook(h)
}

// A traceHook is a hook that translates the container's hook positions into
// tracer calls.
type traceHook struct {
	t          Tracer
	timeTeller core.TimeTeller

	mu           sync.Mutex
	inflightSpan EventSpan
	spanInFlight bool
}

// Func calls the tracer interfaces when the hook is triggered
func (h *traceHook) Func(ctx core.HookCtx) {
	switch ctx.Pos {
	case core.HookPosBeforeEvent:
		h.startSpan(ctx)
	case core.HookPosStateEmit:
		h.recordEmission(ctx)
	case core.HookPosAfterEvent:
		h.endSpan(ctx)
	}
}

func (h *traceHook) startSpan(ctx core.HookCtx) {
	evt := ctx.Item.(*core.QueuedEvent)
	name := domainName(ctx.Domain)

	span := EventSpan{
		ID:        evt.ID,
		Container: name,
		Kind:      string(evt.Event.Kind()),
		StartTime: h.timeTeller.Now(),
	}

	h.mu.Lock()
	h.inflightSpan = span
	h.spanInFlight = true
	h.mu.Unlock()

	h.t.StartSpan(span)
}

func (h *traceHook) recordEmission(ctx core.HookCtx) {
	state := ctx.Item.(core.State)

	h.mu.Lock()
	spanID := ""
	if h.spanInFlight {
		spanID = h.inflightSpan.ID
	}
	h.mu.Unlock()

	emission := Emission{
		SpanID:    spanID,
		Container: domainName(ctx.Domain),
		StateKind: string(state.StateKind()),
		Time:      h.timeTeller.Now(),
	}

	if loading, ok := state.(core.LoadingState); ok {
		emission.Operation = loading.Operation
		if loading.Progress != nil {
			emission.Progress = *loading.Progress
			emission.HasProgress = true
		}
	}

	h.t.RecordEmission(emission)
}

func (h *traceHook) endSpan(ctx core.HookCtx) {
	h.mu.Lock()
	span := h.inflightSpan
	h.spanInFlight = false
	h.mu.Unlock()

	span.EndTime = h.timeTeller.Now()
	span.Failed = ctx.Detail != nil

	h.t.EndSpan(span)
}

func domainName(domain core.Hookable) string {
	if named, ok := domain.(core.Named); ok {
		return named.Name()
	}

	return ""
}

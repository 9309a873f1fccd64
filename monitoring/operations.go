package monitoring

import (
	"sort"
	"sync"
	"time"

	"github.com/gurkanfikretgunak/corestate/core"
)

// OperationProgress describes one in-flight operation of a container.
type OperationProgress struct {
	Container   string    `json:"container"`
	Operation   string    `json:"operation"`
	Progress    float64   `json:"progress"`
	HasProgress bool      `json:"has_progress"`
	StartTime   time.Time `json:"start_time"`
}

// An OperationTracker is a hook that follows Loading emissions to maintain
// the set of operations currently in flight across the registered
// containers.
type OperationTracker struct {
	sync.Mutex
	operations map[string]OperationProgress
}

// NewOperationTracker creates a new OperationTracker.
func NewOperationTracker() *OperationTracker {
	return &OperationTracker{
		operations: make(map[string]OperationProgress),
	}
}

// Func updates the tracked operations on every state emission.
func (t *OperationTracker) Func(ctx core.HookCtx) {
	if ctx.Pos != core.HookPosStateEmit {
		return
	}

	named, ok := ctx.Domain.(core.Named)
	if !ok {
		return
	}
	name := named.Name()

	state := ctx.Item.(core.State)

	t.Lock()
	defer t.Unlock()

	loading, isLoading := state.(core.LoadingState)
	if !isLoading {
		delete(t.operations, name)
		return
	}

	op, exists := t.operations[name]
	if !exists {
		op = OperationProgress{
			Container: name,
			StartTime: time.Now(),
		}
	}

	op.Operation = loading.Operation
	if loading.Progress != nil {
		op.Progress = *loading.Progress
		op.HasProgress = true
	}

	t.operations[name] = op
}

// List returns the in-flight operations sorted by container name.
func (t *OperationTracker) List() []OperationProgress {
	t.Lock()
	defer t.Unlock()

	operations := make([]OperationProgress, 0, len(t.operations))
	for _, op := range t.operations {
		operations = append(operations, op)
	}

	sort.Slice(operations, func(i, j int) bool {
		return operations[i].Container < operations[j].Container
	})

	return operations
}

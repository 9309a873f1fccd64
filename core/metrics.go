package core

import "sync"

// The operation names counted by OperationMetrics.
const (
	MetricLoad   = "load"
	MetricUpdate = "update"
	MetricReset  = "reset"
	MetricErrors = "errors"
)

// OperationMetrics counts the operations a container has performed. Counters
// only grow; they are reset only by an explicit Clear call. The counters are
// observability data and never drive control flow.
type OperationMetrics struct {
	lock   sync.Mutex
	counts map[string]uint64
}

// NewOperationMetrics creates an OperationMetrics with all counters at zero.
func NewOperationMetrics() *OperationMetrics {
	m := new(OperationMetrics)
	m.counts = make(map[string]uint64)
	return m
}

// Increment adds one to the counter for the given operation and returns the
// new value.
func (m *OperationMetrics) Increment(op string) uint64 {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.counts[op]++
	return m.counts[op]
}

// Count returns the current value of the counter for the given operation.
func (m *OperationMetrics) Count(op string) uint64 {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.counts[op]
}

// Snapshot returns a copy of all the counters.
func (m *OperationMetrics) Snapshot() map[string]uint64 {
	m.lock.Lock()
	defer m.lock.Unlock()

	snapshot := make(map[string]uint64, len(m.counts))
	for op, count := range m.counts {
		snapshot[op] = count
	}

	return snapshot
}

// Clear resets all the counters to zero.
func (m *OperationMetrics) Clear() {
	m.lock.Lock()
	m.counts = make(map[string]uint64)
	m.lock.Unlock()
}

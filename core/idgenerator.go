package core

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// An IDGenerator produces the identifiers that a dispatcher stamps on queued
// events, and the names of containers built without one.
type IDGenerator interface {
	// Generate returns the next ID.
	Generate() string
}

// NewSequentialIDGenerator creates a generator that counts up from 1. Each
// dispatcher owns its own, so event IDs are deterministic per container and
// stable across runs, which keeps recorded traces comparable.
func NewSequentialIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	return strconv.FormatUint(atomic.AddUint64(&g.nextID, 1), 10)
}

// NewUniqueIDGenerator creates a generator whose IDs are unique across all
// generators in the process. Use it when spans from multiple containers land
// in one shared store and per-container sequence numbers would collide.
func NewUniqueIDGenerator() IDGenerator {
	return uniqueIDGenerator{}
}

type uniqueIDGenerator struct{}

func (uniqueIDGenerator) Generate() string {
	return xid.New().String()
}

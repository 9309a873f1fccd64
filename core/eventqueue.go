package core

import (
	"container/list"
	"sync"
	"time"
)

// A QueuedEvent is an event together with the identity it acquires when it
// enters a dispatcher queue.
type QueuedEvent struct {
	ID         string
	Event      Event
	EnqueuedAt time.Time
}

// EventQueue is a thread-safe first-in-first-out queue of events awaiting
// processing. Events are ordered strictly by submission.
type EventQueue interface {
	Push(evt *QueuedEvent)
	Pop() *QueuedEvent
	Len() int
	Peek() *QueuedEvent
}

// EventQueueImpl provides a thread safe FIFO event queue
type EventQueueImpl struct {
	lock sync.RWMutex
	l    *list.List
}

// NewEventQueue creates and returns a newly created EventQueue
func NewEventQueue() *EventQueueImpl {
	q := new(EventQueueImpl)
	q.l = list.New()
	return q
}

// Push adds an event to the back of the queue
func (q *EventQueueImpl) Push(evt *QueuedEvent) {
	q.lock.Lock()
	q.l.PushBack(evt)
	q.lock.Unlock()
}

// Pop removes and returns the event at the front of the queue
func (q *EventQueueImpl) Pop() *QueuedEvent {
	q.lock.Lock()
	evt := q.l.Remove(q.l.Front())
	q.lock.Unlock()
	return evt.(*QueuedEvent)
}

// Len returns the number of events in the queue
func (q *EventQueueImpl) Len() int {
	q.lock.RLock()
	l := q.l.Len()
	q.lock.RUnlock()
	return l
}

// Peek returns the event at the front of the queue without removing it from
// the queue.
func (q *EventQueueImpl) Peek() *QueuedEvent {
	q.lock.RLock()
	evt := q.l.Front().Value.(*QueuedEvent)
	q.lock.RUnlock()
	return evt
}

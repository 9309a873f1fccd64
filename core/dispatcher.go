package core

import (
	"log"
	"sync"
)

// A Handler processes events of one or more event kinds on behalf of the
// domain that registered it.
type Handler interface {
	Handle(e Event) error
}

// A Dispatcher serializes events into a single-consumer processing pipeline.
// Events are handed to the handler registered for their kind, one at a time,
// in submission order. A handler runs to completion, including any
// suspension, before the next queued event begins processing.
type Dispatcher struct {
	domain     NamedHookable
	logger     *log.Logger
	timeTeller TimeTeller
	ids        IDGenerator

	handlerLock sync.RWMutex
	handlers    map[EventKind]Handler

	queue    EventQueue
	wake     chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex
}

// NewDispatcher creates a Dispatcher that invokes before- and after-event
// hooks on the given domain and stamps queued events with IDs from the given
// generator. The consumer goroutine starts immediately.
func NewDispatcher(
	domain NamedHookable,
	logger *log.Logger,
	timeTeller TimeTeller,
	ids IDGenerator,
) *Dispatcher {
	d := &Dispatcher{
		domain:     domain,
		logger:     logger,
		timeTeller: timeTeller,
		ids:        ids,
		handlers:   make(map[EventKind]Handler),
		queue:      NewEventQueue(),
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}

	go d.run()

	return d
}

// RegisterHandler binds a handler to an event kind. Each kind can only have
// one handler.
func (d *Dispatcher) RegisterHandler(kind EventKind, h Handler) {
	d.handlerLock.Lock()
	defer d.handlerLock.Unlock()

	if _, exists := d.handlers[kind]; exists {
		log.Panicf("handler for event kind %s already registered", kind)
	}

	d.handlers[kind] = h
}

// Dispatch enqueues an event. It returns as soon as the event is queued and
// never blocks on the completion of the handler. Dispatching an event kind
// that has no registered handler is a programming error.
func (d *Dispatcher) Dispatch(e Event) {
	d.handlerLock.RLock()
	_, registered := d.handlers[e.Kind()]
	d.handlerLock.RUnlock()

	if !registered {
		log.Panicf("no handler registered for event kind %s", e.Kind())
	}

	select {
	case <-d.stop:
		d.logger.Printf("%s: dropping %s event dispatched after stop",
			d.domain.Name(), e.Kind())
		return
	default:
	}

	d.queue.Push(&QueuedEvent{
		ID:         d.ids.Generate(),
		Event:      e,
		EnqueuedAt: d.timeTeller.Now(),
	})

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of events waiting to be processed.
func (d *Dispatcher) Pending() int {
	return d.queue.Len()
}

// Pause prevents the Dispatcher from processing more events. Events
// dispatched while paused are queued, not dropped.
func (d *Dispatcher) Pause() {
	d.isPausedLock.Lock()
	defer d.isPausedLock.Unlock()

	if d.isPaused {
		return
	}

	d.pauseLock.Lock()
	d.isPaused = true
}

// Continue allows a paused Dispatcher to process events again.
func (d *Dispatcher) Continue() {
	d.isPausedLock.Lock()
	defer d.isPausedLock.Unlock()

	if !d.isPaused {
		return
	}

	d.pauseLock.Unlock()
	d.isPaused = false
}

// Stop shuts the Dispatcher down. The in-flight handler, if any, runs to
// completion; events still queued are discarded. Stop returns after the
// consumer goroutine has exited.
func (d *Dispatcher) Stop() {
	d.Continue()

	d.stopOnce.Do(func() {
		close(d.stop)
	})

	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for {
		select {
		case <-d.stop:
			return
		case <-d.wake:
		}

		for d.queue.Len() > 0 {
			select {
			case <-d.stop:
				return
			default:
			}

			d.pauseLock.Lock()
			evt := d.queue.Pop()
			d.handleEvent(evt)
			d.pauseLock.Unlock()
		}
	}
}

func (d *Dispatcher) handleEvent(evt *QueuedEvent) {
	d.handlerLock.RLock()
	handler := d.handlers[evt.Event.Kind()]
	d.handlerLock.RUnlock()

	hookCtx := HookCtx{
		Domain: d.domain,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	d.domain.InvokeHook(hookCtx)

	err := handler.Handle(evt.Event)
	if err != nil {
		d.logger.Printf("%s: %s handler: %s",
			d.domain.Name(), evt.Event.Kind(), err)
	}

	hookCtx.Pos = HookPosAfterEvent
	hookCtx.Detail = err
	d.domain.InvokeHook(hookCtx)
}

package core

import "log"

// An EventLogger is a hook that writes one line for every event a container
// starts handling and every state it emits. Attach one to a container to
// follow its activity on a logger.
type EventLogger struct {
	*log.Logger
}

// NewEventLogger returns an EventLogger that writes into the given logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	return &EventLogger{Logger: logger}
}

// Func writes the event or state information into the logger.
func (l *EventLogger) Func(ctx HookCtx) {
	name := ""
	if named, ok := ctx.Domain.(Named); ok {
		name = named.Name()
	}

	switch ctx.Pos {
	case HookPosBeforeEvent:
		evt := ctx.Item.(*QueuedEvent)
		l.Printf("%s, event %s, %s", name, evt.ID, evt.Event.Kind())
	case HookPosStateEmit:
		s := ctx.Item.(State)
		l.Printf("%s, state %s", name, s.StateKind())
	}
}

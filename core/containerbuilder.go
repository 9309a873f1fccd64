package core

import (
	"context"
	"log"
	"os"
	"time"
)

// ContainerBuilder can be used to build a Container.
type ContainerBuilder struct {
	name           string
	loadDuration   time.Duration
	updateDuration time.Duration
	loadOp         Operation
	updateOp       Operation
	trimInput      bool
	timeTeller     TimeTeller
	logger         *log.Logger
	idGenerator    IDGenerator
}

// MakeContainerBuilder creates a builder with the default configuration: a
// simulated ~500ms load, a simulated ~300ms update, and input trimming
// enabled.
func MakeContainerBuilder() ContainerBuilder {
	return ContainerBuilder{
		loadDuration:   500 * time.Millisecond,
		updateDuration: 300 * time.Millisecond,
		trimInput:      true,
	}
}

// WithName sets the name of the container.
func (b ContainerBuilder) WithName(name string) ContainerBuilder {
	b.name = name
	return b
}

// WithLoadDuration sets the duration of the simulated load operation. It has
// no effect when a custom load operation is set.
func (b ContainerBuilder) WithLoadDuration(d time.Duration) ContainerBuilder {
	b.loadDuration = d
	return b
}

// WithUpdateDuration sets the total duration of the update operation's
// progress-reporting phase.
func (b ContainerBuilder) WithUpdateDuration(d time.Duration) ContainerBuilder {
	b.updateDuration = d
	return b
}

// WithLoadOperation replaces the simulated load with a real operation.
func (b ContainerBuilder) WithLoadOperation(op Operation) ContainerBuilder {
	b.loadOp = op
	return b
}

// WithUpdateOperation replaces the identity update with a real operation. The
// operation runs after the progress-reporting phase.
func (b ContainerBuilder) WithUpdateOperation(op Operation) ContainerBuilder {
	b.updateOp = op
	return b
}

// WithoutTrimming disables trimming of non-blank load data. Blank data still
// resolves to the default literal.
func (b ContainerBuilder) WithoutTrimming() ContainerBuilder {
	b.trimInput = false
	return b
}

// WithTimeTeller sets the clock used to stamp emitted states.
func (b ContainerBuilder) WithTimeTeller(t TimeTeller) ContainerBuilder {
	b.timeTeller = t
	return b
}

// WithLogger sets the logger that receives handler failures and the final
// metrics flush.
func (b ContainerBuilder) WithLogger(l *log.Logger) ContainerBuilder {
	b.logger = l
	return b
}

// WithIDGenerator sets the generator used to stamp dispatched events. The
// default is a sequential generator private to the container; pass
// NewUniqueIDGenerator() when spans from many containers are aggregated into
// one store.
func (b ContainerBuilder) WithIDGenerator(g IDGenerator) ContainerBuilder {
	b.idGenerator = g
	return b
}

func (b ContainerBuilder) parametersMustBeValid() {
	if b.loadDuration < 0 {
		panic("load duration must not be negative")
	}

	if b.updateDuration < 0 {
		panic("update duration must not be negative")
	}
}

// Build builds the container. The container starts in InitialState with its
// dispatcher goroutine running.
func (b ContainerBuilder) Build() *Container {
	b.parametersMustBeValid()

	c := &Container{
		name:           b.name,
		timeTeller:     b.timeTeller,
		logger:         b.logger,
		loadOp:         b.loadOp,
		updateOp:       b.updateOp,
		loadDuration:   b.loadDuration,
		updateDuration: b.updateDuration,
		trimInput:      b.trimInput,
		metrics:        NewOperationMetrics(),
		currentState:   InitialState{},
	}

	// Unnamed containers get a process-unique name so that two of them never
	// collide in a shared trace store.
	if c.name == "" {
		c.name = "Container_" + NewUniqueIDGenerator().Generate()
	}

	if c.timeTeller == nil {
		c.timeTeller = WallClock{}
	}

	if c.logger == nil {
		c.logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	if c.loadOp == nil {
		c.loadOp = simulateOperation(b.loadDuration)
	}

	if c.updateOp == nil {
		// The update delay lives in the progress-reporting steps.
		c.updateOp = simulateOperation(0)
	}

	if b.idGenerator == nil {
		b.idGenerator = NewSequentialIDGenerator()
	}

	c.opCtx, c.opCancel = context.WithCancel(context.Background())

	c.dispatcher = NewDispatcher(c, c.logger, c.timeTeller, b.idGenerator)
	c.dispatcher.RegisterHandler(KindLoadData, c)
	c.dispatcher.RegisterHandler(KindUpdateData, c)
	c.dispatcher.RegisterHandler(KindResetData, c)

	return c
}

func simulateOperation(d time.Duration) Operation {
	return func(_ context.Context, data string) (string, error) {
		if d > 0 {
			time.Sleep(d)
		}

		return data, nil
	}
}

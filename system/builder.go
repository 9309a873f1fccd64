package system

import (
	"github.com/rs/xid"

	"github.com/gurkanfikretgunak/corestate/core"
	"github.com/gurkanfikretgunak/corestate/datarecording"
	"github.com/gurkanfikretgunak/corestate/monitoring"
	"github.com/gurkanfikretgunak/corestate/observing"
)

// Builder can be used to build a system.
type Builder struct {
	monitorOn      bool
	monitorPort    int
	outputFileName string
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		monitorOn: true,
	}
}

// WithoutMonitoring sets the system to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}
}

// Build builds the system.
func (b Builder) Build() *System {
	b.parametersMustBeValid()

	s := &System{
		containerNameIndex: make(map[string]int),
	}

	s.id = xid.New().String()

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "corestate_" + s.id
	}
	s.dataRecorder = datarecording.New(outputPath)

	s.visTracer = observing.NewDBTracer(core.WallClock{}, s.dataRecorder)

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.StartServer()
	}

	return s
}

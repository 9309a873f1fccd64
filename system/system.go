// Package system assembles containers with the supporting services that
// production deployments use, including data recording, tracing, and
// monitoring.
package system

import (
	"github.com/gurkanfikretgunak/corestate/core"
	"github.com/gurkanfikretgunak/corestate/datarecording"
	"github.com/gurkanfikretgunak/corestate/monitoring"
	"github.com/gurkanfikretgunak/corestate/observing"
)

// A System provides the services required to run a set of containers.
type System struct {
	id string

	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	visTracer    *observing.DBTracer

	containers         []*core.Container
	containerNameIndex map[string]int
}

// ID returns the unique identifier of the system.
func (s *System) ID() string {
	return s.id
}

// GetDataRecorder returns the data recorder used in the system.
func (s *System) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the system. It is nil when
// monitoring is disabled.
func (s *System) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// GetVisTracer returns the tracer that records container activity into the
// data recorder.
func (s *System) GetVisTracer() *observing.DBTracer {
	return s.visTracer
}

// RegisterContainer registers a container with the system. The container is
// monitored and its event handling is traced into the data recorder.
func (s *System) RegisterContainer(c *core.Container) {
	name := c.Name()
	if _, ok := s.containerNameIndex[name]; ok {
		panic("container " + name + " already registered")
	}

	s.containers = append(s.containers, c)
	s.containerNameIndex[name] = len(s.containers) - 1

	observing.CollectTrace(c, s.visTracer, core.WallClock{})

	if s.monitor != nil {
		s.monitor.RegisterContainer(c)
	}
}

// GetContainerByName returns the container with the given name.
func (s *System) GetContainerByName(name string) *core.Container {
	return s.containers[s.containerNameIndex[name]]
}

// Terminate terminates the system. All registered containers are disposed
// and the recorded data is flushed.
func (s *System) Terminate() {
	for _, c := range s.containers {
		c.Dispose()
	}

	s.dataRecorder.Flush()
	s.dataRecorder.Close()
}

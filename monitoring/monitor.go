// Package monitoring turns a set of containers into a web server and allows
// external inspection and controlling of the containers.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/gurkanfikretgunak/corestate/core"
)

// Monitor exposes live containers over an HTTP API for external monitoring
// and controlling. The monitor is observability only; container correctness
// never depends on it.
type Monitor struct {
	containers []*core.Container
	portNumber int

	opTracker *OperationTracker
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		opTracker: NewOperationTracker(),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterContainer registers a container to be monitored.
func (m *Monitor) RegisterContainer(c *core.Container) {
	m.containers = append(m.containers, c)

	c.AcceptHook(m.opTracker)
}

// StartServer starts the monitor as a web server with a custom port if
// wanted.
func (m *Monitor) StartServer() {
	r := m.router()
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	fmt.Fprintf(
		os.Stderr,
		"Monitoring containers with http://localhost:%d\n",
		listener.Addr().(*net.TCPAddr).Port)

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/containers", m.listContainers)
	r.HandleFunc("/api/container/{name}", m.listContainerDetails)
	r.HandleFunc("/api/container/{name}/state", m.containerState)
	r.HandleFunc("/api/container/{name}/metrics", m.containerMetrics)
	r.HandleFunc("/api/container/{name}/dispatch", m.dispatchEvent)
	r.HandleFunc("/api/container/{name}/pause", m.pauseContainer)
	r.HandleFunc("/api/container/{name}/continue", m.continueContainer)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/progress", m.listProgress)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

func (m *Monitor) listContainers(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.containers))
	for _, c := range m.containers {
		names = append(names, c.Name())
	}

	bytes, err := json.Marshal(names)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listContainerDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	container := m.findContainerOr404(w, name)
	if container == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(container)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type stateRsp struct {
	Kind  string     `json:"kind"`
	State core.State `json:"state"`
}

func (m *Monitor) containerState(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	container := m.findContainerOr404(w, name)
	if container == nil {
		return
	}

	state := container.CurrentState()
	rsp := stateRsp{
		Kind:  string(state.StateKind()),
		State: state,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) containerMetrics(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	container := m.findContainerOr404(w, name)
	if container == nil {
		return
	}

	bytes, err := json.Marshal(container.Metrics().Snapshot())
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) dispatchEvent(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	container := m.findContainerOr404(w, name)
	if container == nil {
		return
	}

	event, err := eventFromRequest(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	container.Dispatch(event)
	w.WriteHeader(http.StatusAccepted)
}

func eventFromRequest(r *http.Request) (core.Event, error) {
	query := r.URL.Query()
	kind := query.Get("kind")

	switch core.EventKind(kind) {
	case core.KindLoadData:
		evt := core.LoadDataEvent{
			ForceReload: query.Get("force") == "true",
		}
		if query.Has("data") {
			evt.Data = query.Get("data")
			evt.HasData = true
		}
		return evt, nil
	case core.KindUpdateData:
		return core.UpdateDataEvent{
			Data:         query.Get("data"),
			ValidateData: query.Get("validate") == "true",
		}, nil
	case core.KindResetData:
		return core.ResetDataEvent{
			ClearCache: query.Get("clear_cache") == "true",
		}, nil
	default:
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
}

func (m *Monitor) pauseContainer(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	container := m.findContainerOr404(w, name)
	if container == nil {
		return
	}

	container.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueContainer(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	container := m.findContainerOr404(w, name)
	if container == nil {
		return
	}

	container.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

type fieldReq struct {
	ContainerName string `json:"container_name,omitempty"`
	FieldName     string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		dieOnErr(err)
	}

	fields := strings.Split(req.FieldName, ".")

	container := m.findContainerOr404(w, req.ContainerName)
	if container == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(container)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(fields)
	dieOnErr(err)

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) listProgress(w http.ResponseWriter, _ *http.Request) {
	bytes, err := json.Marshal(m.opTracker.List())
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	profBytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(profBytes)
	dieOnErr(err)
}

func (m *Monitor) findContainerOr404(
	w http.ResponseWriter,
	name string,
) *core.Container {
	var container *core.Container
	for _, c := range m.containers {
		if c.Name() == name {
			container = c
		}
	}

	if container == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Container not found"))
		dieOnErr(err)
	}

	return container
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}

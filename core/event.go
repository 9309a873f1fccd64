package core

// EventKind identifies one of the closed set of event variants that a
// container can process.
type EventKind string

// The event kinds that containers understand.
const (
	KindLoadData   EventKind = "LoadData"
	KindUpdateData EventKind = "UpdateData"
	KindResetData  EventKind = "ResetData"
)

// An Event is an immutable intent describing a requested state transition.
// Events are plain value types compared by their fields. They carry no
// identity beyond their fields; dispatch-time identifiers belong to the
// dispatcher, not the event.
type Event interface {
	Kind() EventKind
}

// LoadDataEvent requests that the container load data. The seed data is
// optional; HasData reports whether Data was provided at all, which is not
// the same as Data being blank. ForceReload bypasses the cache short-circuit.
type LoadDataEvent struct {
	Data        string
	HasData     bool
	ForceReload bool
}

// NewLoadDataEvent creates a LoadDataEvent without seed data.
func NewLoadDataEvent() LoadDataEvent {
	return LoadDataEvent{}
}

// NewLoadDataEventWithData creates a LoadDataEvent carrying seed data.
func NewLoadDataEventWithData(data string) LoadDataEvent {
	return LoadDataEvent{Data: data, HasData: true}
}

// Kind returns KindLoadData.
func (e LoadDataEvent) Kind() EventKind {
	return KindLoadData
}

// UpdateDataEvent requests that the container replace its data. The size
// ceiling is enforced on every update; ValidateData additionally rejects
// empty data before any state change.
type UpdateDataEvent struct {
	Data         string
	ValidateData bool
}

// Kind returns KindUpdateData.
func (e UpdateDataEvent) Kind() EventKind {
	return KindUpdateData
}

// ResetDataEvent requests that the container return to the Initial state,
// optionally clearing the cache slot.
type ResetDataEvent struct {
	ClearCache bool
}

// Kind returns KindResetData.
func (e ResetDataEvent) Kind() EventKind {
	return KindResetData
}

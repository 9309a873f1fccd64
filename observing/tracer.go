package observing

// A Tracer can collect container activity traces
type Tracer interface {
	StartSpan(span EventSpan)
	RecordEmission(e Emission)
	EndSpan(span EventSpan)
}

package observing

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	// SQLite driver for reading trace files back.
	_ "github.com/mattn/go-sqlite3"
)

// SpanQuery selects the spans a TraceReader returns. The zero value matches
// every recorded span.
type SpanQuery struct {
	// Container restricts results to one container; empty matches all.
	Container string

	// Kind restricts results to one event kind; empty matches all.
	Kind string

	// FailedOnly drops the spans whose handler succeeded.
	FailedOnly bool

	// Limit caps the number of returned spans; 0 means no cap.
	Limit int
}

// A TraceReader reads the spans and emissions that a DBTracer recorded back
// out of an SQLite trace file.
type TraceReader struct {
	*sql.DB
}

// NewTraceReader opens a trace file for reading.
func NewTraceReader(filename string) *TraceReader {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	return &TraceReader{DB: db}
}

// ListContainers returns the names of the containers that recorded spans.
func (r *TraceReader) ListContainers() []string {
	rows, err := r.Query(
		"SELECT DISTINCT Container FROM " + spanTableName +
			" ORDER BY Container")
	if err != nil {
		panic(err)
	}
	defer rows.Close()

	var containers []string

	for rows.Next() {
		var container string

		if err := rows.Scan(&container); err != nil {
			panic(err)
		}

		containers = append(containers, container)
	}

	if err := rows.Err(); err != nil {
		panic(err)
	}

	return containers
}

// ListSpans returns the recorded spans matching the query, oldest first.
func (r *TraceReader) ListSpans(query SpanQuery) []EventSpan {
	sqlStr := "SELECT ID, Container, Kind, StartTime, EndTime, Failed FROM " +
		spanTableName

	where, args := query.clauses()
	sqlStr += where + " ORDER BY StartTime"

	if query.Limit > 0 {
		sqlStr += fmt.Sprintf(" LIMIT %d", query.Limit)
	}

	rows, err := r.Query(sqlStr, args...)
	if err != nil {
		panic(err)
	}
	defer rows.Close()

	var spans []EventSpan

	for rows.Next() {
		var span EventSpan
		var start, end float64

		err := rows.Scan(&span.ID, &span.Container, &span.Kind,
			&start, &end, &span.Failed)
		if err != nil {
			panic(err)
		}

		span.StartTime = secondsToTime(start)
		span.EndTime = secondsToTime(end)
		spans = append(spans, span)
	}

	if err := rows.Err(); err != nil {
		panic(err)
	}

	return spans
}

// ListEmissions returns the states emitted while the given span was in
// flight, in emission order.
func (r *TraceReader) ListEmissions(spanID string) []Emission {
	rows, err := r.Query(
		"SELECT SpanID, Container, StateKind, Operation, Progress, "+
			"HasProgress, Time FROM "+emissionTableName+
			" WHERE SpanID = ? ORDER BY Time",
		spanID)
	if err != nil {
		panic(err)
	}
	defer rows.Close()

	var emissions []Emission

	for rows.Next() {
		var e Emission
		var t float64

		err := rows.Scan(&e.SpanID, &e.Container, &e.StateKind,
			&e.Operation, &e.Progress, &e.HasProgress, &t)
		if err != nil {
			panic(err)
		}

		e.Time = secondsToTime(t)
		emissions = append(emissions, e)
	}

	if err := rows.Err(); err != nil {
		panic(err)
	}

	return emissions
}

func (q SpanQuery) clauses() (string, []any) {
	var conds []string
	var args []any

	if q.Container != "" {
		conds = append(conds, "Container = ?")
		args = append(args, q.Container)
	}

	if q.Kind != "" {
		conds = append(conds, "Kind = ?")
		args = append(args, q.Kind)
	}

	if q.FailedOnly {
		conds = append(conds, "Failed")
	}

	if len(conds) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func secondsToTime(s float64) time.Time {
	return time.Unix(0, int64(s*1e9))
}

// Package analysis monitors containers and summarizes how they spend their
// time.
package analysis

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/gurkanfikretgunak/corestate/datarecording"
)

// PerfAnalyzerEntry is a single entry in the performance database.
type PerfAnalyzerEntry struct {
	Start     float64
	End       float64
	Where     string
	What      string
	EntryType string
	Value     float64
	Unit      string
}

// PerfLogger is the interface that provide the service that can record
// performance data entries.
type PerfLogger interface {
	AddDataEntry(entry PerfAnalyzerEntry)
}

// CSVPerfLogger writes performance entries into a CSV file.
type CSVPerfLogger struct {
	csvWriter *csv.Writer
}

// NewCSVPerfLogger creates a CSVPerfLogger that writes to the given file.
func NewCSVPerfLogger(filename string) *CSVPerfLogger {
	file, err := os.OpenFile(
		filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		panic(err)
	}

	l := &CSVPerfLogger{
		csvWriter: csv.NewWriter(file),
	}

	header := []string{
		"Start", "End", "Where", "What", "EntryType", "Value", "Unit"}
	err = l.csvWriter.Write(header)
	if err != nil {
		panic(err)
	}
	l.csvWriter.Flush()

	return l
}

// AddDataEntry adds a data entry to the CSV file.
func (l *CSVPerfLogger) AddDataEntry(entry PerfAnalyzerEntry) {
	err := l.csvWriter.Write(
		[]string{
			fmt.Sprintf("%.10f", entry.Start),
			fmt.Sprintf("%.10f", entry.End),
			entry.Where,
			entry.What,
			entry.EntryType,
			fmt.Sprintf("%.10f", entry.Value),
			entry.Unit,
		})
	if err != nil {
		panic(err)
	}
	l.csvWriter.Flush()
}

const perfTableName = "perf_entries"

// DBPerfLogger writes performance entries into a data recorder table.
type DBPerfLogger struct {
	backend datarecording.DataRecorder
}

// NewDBPerfLogger creates a DBPerfLogger that writes into the given data
// recorder.
func NewDBPerfLogger(backend datarecording.DataRecorder) *DBPerfLogger {
	l := &DBPerfLogger{
		backend: backend,
	}

	l.backend.CreateTable(perfTableName, PerfAnalyzerEntry{})

	return l
}

// AddDataEntry adds a data entry to the database.
func (l *DBPerfLogger) AddDataEntry(entry PerfAnalyzerEntry) {
	l.backend.InsertData(perfTableName, entry)
}

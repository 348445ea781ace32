package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TraceEntry is one step's measurement, serialized as a JSON line in
// trace.jsonl — the append-only companion to a run's snapshot.json,
// adapted from the teacher's optimization cost trace to the controller's
// per-step Measurement (spec.md §4.6).
type TraceEntry struct {
	Step               int       `json:"step"`
	SimTime            float64   `json:"simTime"`
	StepDurationNanos   int64     `json:"stepDurationNanos"`
	KineticEnergy       float64   `json:"kineticEnergy"`
	PotentialEnergy     float64   `json:"potentialEnergy"`
	BendingProbeOffsetX *float64  `json:"bendingProbeOffsetX,omitempty"`
	BendingProbeOffsetY *float64  `json:"bendingProbeOffsetY,omitempty"`
	Timestamp           time.Time `json:"timestamp"`
}

// TraceWriter appends TraceEntry lines to a run's trace.jsonl. Safe for
// concurrent use.
type TraceWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	path   string
}

// NewTraceWriter opens (creating if needed) <baseDir>/runs/<runID>/trace.jsonl.
// If appendMode is true, new entries are appended to an existing file.
func NewTraceWriter(baseDir, runID string, appendMode bool) (*TraceWriter, error) {
	dir := filepath.Join(baseDir, "runs", runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("store: create run directory: %w", err)
	}

	path := filepath.Join(dir, "trace.jsonl")
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("store: open trace file: %w", err)
	}

	return &TraceWriter{
		file:   file,
		writer: bufio.NewWriterSize(file, 64*1024),
		path:   path,
	}, nil
}

// Write appends one trace entry, buffered until Flush or Close.
func (tw *TraceWriter) Write(entry TraceEntry) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("store: marshal trace entry: %w", err)
	}
	if _, err := tw.writer.Write(data); err != nil {
		return fmt.Errorf("store: write trace entry: %w", err)
	}
	return tw.writer.WriteByte('\n')
}

// Flush writes buffered data to disk and syncs the file.
func (tw *TraceWriter) Flush() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if err := tw.writer.Flush(); err != nil {
		return fmt.Errorf("store: flush trace writer: %w", err)
	}
	return tw.file.Sync()
}

// Close flushes and closes the trace file.
func (tw *TraceWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if err := tw.writer.Flush(); err != nil {
		tw.file.Close()
		return fmt.Errorf("store: flush on close: %w", err)
	}
	return tw.file.Close()
}

// Path returns the trace file's filesystem path.
func (tw *TraceWriter) Path() string { return tw.path }

// TraceReader reads TraceEntry lines back out of a trace.jsonl.
type TraceReader struct {
	file    *os.File
	scanner *bufio.Scanner
}

// NewTraceReader opens a run's trace.jsonl for reading.
func NewTraceReader(baseDir, runID string) (*TraceReader, error) {
	path := filepath.Join(baseDir, "runs", runID, "trace.jsonl")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{RunID: runID}
		}
		return nil, fmt.Errorf("store: open trace file: %w", err)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &TraceReader{file: file, scanner: scanner}, nil
}

// Read returns the next entry, or io.EOF once the file is exhausted.
func (tr *TraceReader) Read() (*TraceEntry, error) {
	if !tr.scanner.Scan() {
		if err := tr.scanner.Err(); err != nil {
			return nil, fmt.Errorf("store: scan trace line: %w", err)
		}
		return nil, io.EOF
	}
	var entry TraceEntry
	if err := json.Unmarshal(tr.scanner.Bytes(), &entry); err != nil {
		return nil, fmt.Errorf("store: unmarshal trace entry: %w", err)
	}
	return &entry, nil
}

// ReadAll reads every remaining entry.
func (tr *TraceReader) ReadAll() ([]TraceEntry, error) {
	var entries []TraceEntry
	for {
		entry, err := tr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// Close closes the trace reader's underlying file.
func (tr *TraceReader) Close() error {
	return tr.file.Close()
}

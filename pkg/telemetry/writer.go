package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"
)

// FileName is the CSV file created inside the output directory.
const FileName = "telemetry.csv"

// Writer appends Stats rows to telemetry.csv. A nil Writer discards
// everything, so callers can leave output disabled without branching.
type Writer struct {
	mu            sync.Mutex
	file          *os.File
	every         uint64
	headerWritten bool
	rows          int
	err           error
}

// NewWriter creates dir and telemetry.csv inside it. Only ticks divisible by
// every are written. Returns nil if dir is empty.
func NewWriter(dir string, every int) (*Writer, error) {
	if dir == "" {
		return nil, nil
	}
	if every < 1 {
		every = 1
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", FileName, err)
	}
	return &Writer{file: f, every: uint64(every)}, nil
}

// Write records s if its tick is due. After the first failure every later
// call returns the same error.
func (w *Writer) Write(s Stats) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return w.err
	}
	if s.Tick%w.every != 0 {
		return nil
	}

	records := []Stats{s}
	var err error
	if !w.headerWritten {
		err = gocsv.Marshal(records, w.file)
		w.headerWritten = true
	} else {
		err = gocsv.MarshalWithoutHeaders(records, w.file)
	}
	if err != nil {
		w.err = fmt.Errorf("writing telemetry: %w", err)
		return w.err
	}
	w.rows++
	return nil
}

// Rows returns how many rows were written.
func (w *Writer) Rows() int {
	if w == nil {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rows
}

// Path returns the CSV path.
func (w *Writer) Path() string {
	if w == nil {
		return ""
	}
	return w.file.Name()
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return fmt.Errorf("syncing telemetry: %w", err)
	}
	return w.file.Close()
}

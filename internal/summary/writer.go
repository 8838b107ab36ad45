// Package summary implements a CSV scalar event log for training runs.
//
// Each AddScalar call appends one row of (wall_time, step, tag, value),
// producing a file that plots directly in any spreadsheet or pandas:
//
//	wall_time,step,tag,value
//	1724400000.123,1,loss/train,2.531
//	1724400000.456,1,loss/val,2.498
package summary

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Writer appends scalar events to a CSV file.
//
// Safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	file   *os.File
	csv    *csv.Writer
	closed bool
}

// NewWriter creates a scalar event writer at path.
//
// The file is truncated and a header row is written.
func NewWriter(path string) (*Writer, error) {
	//nolint:gosec // G304: File path comes from user configuration
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create summary file: %w", err)
	}

	w := &Writer{
		file: file,
		csv:  csv.NewWriter(file),
	}

	if err := w.csv.Write([]string{"wall_time", "step", "tag", "value"}); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	return w, nil
}

// AddScalar records one scalar value for tag at the given step.
func (w *Writer) AddScalar(tag string, step int, value float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("summary writer is closed")
	}

	return w.writeRow(tag, step, value, time.Now())
}

// AddScalars records several scalars sharing one step, such as training
// and validation loss for the same epoch. Tags are written in sorted
// order so output is deterministic.
func (w *Writer) AddScalars(values map[string]float64, step int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("summary writer is closed")
	}

	tags := make([]string, 0, len(values))
	for tag := range values {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	now := time.Now()
	for _, tag := range tags {
		if err := w.writeRow(tag, step, values[tag], now); err != nil {
			return err
		}
	}
	return nil
}

// writeRow appends one event row. Caller must hold the lock.
func (w *Writer) writeRow(tag string, step int, value float64, now time.Time) error {
	row := []string{
		strconv.FormatFloat(float64(now.UnixNano())/1e9, 'f', 3, 64),
		strconv.Itoa(step),
		tag,
		strconv.FormatFloat(value, 'g', -1, 64),
	}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("failed to write scalar: %w", err)
	}
	return nil
}

// Flush writes buffered events to disk.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.csv.Flush()
	return w.csv.Error()
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

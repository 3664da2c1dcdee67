package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/solacq/solacq/internal/models"
)

// FileWriter implements Writer as an append-only structured file: one
// JSON object per cycle, one file per ISO week. Used when no database
// is configured.
type FileWriter struct {
	dir string
}

func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{dir: dir}
}

// cycleRecord is the on-disk shape of one poll cycle.
type cycleRecord struct {
	Timestamp    time.Time                    `json:"timestamp"`
	Installation *models.InstallationSnapshot `json:"installation,omitempty"`
	Meter        *models.MeterSnapshot        `json:"meter,omitempty"`
}

// WriteCycle appends one JSON object to the current week's file. The
// write is a single encoder call, so a cycle is either fully appended
// or the error surfaces to the orchestrator.
func (w *FileWriter) WriteCycle(ctx context.Context, snap *models.InstallationSnapshot, meter *models.MeterSnapshot) error {
	if snap == nil && meter == nil {
		return nil
	}

	ts := cycleTimestamp(snap, meter)
	f, err := os.OpenFile(w.path(ts), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer f.Close()

	rec := cycleRecord{Timestamp: ts, Installation: snap, Meter: meter}
	if err := json.NewEncoder(f).Encode(rec); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (w *FileWriter) Close() error {
	return nil
}

// path names the sink file by ISO year and week, e.g. solacq-2026-W34.json.
func (w *FileWriter) path(ts time.Time) string {
	year, week := ts.ISOWeek()
	return filepath.Join(w.dir, fmt.Sprintf("solacq-%d-W%02d.json", year, week))
}

func cycleTimestamp(snap *models.InstallationSnapshot, meter *models.MeterSnapshot) time.Time {
	if snap != nil {
		return snap.Timestamp
	}
	return meter.Timestamp
}

// Compile-time interface implementation check
var _ Writer = (*FileWriter)(nil)

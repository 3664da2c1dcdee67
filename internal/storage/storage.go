//go:generate go run github.com/golang/mock/mockgen -destination=./mocks/writer.go -package=mocks . Writer

// Package storage persists poll cycle results.
//
// Two writers are provided:
//   - PostgresWriter: three relational tables, one transaction per cycle
//   - FileWriter: append-only weekly JSON snapshot files
package storage

import (
	"context"
	"errors"

	"github.com/solacq/solacq/internal/models"
)

// ErrStoreUnavailable indicates the persistence backend could not be
// reached or written. The cycle's data is dropped; writers never retry
// internally.
var ErrStoreUnavailable = errors.New("store unavailable")

// Writer persists one poll cycle's results.
//
// Either snapshot may be nil when its source failed that cycle; the
// other is still written. All writes of a single call are committed
// together or not at all.
type Writer interface {
	// WriteCycle persists one installation snapshot and, when present,
	// one meter snapshot.
	WriteCycle(ctx context.Context, snap *models.InstallationSnapshot, meter *models.MeterSnapshot) error

	// Close releases any resources held by the writer.
	Close() error
}

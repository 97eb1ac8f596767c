// Package history keeps full-frame snapshots of a board for bounded undo.
//
// Whole frames are stored rather than diffs: erase strokes are destructive, so replaying
// partial operations cannot reconstruct earlier content.
package history

import (
	"fmt"
)

// DefaultLimit is the default maximum number of snapshots kept, floor included.
const DefaultLimit = 50

// Source is the raster the manager snapshots and restores.
type Source interface {
	ExportImage() ([]byte, error)
	Restore(data []byte) error
}

// Manager holds an append-only sequence of encoded snapshots.
// The first entry is the floor and is never discarded by Undo.
type Manager struct {
	src       Source
	limit     int
	snapshots [][]byte
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimit bounds the number of snapshots kept. Values below 2 are ignored.
func WithLimit(n int) Option {
	return func(m *Manager) {
		if n >= 2 {
			m.limit = n
		}
	}
}

// New creates a Manager over src. The caller records the floor snapshot with Record
// once the source is in its initial state.
func New(src Source, opts ...Option) *Manager {
	m := &Manager{
		src:   src,
		limit: DefaultLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Record exports the current source and appends it.
// When the limit is reached the oldest entry after the floor is dropped.
func (m *Manager) Record() error {
	data, err := m.src.ExportImage()
	if err != nil {
		return fmt.Errorf("failed to record snapshot: %w", err)
	}
	m.snapshots = append(m.snapshots, data)
	if len(m.snapshots) > m.limit {
		m.snapshots = append(m.snapshots[:1], m.snapshots[2:]...)
	}
	return nil
}

// Undo discards the latest snapshot and restores the one before it.
// At the floor it does nothing and returns false.
func (m *Manager) Undo() (bool, error) {
	if len(m.snapshots) <= 1 {
		return false, nil
	}
	prev := m.snapshots[len(m.snapshots)-2]
	if err := m.src.Restore(prev); err != nil {
		return false, fmt.Errorf("failed to restore snapshot: %w", err)
	}
	m.snapshots[len(m.snapshots)-1] = nil
	m.snapshots = m.snapshots[:len(m.snapshots)-1]
	return true, nil
}

// Len returns the number of snapshots, floor included.
func (m *Manager) Len() int {
	return len(m.snapshots)
}

// Latest returns the most recent snapshot, or nil before the first Record.
func (m *Manager) Latest() []byte {
	if len(m.snapshots) == 0 {
		return nil
	}
	return m.snapshots[len(m.snapshots)-1]
}

// Reset drops every snapshot and records the current source as the new floor.
func (m *Manager) Reset() error {
	m.snapshots = nil
	return m.Record()
}

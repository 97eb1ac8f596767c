package memory

import (
	"context"
	"sync"

	"github.com/aretw0/lousa/pkg/settings"
)

// Store implements ports.SettingsStore in memory.
// It keeps the encoded record, so reads go through the same lenient decoder as
// every other backend. Safe for concurrent use.
type Store struct {
	data []byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{}
}

// Load returns the stored settings or the defaults.
func (s *Store) Load(ctx context.Context) (settings.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return settings.Decode(s.data), nil
}

// Save replaces the stored settings.
func (s *Store) Save(ctx context.Context, v settings.Settings) error {
	data, err := settings.Encode(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	return nil
}

// Clear drops the stored record.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}

// SetRaw stores data verbatim, bypassing the encoder.
func (s *Store) SetRaw(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
}

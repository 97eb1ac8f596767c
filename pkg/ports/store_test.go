package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/lousa/pkg/ports"
	"github.com/aretw0/lousa/pkg/settings"
)

// MockStore keeps the encoded record in memory, like a browser's local storage.
type MockStore struct {
	mu   sync.Mutex
	data []byte
}

func (m *MockStore) Load(ctx context.Context) (settings.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return settings.Decode(m.data), nil
}

func (m *MockStore) Save(ctx context.Context, s settings.Settings) error {
	data, err := settings.Encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

func (m *MockStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}

func TestSettingsStoreContract_Mock(t *testing.T) {
	store := &MockStore{}
	ports.RunSettingsStoreContract(t, store, func() error {
		store.mu.Lock()
		store.data = []byte("{broken")
		store.mu.Unlock()
		return nil
	})
}

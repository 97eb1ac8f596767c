package board

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/lousa/internal/logging"
	"github.com/aretw0/lousa/pkg/domain"
	"github.com/google/uuid"
)

// Manager is a concurrency-safe registry of boards.
type Manager struct {
	mu     sync.RWMutex
	boards map[string]*Board

	boardOpts []Option
	logger    *slog.Logger
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithBoardOptions sets the options applied to every board the Manager creates.
func WithBoardOptions(opts ...Option) ManagerOption {
	return func(m *Manager) {
		m.boardOpts = append(m.boardOpts, opts...)
	}
}

// WithManagerLogger configures a logger for the Manager.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates an empty registry.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		boards: make(map[string]*Board),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create allocates a new board and returns its ID.
func (m *Manager) Create() (string, *Board, error) {
	b, err := New(m.boardOpts...)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create board: %w", err)
	}
	id := uuid.NewString()

	m.mu.Lock()
	m.boards[id] = b
	m.mu.Unlock()

	m.logger.Debug("board created", "board_id", id)
	return id, b, nil
}

// Get returns the board registered under id.
func (m *Manager) Get(id string) (*Board, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.boards[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrBoardNotFound, id)
	}
	return b, nil
}

// Delete removes the board and releases its camera.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	b, ok := m.boards[id]
	delete(m.boards, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrBoardNotFound, id)
	}
	if err := b.Close(); err != nil {
		m.logger.Warn("failed to release board camera", "board_id", id, "error", err)
	}
	m.logger.Debug("board deleted", "board_id", id)
	return nil
}

// List returns the registered IDs in lexical order.
func (m *Manager) List() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.boards))
	for id := range m.boards {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Close releases every board.
func (m *Manager) Close() {
	m.mu.Lock()
	boards := m.boards
	m.boards = make(map[string]*Board)
	m.mu.Unlock()

	for id, b := range boards {
		if err := b.Close(); err != nil {
			m.logger.Warn("failed to release board camera", "board_id", id, "error", err)
		}
	}
}

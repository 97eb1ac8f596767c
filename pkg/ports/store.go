package ports

import (
	"context"

	"github.com/aretw0/lousa/pkg/domain"
	"github.com/aretw0/lousa/pkg/settings"
)

// SettingsStore persists the solver preferences under settings.Key.
type SettingsStore interface {
	// Load returns the stored settings, or the defaults when nothing is stored.
	// A malformed record also yields the defaults instead of an error.
	Load(ctx context.Context) (settings.Settings, error)

	// Save replaces the stored settings.
	Save(ctx context.Context, s settings.Settings) error

	// Clear removes the stored record so the next Load returns the defaults.
	Clear(ctx context.Context) error
}

// SolutionArchive stores solved boards.
type SolutionArchive interface {
	// Archive persists sol and returns its ID. An empty sol.ID is assigned.
	Archive(ctx context.Context, sol domain.Solution) (string, error)

	// Get returns the archived solution.
	// Returns domain.ErrSolutionNotFound if it does not exist.
	Get(ctx context.Context, id string) (domain.Solution, error)

	// List returns the archived IDs.
	List(ctx context.Context) ([]string, error)
}

// AuditLog records relay calls.
type AuditLog interface {
	Record(ctx context.Context, entry domain.AuditEntry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/lousa/pkg/domain"
	"github.com/aretw0/lousa/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSettingsStoreContract verifies that a SettingsStore implementation adheres to the
// interface contract. corrupt, when non-nil, writes a malformed record into the store.
func RunSettingsStoreContract(t *testing.T, store SettingsStore, corrupt func() error) {
	ctx := context.Background()

	t.Run("Load Empty", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx))
		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, settings.Default(), got)
	})

	t.Run("Save and Load", func(t *testing.T) {
		// 1. Save
		want := settings.Settings{Provider: "openrouter", Model: "openai/gpt-4o", Temperature: 0.35, Prompt: "solve"}
		require.NoError(t, store.Save(ctx, want))

		// 2. Load
		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		// 3. Overwrite
		want.Model = "openai/gpt-4o-mini"
		require.NoError(t, store.Save(ctx, want))
		got, err = store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, want.Model, got.Model)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, settings.Settings{Provider: "openrouter"}))
		require.NoError(t, store.Clear(ctx))
		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, settings.Default(), got)

		require.NoError(t, store.Clear(ctx), "Clear on an empty store should not fail")
	})

	if corrupt != nil {
		t.Run("Malformed Record", func(t *testing.T) {
			require.NoError(t, corrupt())
			got, err := store.Load(ctx)
			require.NoError(t, err, "malformed data must not surface as an error")
			assert.Equal(t, settings.Default(), got)
		})
	}
}

// RunSolutionArchiveContract verifies that a SolutionArchive implementation adheres to the
// interface contract.
func RunSolutionArchiveContract(t *testing.T, archive SolutionArchive) {
	ctx := context.Background()
	created := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

	t.Run("Archive and Get", func(t *testing.T) {
		sol := domain.Solution{
			BoardID:   "board-1",
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Prompt:    "solve",
			Content:   "## Answer\n\n$x = 2$\n",
			Image:     []byte{0x89, 'P', 'N', 'G'},
			CreatedAt: created,
		}
		id, err := archive.Archive(ctx, sol)
		require.NoError(t, err)
		require.NotEmpty(t, id)

		got, err := archive.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, sol.Provider, got.Provider)
		assert.Equal(t, sol.Model, got.Model)
		assert.Equal(t, sol.BoardID, got.BoardID)
		assert.Contains(t, got.Content, "$x = 2$")
		assert.True(t, sol.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := archive.Get(ctx, "non-existent-solution")
		assert.ErrorIs(t, err, domain.ErrSolutionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1, err := archive.Archive(ctx, domain.Solution{ID: "list-a", Content: "a", CreatedAt: created})
		require.NoError(t, err)
		id2, err := archive.Archive(ctx, domain.Solution{ID: "list-b", Content: "b", CreatedAt: created})
		require.NoError(t, err)

		ids, err := archive.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}

// RunAuditLogContract verifies that an AuditLog implementation adheres to the interface contract.
func RunAuditLogContract(t *testing.T, log AuditLog) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Record and Recent", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			err := log.Record(ctx, domain.AuditEntry{
				Provider:   "openai",
				Model:      "gpt-4o-mini",
				Status:     200 + i,
				Duration:   time.Duration(i+1) * time.Millisecond,
				ImageBytes: 1024,
				CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			})
			require.NoError(t, err)
		}

		entries, err := log.Recent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, 202, entries[0].Status, "newest first")
		assert.Equal(t, 201, entries[1].Status)
		assert.Equal(t, 3*time.Millisecond, entries[0].Duration)
		assert.True(t, base.Add(2*time.Minute).Equal(entries[0].CreatedAt))
	})

	t.Run("Error Entries", func(t *testing.T) {
		err := log.Record(ctx, domain.AuditEntry{
			Provider:  "openrouter",
			Status:    401,
			Error:     "openrouter API error: 401",
			CreatedAt: base.Add(time.Hour),
		})
		require.NoError(t, err)

		entries, err := log.Recent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "openrouter API error: 401", entries[0].Error)
	})
}

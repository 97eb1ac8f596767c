package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/lousa/pkg/adapters/sqlite"
	"github.com/aretw0/lousa/pkg/domain"
	"github.com/aretw0/lousa/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLog_Contract(t *testing.T) {
	log, err := sqlite.Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	ports.RunAuditLogContract(t, log)
}

func TestAuditLog_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.db")
	ctx := context.Background()

	log, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, log.Record(ctx, domain.AuditEntry{Provider: "openai", Status: 200}))
	require.NoError(t, log.Close())

	log, err = sqlite.Open(path)
	require.NoError(t, err)
	defer log.Close()

	entries, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "openai", entries[0].Provider)
	assert.False(t, entries[0].CreatedAt.IsZero())
}

func TestAuditLog_Memory(t *testing.T) {
	log, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer log.Close()

	entries, err := log.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

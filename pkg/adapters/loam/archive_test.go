package loam_test

import (
	"context"
	"testing"
	"time"

	lousaloam "github.com/aretw0/lousa/pkg/adapters/loam"
	"github.com/aretw0/lousa/pkg/domain"
	"github.com/aretw0/lousa/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchive_Contract(t *testing.T) {
	archive, err := lousaloam.Open(t.TempDir())
	require.NoError(t, err)
	ports.RunSolutionArchiveContract(t, archive)
}

func TestArchive_ImageRoundTrip(t *testing.T) {
	archive, err := lousaloam.Open(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	id, err := archive.Archive(ctx, domain.Solution{
		Provider:  "openrouter",
		Model:     "openai/gpt-4o-mini",
		Content:   "**Answer**: 42",
		Image:     png,
		CreatedAt: time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	got, err := archive.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, png, got.Image)
	assert.Equal(t, "openrouter", got.Provider)
}

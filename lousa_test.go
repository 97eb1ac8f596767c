package lousa_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/lousa"
	"github.com/aretw0/lousa/internal/config"
	"github.com/aretw0/lousa/internal/logging"
	"github.com/aretw0/lousa/pkg/domain"
	"github.com/aretw0/lousa/pkg/relay"
	"github.com/aretw0/lousa/pkg/settings"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.SettingsDir = filepath.Join(dir, "settings")
	cfg.AuditDB = filepath.Join(dir, "audit.db")
	cfg.ArchiveDir = filepath.Join(dir, "solutions")
	cfg.HistoryLimit = 3
	return cfg
}

func TestNew_WiresEverything(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"**Answer**: 2"}}]}`))
	}))
	defer upstream.Close()

	cfg := testConfig(t)
	cfg.Providers = map[string]config.ProviderConfig{"openai": {URL: upstream.URL}}

	app, err := lousa.New(cfg,
		lousa.WithLogger(logging.NewNop()),
		lousa.WithRelayOptions(relay.WithKeyLookup(func(string) string { return "sk-test" })),
	)
	require.NoError(t, err)
	defer app.Close()

	require.NotNil(t, app.Audit)
	require.NotNil(t, app.Archive)
	ctx := context.Background()

	// Boards use the configured history limit and feed board metrics.
	_, b, err := app.Boards.Create()
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, b.Clear())
	}
	assert.Equal(t, 3, b.Snapshots())
	assert.Equal(t, 5.0, testutil.ToFloat64(app.Metrics.BoardOps.WithLabelValues("clear")))

	// Relay calls are audited and counted.
	resp, err := app.Relay.Solve(ctx, relay.Request{Provider: "openai", DataURL: "data:image/png;base64,AA==", Prompt: "solve"})
	require.NoError(t, err)
	assert.Equal(t, "**Answer**: 2", resp.Content)
	assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics.RelayRequests.WithLabelValues("openai", "200")))

	entries, err := app.Audit.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 200, entries[0].Status)

	// Settings default to the file store.
	got, err := app.Settings.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.Default(), got)

	id, err := app.Archive.Archive(ctx, domain.Solution{Provider: "openai", Content: resp.Content})
	require.NoError(t, err)
	sol, err := app.Archive.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "**Answer**: 2", sol.Content)
}

func TestNew_RedisSettings(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.AuditDB = ""
	cfg.ArchiveDir = ""
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.Prefix = "test:"

	app, err := lousa.New(cfg, lousa.WithLogger(logging.NewNop()))
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Audit)
	assert.Nil(t, app.Archive)

	s := settings.Default()
	s.Provider = "openrouter"
	require.NoError(t, app.Settings.Save(context.Background(), s))
	assert.True(t, mr.Exists("test:"+settings.Key))
}

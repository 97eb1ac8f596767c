package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/lousa/pkg/adapters/redis"
	"github.com/aretw0/lousa/pkg/ports"
	"github.com/aretw0/lousa/pkg/settings"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_Contract(t *testing.T) {
	// Setup miniredis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	// Initialize client
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	// Run contract
	store := redis.NewFromClient(client)
	ports.RunSettingsStoreContract(t, store, func() error {
		return mr.Set(store.Key(), "not-json")
	})
}

func TestRedisStore_PrefixAndTTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	store := redis.NewFromClient(client, redis.WithPrefix("user:42:"), redis.WithTTL(1*time.Second))
	ctx := context.Background()

	// 1. Save under the prefixed key
	require.NoError(t, store.Save(ctx, settings.Settings{Provider: "openrouter", Model: "m", Temperature: 0.1, Prompt: "p"}))
	assert.True(t, mr.Exists("user:42:img-solve-settings"))
	require.NoError(t, store.Ping(ctx))

	// 2. Expire
	mr.FastForward(2 * time.Second)
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.Default(), got)
}

// Package testutils holds shared test plumbing: miniredis and sqlite
// stores, plus ready-made battles for the combat packages.
package testutils

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-combat/internal/redis"
)

// CreateTestRedisClient returns a client on a fresh miniredis.
func CreateTestRedisClient(t *testing.T) (redis.Client, func()) {
	client, _, cleanup := CreateTestRedis(t)
	return client, cleanup
}

// CreateTestRedis also exposes the server so tests can inspect keys or
// fast-forward TTLs. Lua scripts run inside miniredis.
func CreateTestRedis(t *testing.T) (redis.Client, *miniredis.Miniredis, func()) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start(), "failed to start miniredis")

	client, err := redis.NewClient(mr.Addr(), nil)
	require.NoError(t, err, "failed to create redis client")

	return client, mr, func() {
		_ = client.Close()
		mr.Close()
	}
}

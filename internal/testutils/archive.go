package testutils

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-combat/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/archive"
)

// CreateTestArchive opens a sqlite archive in the test's temp dir. It is
// closed when the test ends.
func CreateTestArchive(t *testing.T, clk clock.Clock) *archive.Store {
	store, err := archive.Open(context.Background(), &archive.Config{
		Path:  filepath.Join(t.TempDir(), "archive.db"),
		Clock: clk,
	})
	require.NoError(t, err, "failed to open archive")

	t.Cleanup(func() { _ = store.Close() })
	return store
}

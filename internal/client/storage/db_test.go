package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitDatabase_CreatesSnapshotTable(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "medtrack.db")

	db, err := InitDatabase(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`INSERT INTO snapshot (key, value) VALUES ('k', X'01')`)
	require.NoError(t, err)
}

func TestInitDatabase_IdempotentMigrations(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "medtrack.db")

	db, err := InitDatabase(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = InitDatabase(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

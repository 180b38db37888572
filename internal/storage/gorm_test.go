package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/db"
)

func newSQLiteStore(t *testing.T) Storage {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	return NewGormStorage(gdb)
}

func TestGormStorage_Contract(t *testing.T) {
	runStorageContract(t, newSQLiteStore)
}

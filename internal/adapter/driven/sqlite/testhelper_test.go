package sqlite

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestDB opens a migrated in-memory user database. The name is derived
// from t.Name() so parallel tests never share a users table; cache=shared lets
// the writer and reader pools see the same database.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", url.PathEscape(t.Name()))

	writer, err := openPool(ctx, dsn, 1)
	require.NoError(t, err, "open writer")
	reader, err := openPool(ctx, dsn, 4)
	if err != nil {
		_ = writer.Close()
		require.NoError(t, err, "open reader")
	}

	db := &DB{Writer: writer, Reader: reader, path: dsn}
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(db.Writer))
	return db
}

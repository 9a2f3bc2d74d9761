package iocache

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/repometrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobals(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	t.Cleanup(func() {
		CloseStores()
		Manager = &CacheStoreManager{}
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
	})
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{"valid simple name", "test_table", false},
		{"valid name with numbers", "test_table_123", false},
		{"valid name starting with underscore", "_test_table", false},
		{"valid mixed case", "TestTable_123", false},
		{"empty name", "", true},
		{"starts with number", "123_table", true},
		{"contains dash", "test-table", true},
		{"contains space", "test table", true},
		{"sql injection attempt", "test'; DROP TABLE users; --", true},
		{"contains dot", "test.table", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if tt.wantErr {
				assert.Error(t, err, "validateTableName should error for %q", tt.tableName)
			} else {
				assert.NoError(t, err, "validateTableName should not error for %q", tt.tableName)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, `"history_cache"`, quoteTableName("history_cache", schema.SQLiteBackend))
	assert.Equal(t, "`history_cache`", quoteTableName("history_cache", schema.MySQLBackend))
	assert.Equal(t, `"history_cache"`, quoteTableName("history_cache", schema.PostgreSQLBackend))
	assert.Equal(t, `"history_cache"`, quoteTableName("history_cache", schema.NoneBackend))
}

func TestDriverName(t *testing.T) {
	for backend, want := range map[schema.DatabaseBackend]string{
		schema.SQLiteBackend:     "sqlite",
		schema.MySQLBackend:      "mysql",
		schema.PostgreSQLBackend: "pgx",
	} {
		got, err := driverName(backend)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := driverName(schema.NoneBackend)
	assert.Error(t, err)
}

func TestSQLiteCacheStore(t *testing.T) {
	store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, _, _, err = store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	now := time.Now().Unix()
	require.NoError(t, store.Set("k", []byte(`{"a.go":{}}`), 1, now))
	value, version, ts, err := store.Get("k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a.go":{}}`, string(value))
	assert.Equal(t, 1, version)
	assert.Equal(t, now, ts)

	// Upsert replaces
	require.NoError(t, store.Set("k", []byte(`{}`), 2, now+5))
	value, version, ts, err = store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(value))
	assert.Equal(t, 2, version)
	assert.Equal(t, now+5, ts)
}

func TestCacheStoreGetStatus(t *testing.T) {
	store, err := NewCacheStore("status_table", schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalEntries)

	require.NoError(t, store.Set("a", []byte("x"), 1, 1_700_000_000))
	require.NoError(t, store.Set("b", []byte("y"), 1, 1_700_000_500))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, int64(1_700_000_500), status.LastEntryTime.Unix())
	assert.Equal(t, int64(1_700_000_000), status.OldestEntryTime.Unix())
	assert.Greater(t, status.TableSizeBytes, int64(0))
}

func TestNoneBackendCacheStore(t *testing.T) {
	store, err := NewCacheStore(historyTable, schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestNewCacheStoreErrors(t *testing.T) {
	_, err := NewCacheStore("bad-name", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err)

	_, err = NewCacheStore(historyTable, schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
}

func TestGetUpsertQuery(t *testing.T) {
	mysqlStore := &CacheStoreImpl{tableName: "t", backend: schema.MySQLBackend}
	assert.Contains(t, mysqlStore.getUpsertQuery(), "ON DUPLICATE KEY UPDATE")

	pgStore := &CacheStoreImpl{tableName: "t", backend: schema.PostgreSQLBackend}
	assert.Contains(t, pgStore.getUpsertQuery(), "ON CONFLICT (cache_key)")

	sqliteStore := &CacheStoreImpl{tableName: "t", backend: schema.SQLiteBackend}
	assert.Contains(t, sqliteStore.getUpsertQuery(), "INSERT OR REPLACE")
}

func TestInitStores(t *testing.T) {
	resetGlobals(t)
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.db")
	snapshotPath := filepath.Join(dir, "snapshots.db")

	require.NoError(t, InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, snapshotPath))
	// Idempotent
	require.NoError(t, InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, snapshotPath))

	require.NotNil(t, Manager.GetHistoryStore())
	require.NotNil(t, Manager.GetSnapshotStore())

	_, err := os.Stat(cachePath)
	assert.NoError(t, err)
	_, err = os.Stat(snapshotPath)
	assert.NoError(t, err)
}

func TestInitStores_EmptyBackendsLeaveStoresUnset(t *testing.T) {
	resetGlobals(t)
	require.NoError(t, InitStores("", "", "", ""))
	assert.Nil(t, Manager.GetHistoryStore())
	assert.Nil(t, Manager.GetSnapshotStore())
}

func TestInitStores_Error(t *testing.T) {
	resetGlobals(t)
	err := InitStores(schema.MySQLBackend, "invalid://connection", "", "")
	assert.Error(t, err)
}

func TestCacheStoreManagerConcurrency(t *testing.T) {
	store, err := NewCacheStore(historyTable, schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	mgr := NewCacheStoreManager(store, nil)
	defer func() { _ = store.Close() }()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Go(func() {
			assert.NoError(t, mgr.GetHistoryStore().Set("concurrent_key", []byte("value"), 1, int64(1000+i)))
		})
	}
	wg.Wait()

	_, _, ts, err := store.Get("concurrent_key")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ts, int64(1000))
}

func TestClearCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(historyTable, schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Missing file is fine
	assert.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	assert.Error(t, ClearCache(schema.DatabaseBackend("oracle"), "", ""))
}

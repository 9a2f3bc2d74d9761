package iocache

import (
	"time"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetHistoryStore implements the CacheManager interface.
func (m *MockCacheManager) GetHistoryStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetSnapshotStore implements the CacheManager interface.
func (m *MockCacheManager) GetSnapshotStore() contract.SnapshotStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.SnapshotStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// MockSnapshotStore is a mock implementation of SnapshotStore for testing.
type MockSnapshotStore struct {
	mock.Mock
}

var _ contract.SnapshotStore = &MockSnapshotStore{} // Compile-time check

// BeginRun implements the SnapshotStore interface.
func (m *MockSnapshotStore) BeginRun(scanRoot, since string, startedAt time.Time) (string, error) {
	args := m.Called(scanRoot, since, startedAt)
	return args.String(0), args.Error(1)
}

// EndRun implements the SnapshotStore interface.
func (m *MockSnapshotStore) EndRun(runID string, finishedAt time.Time, projectCount int, runErr error) error {
	args := m.Called(runID, finishedAt, projectCount, runErr)
	return args.Error(0)
}

// RecordProject implements the SnapshotStore interface.
func (m *MockSnapshotStore) RecordProject(runID string, capturedAt time.Time, metrics schema.ProjectMetrics) error {
	args := m.Called(runID, capturedAt, metrics)
	return args.Error(0)
}

// GetStatus implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetStatus() (schema.SnapshotStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.SnapshotStatus), args.Error(1)
}

// ListRuns implements the SnapshotStore interface.
func (m *MockSnapshotStore) ListRuns() ([]schema.SyncRunRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.SyncRunRecord)
	return records, args.Error(1)
}

// ListProjectSnapshots implements the SnapshotStore interface.
func (m *MockSnapshotStore) ListProjectSnapshots() ([]schema.ProjectSnapshotRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.ProjectSnapshotRecord)
	return records, args.Error(1)
}

// ListAuthorSnapshots implements the SnapshotStore interface.
func (m *MockSnapshotStore) ListAuthorSnapshots() ([]schema.AuthorSnapshotRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.AuthorSnapshotRecord)
	return records, args.Error(1)
}

// Close implements the SnapshotStore interface.
func (m *MockSnapshotStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

package iocache

import (
	"time"

	"github.com/elomagic/dtreport/internal/contract"
	"github.com/elomagic/dtreport/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetSnapshotStore implements the CacheManager interface.
func (m *MockCacheManager) GetSnapshotStore() contract.SnapshotStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.SnapshotStore)
	return store
}

// MockSnapshotStore is a mock implementation of SnapshotStore for testing.
type MockSnapshotStore struct {
	mock.Mock
}

var _ contract.SnapshotStore = &MockSnapshotStore{} // Compile-time check

// SaveSnapshots implements the SnapshotStore interface.
func (m *MockSnapshotStore) SaveSnapshots(snapshots []schema.ProjectSnapshot, fetchedAt time.Time) error {
	args := m.Called(snapshots, fetchedAt)
	return args.Error(0)
}

// LoadSnapshots implements the SnapshotStore interface.
func (m *MockSnapshotStore) LoadSnapshots() ([]schema.ProjectSnapshot, error) {
	args := m.Called()
	snapshots, _ := args.Get(0).([]schema.ProjectSnapshot)
	return snapshots, args.Error(1)
}

// GetStatus implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the SnapshotStore interface.
func (m *MockSnapshotStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

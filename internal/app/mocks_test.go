package app

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/thoreinstein/packprefs/internal/backup"
)

type mockDiscoverer struct{ mock.Mock }

func (m *mockDiscoverer) Prefixes() ([]string, error) {
	args := m.Called()
	prefixes, _ := args.Get(0).([]string)
	return prefixes, args.Error(1)
}

type mockResolver struct{ mock.Mock }

func (m *mockResolver) ResolveUncached(ctx context.Context, ids []uint64, cache map[uint64]string) (map[uint64]string, error) {
	args := m.Called(ctx, ids, cache)
	names, _ := args.Get(0).(map[uint64]string)
	return names, args.Error(1)
}

type mockSnapshotter struct{ mock.Mock }

func (m *mockSnapshotter) Create(settingsDir string) (string, error) {
	args := m.Called(settingsDir)
	return args.String(0), args.Error(1)
}

func (m *mockSnapshotter) List(settingsDir string) ([]string, error) {
	args := m.Called(settingsDir)
	paths, _ := args.Get(0).([]string)
	return paths, args.Error(1)
}

func (m *mockSnapshotter) Restore(backupPath, settingsDir string) (string, error) {
	args := m.Called(backupPath, settingsDir)
	return args.String(0), args.Error(1)
}

func (m *mockSnapshotter) Prune(settingsDir string, keep int) ([]string, error) {
	args := m.Called(settingsDir, keep)
	paths, _ := args.Get(0).([]string)
	return paths, args.Error(1)
}

func (m *mockSnapshotter) Resolve(settingsDir, nameOrPath string) (string, error) {
	args := m.Called(settingsDir, nameOrPath)
	return args.String(0), args.Error(1)
}

func (m *mockSnapshotter) Describe(path string) (backup.Snapshot, error) {
	args := m.Called(path)
	s, _ := args.Get(0).(backup.Snapshot)
	return s, args.Error(1)
}

package mocks

import (
	"github.com/harnesslab/mockfs/filesystem"
	"github.com/stretchr/testify/mock"
)

// MockAllocator implements filesystem.Allocator for testing across packages,
// in particular the spill-failure paths that the real temp-dir allocator
// only hits on resource exhaustion.
type MockAllocator struct {
	mock.Mock
}

func (m *MockAllocator) Create() (filesystem.SpillFile, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(filesystem.SpillFile), args.Error(1)
}

func (m *MockAllocator) Release(f filesystem.SpillFile) error {
	args := m.Called(f)
	return args.Error(0)
}

var _ filesystem.Allocator = (*MockAllocator)(nil)

package identity

import (
	"github.com/ktcalder/chatrelay/internal/types"
	"github.com/stretchr/testify/mock"
)

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Upsert(username, connId string) (types.Identity, error) {
	args := m.Called(username, connId)
	return args.Get(0).(types.Identity), args.Error(1)
}

func (m *MockDirectory) Release(connId string) (types.Identity, bool, error) {
	args := m.Called(connId)
	return args.Get(0).(types.Identity), args.Bool(1), args.Error(2)
}

func (m *MockDirectory) List() ([]types.Identity, error) {
	args := m.Called()
	return args.Get(0).([]types.Identity), args.Error(1)
}

func (m *MockDirectory) Close() error {
	args := m.Called()
	return args.Error(0)
}

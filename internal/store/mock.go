package store

import (
	"time"

	"github.com/ktcalder/chatrelay/internal/types"
	"github.com/stretchr/testify/mock"
)

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMessageRepository) CreateMessage(msg Message) (Message, error) {
	args := m.Called(msg)
	return args.Get(0).(Message), args.Error(1)
}

func (m *MockMessageRepository) GetMessage(id int64) (Message, error) {
	args := m.Called(id)
	return args.Get(0).(Message), args.Error(1)
}

func (m *MockMessageRepository) UpdateReactions(id int64, reactions types.Reactions) error {
	args := m.Called(id, reactions)
	return args.Error(0)
}

func (m *MockMessageRepository) UpdateReadBy(id int64, readBy []string) error {
	args := m.Called(id, readBy)
	return args.Error(0)
}

func (m *MockMessageRepository) ListMessages(roomId string, before time.Time, limit int) ([]Message, error) {
	args := m.Called(roomId, before, limit)
	return args.Get(0).([]Message), args.Error(1)
}

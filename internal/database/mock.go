package database

import (
	"github.com/stretchr/testify/mock"
)

type MockChessRepository struct {
	mock.Mock
}

func (m *MockChessRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockChessRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChessRepository) UpdateAccount(params UpdateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChessRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChessRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChessRepository) CreateRoom(params CreateRoomParams) (Room, error) {
	args := m.Called(params)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockChessRepository) GetRoomByExternalId(externalId string) (Room, error) {
	args := m.Called(externalId)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockChessRepository) ListRooms() ([]Room, error) {
	args := m.Called()
	return args.Get(0).([]Room), args.Error(1)
}
func (m *MockChessRepository) SetOpponent(roomId, accountId int) (Room, error) {
	args := m.Called(roomId, accountId)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockChessRepository) UpdateRoomPosition(params UpdatePositionParams) (Room, error) {
	args := m.Called(params)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockChessRepository) IncrementRoomViews(roomId int) (int, error) {
	args := m.Called(roomId)
	return args.Int(0), args.Error(1)
}

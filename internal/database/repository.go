package database

import "errors"

var (
	// ErrVersionConflict is returned by UpdateRoomPosition when the room's
	// position changed since the caller last read it.
	ErrVersionConflict = errors.New("position version conflict")
	// ErrSeatTaken is returned by SetOpponent when the room already has an
	// opponent.
	ErrSeatTaken = errors.New("seat already taken")
	// ErrNotFound is returned when a room or account does not exist.
	ErrNotFound = errors.New("not found")
)

type ChessRepository interface {
	Ping() error
	CreateAccount(params CreateAccountParams) (User, error)
	UpdateAccount(params UpdateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByEmail(email string) (User, error)
	CreateRoom(params CreateRoomParams) (Room, error)
	GetRoomByExternalId(externalId string) (Room, error)
	ListRooms() ([]Room, error)
	SetOpponent(roomId, accountId int) (Room, error)
	UpdateRoomPosition(params UpdatePositionParams) (Room, error)
	IncrementRoomViews(roomId int) (int, error)
}

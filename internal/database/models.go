package database

import (
	"database/sql"
	"time"
)

type Room struct {
	Id               int
	ExternalId       string
	CreatorId        int
	CreatorUsername  string
	OpponentId       sql.NullInt64
	OpponentUsername sql.NullString
	CreatorColor     string
	Fen              string
	IsCompleted      bool
	PositionVersion  int
	Views            int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type User struct {
	Id           int
	Username     string
	EmailAddress string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateAccountParams struct {
	Username     string
	EmailAddress string
	PasswordHash string
}

type UpdateAccountParams struct {
	UserId       int
	Username     string
	PasswordHash string
}

type CreateRoomParams struct {
	ExternalId   string
	CreatorId    int
	CreatorColor string
	Fen          string
}

type UpdatePositionParams struct {
	RoomId          int
	Fen             string
	IsCompleted     bool
	ExpectedVersion int
}

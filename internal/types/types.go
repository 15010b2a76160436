package types

import (
	"time"
)

type User struct {
	Id           int       `json:"id"`
	Username     string    `json:"username"`
	EmailAddress string    `json:"email_address,omitempty"`
	Password     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

const (
	RoomStatusOpen       = "open"
	RoomStatusInProgress = "in_progress"
	RoomStatusCompleted  = "completed"
)

type Room struct {
	Id           int       `json:"id"`
	ExternalId   string    `json:"external_id"`
	Creator      User      `json:"creator"`
	Opponent     *User     `json:"opponent,omitempty"`
	CreatorColor string    `json:"creator_color"`
	Fen          string    `json:"fen"`
	Turn         string    `json:"turn"`
	IsCompleted  bool      `json:"is_completed"`
	Views        int       `json:"views"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

package game

import (
	"net/http"
	"time"

	"github.com/npezzotti/go-chessroom/internal/types"
)

type BaseMessage struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ClientMessage struct {
	BaseMessage
	Join     *Join     `json:"join,omitempty"`
	Leave    *Leave    `json:"leave,omitempty"`
	Move     *Move     `json:"move,omitempty"`
	Select   *Select   `json:"select,omitempty"`
	Promote  *Promote  `json:"promote,omitempty"`
	TakeSeat *TakeSeat `json:"take_seat,omitempty"`
	UserId   int       `json:"-"`
	client   *Client   `json:"-"`
}

type Join struct {
	RoomId string `json:"room_id"`
}

type Leave struct {
	RoomId string `json:"room_id"`
}

// Move is the one-shot drag/drop path: source, destination and (for pawn
// promotions) the piece arrive together.
type Move struct {
	RoomId    string `json:"room_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// Select is one click of the two-step path.
type Select struct {
	RoomId string `json:"room_id"`
	Square string `json:"square"`
}

// Promote finalizes or cancels a pending promotion.
type Promote struct {
	RoomId string `json:"room_id"`
	Piece  string `json:"piece,omitempty"`
	Cancel bool   `json:"cancel,omitempty"`
}

type TakeSeat struct {
	RoomId string `json:"room_id"`
}

type ServerMessage struct {
	BaseMessage
	Response     *Response     `json:"response,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
	SkipClient   *Client       `json:"-"`
}

type Response struct {
	ResponseCode int            `json:"response_code"`
	Error        string         `json:"error,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
}

type Notification struct {
	Position  *PositionUpdate `json:"position,omitempty"`
	SeatTaken *SeatTaken      `json:"seat_taken,omitempty"`
	Views     *ViewCount      `json:"views,omitempty"`
}

// PositionUpdate is broadcast to every client in a room after each
// committed move. Clients overwrite their local position with it;
// re-applying an identical position is a no-op.
type PositionUpdate struct {
	RoomId      string `json:"room_id"`
	Fen         string `json:"fen"`
	Turn        string `json:"turn"`
	IsCompleted bool   `json:"is_completed"`
	Version     int    `json:"version"`
}

type SeatTaken struct {
	RoomId string     `json:"room_id"`
	User   types.User `json:"user"`
}

type ViewCount struct {
	RoomId string `json:"room_id"`
	Views  int    `json:"views"`
}

func NoErrOK(id int, data map[string]any) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusOK,
			Data:         data,
		},
	}
}

func NoErrAccepted(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusAccepted,
		},
	}
}

func ErrRoomNotFound(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusNotFound,
			Error:        "room not found",
		},
	}
}

func ErrInternalError(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusInternalServerError,
			Error:        "internal server error",
		},
	}
}

func ErrServiceUnavailable(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusServiceUnavailable,
			Error:        "service unavailable",
		},
	}
}

func ErrInvalidMessage(id int) *ServerMessage {
	msg := &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "invalid message format",
		},
	}

	if id > 0 {
		msg.Id = id
	}
	return msg
}

func ErrUnauthorized(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusUnauthorized,
			Error:        "unauthorized",
		},
	}
}

func ErrGameCompleted(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusConflict,
			Error:        "game is completed",
		},
	}
}

func ErrSeatTaken(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusConflict,
			Error:        "seat already taken",
		},
	}
}

func ErrStalePosition(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusConflict,
			Error:        "position out of date",
		},
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}

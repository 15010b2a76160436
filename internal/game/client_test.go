package game

import (
	"net/http"
	"testing"

	"github.com/npezzotti/go-chessroom/internal/database"
	"github.com/npezzotti/go-chessroom/internal/stats"
	"github.com/npezzotti/go-chessroom/internal/testutil"
	"github.com/npezzotti/go-chessroom/internal/types"
	"github.com/stretchr/testify/assert"
)

func Test_queueMessage(t *testing.T) {
	c := newTestClient(types.User{Id: 1})
	c.log = testutil.TestLogger(t)

	assert.True(t, c.queueMessage(NoErrOK(1, nil)))
	assert.Len(t, c.send, 1)

	c.send = make(chan *ServerMessage, 1)
	c.send <- NoErrOK(1, nil)
	assert.False(t, c.queueMessage(NoErrOK(2, nil)), "expected send to fail on a full channel")
}

func Test_addRoom_getRoom_delRoom(t *testing.T) {
	c := newTestClient(types.User{Id: 1})

	db := &database.MockChessRepository{}
	gs := newTestGameServer(t, db, &stats.MockStatsUpdater{})
	room := newTestRoom(t, gs, testDbRoom())

	c.addRoom(room)
	assert.Equal(t, room, c.getRoom(room.externalId))

	c.delRoom(room.externalId)
	assert.Nil(t, c.getRoom(room.externalId))
}

func Test_routeToRoom(t *testing.T) {
	t.Run("unknown room", func(t *testing.T) {
		c := newTestClient(types.User{Id: 1})
		c.log = testutil.TestLogger(t)

		c.routeToRoom(&ClientMessage{BaseMessage: BaseMessage{Id: 1}}, "missing")

		msg := recvMessage(t, c)
		assert.Equal(t, http.StatusNotFound, msg.Response.ResponseCode)
	})

	t.Run("delivers to room channel", func(t *testing.T) {
		c := newTestClient(types.User{Id: 1})
		c.log = testutil.TestLogger(t)

		db := &database.MockChessRepository{}
		gs := newTestGameServer(t, db, &stats.MockStatsUpdater{})
		room := newTestRoom(t, gs, testDbRoom())
		c.addRoom(room)

		msg := &ClientMessage{
			BaseMessage: BaseMessage{Id: 2},
			Move:        &Move{RoomId: room.externalId, From: "e2", To: "e4"},
			client:      c,
		}
		c.routeToRoom(msg, room.externalId)

		select {
		case got := <-room.clientMsgChan:
			assert.Equal(t, msg, got)
		default:
			t.Error("expected message on the room channel")
		}
	})

	t.Run("full room channel", func(t *testing.T) {
		c := newTestClient(types.User{Id: 1})
		c.log = testutil.TestLogger(t)

		db := &database.MockChessRepository{}
		gs := newTestGameServer(t, db, &stats.MockStatsUpdater{})
		room := newTestRoom(t, gs, testDbRoom())
		room.clientMsgChan = make(chan *ClientMessage, 1)
		room.clientMsgChan <- &ClientMessage{}
		c.addRoom(room)

		c.routeToRoom(&ClientMessage{BaseMessage: BaseMessage{Id: 3}}, room.externalId)

		msg := recvMessage(t, c)
		assert.Equal(t, http.StatusServiceUnavailable, msg.Response.ResponseCode)
	})
}

func Test_leaveRoom(t *testing.T) {
	c := newTestClient(types.User{Id: 1})
	c.log = testutil.TestLogger(t)

	db := &database.MockChessRepository{}
	gs := newTestGameServer(t, db, &stats.MockStatsUpdater{})
	room := newTestRoom(t, gs, testDbRoom())
	c.addRoom(room)

	msg := &ClientMessage{
		BaseMessage: BaseMessage{Id: 1},
		Leave:       &Leave{RoomId: room.externalId},
		client:      c,
	}
	c.leaveRoom(msg)

	select {
	case got := <-room.leaveChan:
		assert.Equal(t, msg, got)
	default:
		t.Error("expected leave message on the room channel")
	}
}

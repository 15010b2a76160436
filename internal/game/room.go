package game

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/npezzotti/go-chessroom/internal/chess"
	"github.com/npezzotti/go-chessroom/internal/database"
	"github.com/npezzotti/go-chessroom/internal/types"
)

const idleRoomTimeout = time.Minute * 5

type exitReq struct {
	done chan string
}

// Room is the authoritative in-memory instance of one game. A single
// goroutine owns the engine and the last committed database snapshot, so
// every join, seat claim and move for the room is serialized through its
// channels.
type Room struct {
	id         int
	externalId string
	gs         *GameServer
	engine     *chess.Engine
	// dbRoom is the last state confirmed by the store
	dbRoom        database.Room
	joinChan      chan *ClientMessage
	leaveChan     chan *ClientMessage
	clientMsgChan chan *ClientMessage
	clients       map[*Client]struct{}
	selectors     map[*Client]*chess.MoveSelector
	clientLock    sync.RWMutex
	log           *log.Logger
	// killTimer unloads the room once no clients remain
	killTimer *time.Timer
	exit      chan exitReq
}

func (r *Room) start() {
	r.log.Printf("starting room %q", r.externalId)
	r.killTimer = time.NewTimer(idleRoomTimeout)
	r.killTimer.Stop()

	for {
		select {
		case join := <-r.joinChan:
			r.handleJoin(join)
		case leaveMsg := <-r.leaveChan:
			r.handleLeave(leaveMsg)
		case msg := <-r.clientMsgChan:
			switch {
			case msg.Move != nil:
				r.handleMove(msg)
			case msg.Select != nil:
				r.handleSelect(msg)
			case msg.Promote != nil:
				r.handlePromote(msg)
			case msg.TakeSeat != nil:
				r.handleTakeSeat(msg)
			}
		case <-r.killTimer.C:
			r.handleRoomTimeout()
		case e := <-r.exit:
			r.handleRoomExit(e)
			return
		}
	}
}

func (r *Room) handleRoomTimeout() {
	r.log.Printf("room %q timed out", r.externalId)
	select {
	case r.gs.unloadRoomChan <- r.externalId:
	default:
		// retry on the next tick if the server is busy
		r.killTimer.Reset(idleRoomTimeout)
	}
}

func (r *Room) handleRoomExit(e exitReq) {
	r.log.Printf("room %q is exiting", r.externalId)

	r.clientLock.Lock()
	for c := range r.clients {
		c.delRoom(r.externalId)
	}
	r.clients = make(map[*Client]struct{})
	r.selectors = make(map[*Client]*chess.MoveSelector)
	r.clientLock.Unlock()

	if e.done != nil {
		e.done <- r.externalId
	}
}

// handleJoin admits a client: it is added to the fan-out set, an identified
// viewer bumps the view counter (atomically, in the store), and the client
// receives a full snapshot of the room read from the last committed state,
// so it never has to trust the channel for anything it missed.
func (r *Room) handleJoin(join *ClientMessage) {
	r.killTimer.Stop()

	c := join.client
	if r.hasClient(c) {
		// rejoin on the same connection: resend the snapshot, no view bump
		c.queueMessage(NoErrOK(join.Id, map[string]any{"room": r.roomInfo()}))
		return
	}

	if join.UserId != 0 {
		views, err := r.gs.db.IncrementRoomViews(r.id)
		if err != nil {
			r.log.Println("IncrementRoomViews:", err)
		} else {
			r.dbRoom.Views = views
			r.broadcast(&ServerMessage{
				Notification: &Notification{
					Views: &ViewCount{RoomId: r.externalId, Views: views},
				},
			})
		}
	}

	r.addClient(c)
	c.queueMessage(NoErrOK(join.Id, map[string]any{"room": r.roomInfo()}))
}

func (r *Room) handleLeave(leaveMsg *ClientMessage) {
	r.removeClient(leaveMsg.client)

	if leaveMsg.Id != 0 {
		leaveMsg.client.queueMessage(NoErrOK(leaveMsg.Id, nil))
	}
}

// handleTakeSeat claims the open seat for the requesting user. The store
// update is conditional, so the seat is assigned at most once even if two
// clients race through different room instances.
func (r *Room) handleTakeSeat(msg *ClientMessage) {
	if msg.UserId == 0 {
		msg.client.queueMessage(ErrUnauthorized(msg.Id))
		return
	}

	if r.dbRoom.OpponentId.Valid || msg.UserId == r.dbRoom.CreatorId {
		msg.client.queueMessage(ErrSeatTaken(msg.Id))
		return
	}

	updated, err := r.gs.db.SetOpponent(r.id, msg.UserId)
	if err != nil {
		if errors.Is(err, database.ErrSeatTaken) {
			r.reload()
			msg.client.queueMessage(ErrSeatTaken(msg.Id))
			return
		}

		r.log.Println("SetOpponent:", err)
		msg.client.queueMessage(ErrInternalError(msg.Id))
		return
	}

	r.dbRoom = updated
	msg.client.queueMessage(NoErrOK(msg.Id, map[string]any{"room": r.roomInfo()}))

	r.broadcast(&ServerMessage{
		Notification: &Notification{
			SeatTaken: &SeatTaken{
				RoomId: r.externalId,
				User: types.User{
					Id:       msg.UserId,
					Username: msg.client.user.Username,
				},
			},
		},
		SkipClient: msg.client,
	})
}

// handleMove is the one-shot path: source, destination and promotion piece
// arrive together.
func (r *Room) handleMove(msg *ClientMessage) {
	r.commitMove(msg, chess.Move{
		From:      msg.Move.From,
		To:        msg.Move.To,
		Promotion: msg.Move.Promotion,
	})
}

// handleSelect is one click of the two-step path, driven through the
// client's selection state machine.
func (r *Room) handleSelect(msg *ClientMessage) {
	if r.dbRoom.IsCompleted {
		msg.client.queueMessage(ErrGameCompleted(msg.Id))
		return
	}

	if !mayMove(r.dbRoom, r.engine.SideToMove(), msg.UserId) {
		// spectators and the non-moving player cannot select; not an error
		return
	}

	sel := r.selectorFor(msg.client)
	res := sel.Select(msg.Select.Square)

	switch res.Action {
	case chess.SelectCleared:
		msg.client.queueMessage(NoErrOK(msg.Id, nil))
	case chess.SelectSource:
		msg.client.queueMessage(NoErrOK(msg.Id, map[string]any{
			"square":  msg.Select.Square,
			"targets": res.Targets,
		}))
	case chess.SelectPromotion:
		msg.client.queueMessage(NoErrOK(msg.Id, map[string]any{
			"promotion_required": true,
			"from":               res.Move.From,
			"to":                 res.Move.To,
		}))
	case chess.SelectMove:
		r.commitMove(msg, res.Move)
	}
}

// handlePromote finalizes or cancels a promotion pending in the client's
// selection state machine.
func (r *Room) handlePromote(msg *ClientMessage) {
	sel := r.selectorFor(msg.client)

	if msg.Promote.Cancel {
		sel.Cancel()
		msg.client.queueMessage(NoErrOK(msg.Id, nil))
		return
	}

	mv, ok := sel.Promote(msg.Promote.Piece)
	if !ok {
		msg.client.queueMessage(ErrInvalidMessage(msg.Id))
		return
	}

	r.commitMove(msg, mv)
}

// commitMove runs the move submission pipeline: completed-room guard, turn
// authorization, engine legality, then a versioned store write, and on
// success fans the new position out to every client in the room.
func (r *Room) commitMove(msg *ClientMessage, mv chess.Move) {
	if r.dbRoom.IsCompleted {
		msg.client.queueMessage(ErrGameCompleted(msg.Id))
		return
	}

	if !mayMove(r.dbRoom, r.engine.SideToMove(), msg.UserId) {
		// the engine is never consulted for an unauthorized move
		r.log.Printf("unauthorized move attempt by user %d in room %q", msg.UserId, r.externalId)
		return
	}

	if err := r.engine.ApplyMove(mv); err != nil {
		// expected user error; reset the selection and move on
		r.log.Printf("rejected move in room %q: %v", r.externalId, err)
		r.selectorFor(msg.client).Reset()
		return
	}

	updated, err := r.gs.db.UpdateRoomPosition(database.UpdatePositionParams{
		RoomId:          r.id,
		Fen:             r.engine.FEN(),
		IsCompleted:     r.engine.GameOver(),
		ExpectedVersion: r.dbRoom.PositionVersion,
	})
	if err != nil {
		if errors.Is(err, database.ErrVersionConflict) {
			// another commit landed first; resync from the store and
			// rebroadcast so everyone converges
			r.log.Printf("version conflict in room %q, resyncing", r.externalId)
			r.reload()
			r.broadcastPosition()
			msg.client.queueMessage(ErrStalePosition(msg.Id))
			return
		}

		// roll the engine back to the last committed position; the write
		// is not retried
		r.log.Println("UpdateRoomPosition:", err)
		if loadErr := r.engine.Load(r.dbRoom.Fen); loadErr != nil {
			r.log.Println("rollback position:", loadErr)
		}
		msg.client.queueMessage(ErrInternalError(msg.Id))
		return
	}

	r.dbRoom = updated
	r.resetSelectors()
	r.gs.stats.Incr(statMovesCommitted)

	msg.client.queueMessage(NoErrAccepted(msg.Id))
	r.broadcastPosition()
}

// reload refreshes the engine and snapshot from the store.
func (r *Room) reload() {
	dbRoom, err := r.gs.db.GetRoomByExternalId(r.externalId)
	if err != nil {
		r.log.Println("GetRoomByExternalId:", err)
		return
	}

	if err := r.engine.Load(dbRoom.Fen); err != nil {
		r.log.Println("load position:", err)
		return
	}

	r.dbRoom = dbRoom
	r.resetSelectors()
}

// broadcastPosition sends the committed position to every client in the
// room, the mover included; clients treat an identical position as a no-op.
func (r *Room) broadcastPosition() {
	r.broadcast(&ServerMessage{
		Notification: &Notification{
			Position: &PositionUpdate{
				RoomId:      r.externalId,
				Fen:         r.dbRoom.Fen,
				Turn:        r.engine.SideToMove(),
				IsCompleted: r.dbRoom.IsCompleted,
				Version:     r.dbRoom.PositionVersion,
			},
		},
	})
}

func (r *Room) roomInfo() types.Room {
	return RoomInfo(r.dbRoom, r.engine.SideToMove())
}

func (r *Room) selectorFor(c *Client) *chess.MoveSelector {
	r.clientLock.Lock()
	defer r.clientLock.Unlock()

	sel, ok := r.selectors[c]
	if !ok {
		sel = chess.NewMoveSelector(r.engine)
		r.selectors[c] = sel
	}
	return sel
}

// resetSelectors clears every in-progress selection; they were computed
// against a position that no longer exists.
func (r *Room) resetSelectors() {
	r.clientLock.Lock()
	defer r.clientLock.Unlock()

	for _, sel := range r.selectors {
		sel.Reset()
	}
}

func (r *Room) hasClient(c *Client) bool {
	r.clientLock.RLock()
	defer r.clientLock.RUnlock()

	_, ok := r.clients[c]
	return ok
}

func (r *Room) addClient(c *Client) {
	r.clientLock.Lock()
	defer r.clientLock.Unlock()

	r.clients[c] = struct{}{}
	c.addRoom(r)
}

func (r *Room) removeClient(c *Client) {
	r.clientLock.Lock()
	defer r.clientLock.Unlock()

	if _, ok := r.clients[c]; !ok {
		r.log.Printf("client %q not found in room %q", c.user.Username, r.externalId)
		return
	}

	delete(r.clients, c)
	delete(r.selectors, c)
	c.delRoom(r.externalId)

	if len(r.clients) == 0 {
		r.log.Printf("no clients in %q, starting kill timer", r.externalId)
		r.killTimer.Reset(idleRoomTimeout)
	}
}

func (r *Room) broadcast(msg *ServerMessage) {
	msg.Timestamp = Now()

	r.clientLock.RLock()
	defer r.clientLock.RUnlock()

	for client := range r.clients {
		if client == msg.SkipClient {
			continue
		}

		client.queueMessage(msg)
	}
}

// RoomInfo converts a store snapshot to the API shape.
func RoomInfo(rm database.Room, turn string) types.Room {
	info := types.Room{
		Id:         rm.Id,
		ExternalId: rm.ExternalId,
		Creator: types.User{
			Id:       rm.CreatorId,
			Username: rm.CreatorUsername,
		},
		CreatorColor: rm.CreatorColor,
		Fen:          rm.Fen,
		Turn:         turn,
		IsCompleted:  rm.IsCompleted,
		Views:        rm.Views,
		Status:       types.RoomStatusOpen,
		CreatedAt:    rm.CreatedAt,
		UpdatedAt:    rm.UpdatedAt,
	}

	if rm.OpponentId.Valid {
		info.Opponent = &types.User{
			Id:       int(rm.OpponentId.Int64),
			Username: rm.OpponentUsername.String,
		}
		info.Status = types.RoomStatusInProgress
	}

	if rm.IsCompleted {
		info.Status = types.RoomStatusCompleted
	}

	return info
}

package game

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/npezzotti/go-chessroom/internal/chess"
	"github.com/npezzotti/go-chessroom/internal/database"
	"github.com/npezzotti/go-chessroom/internal/stats"
)

const (
	statActiveConnections = "ActiveConnections"
	statActiveRooms       = "ActiveRooms"
	statMovesCommitted    = "MovesCommitted"
)

// GameServer owns the registry of loaded rooms. Rooms are loaded from the
// store on the first join and unloaded again after sitting idle.
type GameServer struct {
	log            *log.Logger
	db             database.ChessRepository
	stats          stats.StatsProvider
	clients        map[*Client]struct{}
	clientsLock    sync.Mutex
	joinChan       chan *ClientMessage
	RegisterChan   chan *Client
	deRegisterChan chan *Client
	unloadRoomChan chan string
	rooms          map[string]*Room
	stop           chan struct{}
	done           chan struct{}
}

func NewGameServer(logger *log.Logger, db database.ChessRepository, sp stats.StatsProvider) (*GameServer, error) {
	if logger == nil || db == nil || sp == nil {
		return nil, fmt.Errorf("logger, db and stats are required")
	}

	sp.RegisterMetric(statActiveConnections)
	sp.RegisterMetric(statActiveRooms)
	sp.RegisterMetric(statMovesCommitted)

	return &GameServer{
		log:            logger,
		db:             db,
		stats:          sp,
		clients:        make(map[*Client]struct{}),
		joinChan:       make(chan *ClientMessage, 256),
		RegisterChan:   make(chan *Client),
		deRegisterChan: make(chan *Client),
		unloadRoomChan: make(chan string, 256),
		rooms:          make(map[string]*Room),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}, nil
}

func (gs *GameServer) Run() {
	for {
		select {
		case joinMsg := <-gs.joinChan:
			gs.handleJoin(joinMsg)
		case client := <-gs.RegisterChan:
			gs.addClient(client)
			gs.stats.Incr(statActiveConnections)
		case client := <-gs.deRegisterChan:
			gs.removeClient(client)
			gs.stats.Decr(statActiveConnections)
		case id := <-gs.unloadRoomChan:
			gs.unloadRoom(id)
		case <-gs.stop:
			gs.log.Println("shutting down rooms")
			for _, r := range gs.rooms {
				done := make(chan string)
				r.exit <- exitReq{done: done}
				<-done
			}

			close(gs.done)
			return
		}
	}
}

// handleJoin routes a join to the loaded room, loading it from the store
// first if needed.
func (gs *GameServer) handleJoin(joinMsg *ClientMessage) {
	if room, ok := gs.rooms[joinMsg.Join.RoomId]; ok {
		select {
		case room.joinChan <- joinMsg:
		default:
			gs.log.Printf("join channel full on room %q", room.externalId)
			joinMsg.client.queueMessage(ErrServiceUnavailable(joinMsg.Id))
		}
		return
	}

	room, err := gs.loadRoom(joinMsg.Join.RoomId)
	if err != nil {
		gs.log.Println("load room:", err)
		joinMsg.client.queueMessage(ErrRoomNotFound(joinMsg.Id))
		return
	}

	gs.rooms[room.externalId] = room
	gs.stats.Incr(statActiveRooms)
	room.joinChan <- joinMsg

	go room.start()
}

// loadRoom reads the room's committed state from the store and builds a
// live instance around it.
func (gs *GameServer) loadRoom(externalId string) (*Room, error) {
	dbRoom, err := gs.db.GetRoomByExternalId(externalId)
	if err != nil {
		return nil, err
	}

	engine := chess.NewEngine()
	if err := engine.Load(dbRoom.Fen); err != nil {
		return nil, fmt.Errorf("load position for room %q: %w", externalId, err)
	}

	return &Room{
		id:            dbRoom.Id,
		externalId:    dbRoom.ExternalId,
		gs:            gs,
		engine:        engine,
		dbRoom:        dbRoom,
		joinChan:      make(chan *ClientMessage, 256),
		leaveChan:     make(chan *ClientMessage, 256),
		clientMsgChan: make(chan *ClientMessage, 256),
		clients:       make(map[*Client]struct{}),
		selectors:     make(map[*Client]*chess.MoveSelector),
		log:           gs.log,
		exit:          make(chan exitReq),
	}, nil
}

func (gs *GameServer) unloadRoom(roomId string) {
	r, ok := gs.rooms[roomId]
	if !ok {
		return
	}

	gs.log.Printf("unloading room %q", r.externalId)
	delete(gs.rooms, roomId)
	gs.stats.Decr(statActiveRooms)

	done := make(chan string)
	r.exit <- exitReq{done: done}
	<-done
}

func (gs *GameServer) RegisterClient(c *Client) {
	gs.RegisterChan <- c
}

func (gs *GameServer) addClient(c *Client) {
	gs.clientsLock.Lock()
	defer gs.clientsLock.Unlock()
	gs.clients[c] = struct{}{}
}

func (gs *GameServer) removeClient(c *Client) {
	gs.clientsLock.Lock()
	defer gs.clientsLock.Unlock()
	delete(gs.clients, c)
}

func (gs *GameServer) Shutdown(ctx context.Context) error {
	gs.log.Println("received shutdown signal")

	gs.clientsLock.Lock()
	for c := range gs.clients {
		c.stopClient()
	}
	gs.clientsLock.Unlock()

	close(gs.stop)

	select {
	case <-gs.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

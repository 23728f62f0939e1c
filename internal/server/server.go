package server

import (
	"context"
	"log"

	"github.com/ktcalder/chatrelay/internal/identity"
	"github.com/ktcalder/chatrelay/internal/stats"
	"github.com/ktcalder/chatrelay/internal/store"
)

// ChatServer owns the transient room-membership state and performs all
// fan-out. The run loop is the only goroutine that touches clients and
// rooms; everything else hands it work over buffered channels.
type ChatServer struct {
	log       *log.Logger
	store     store.MessageRepository
	directory identity.Directory
	stats     stats.StatsProvider

	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}

	RegisterChan   chan *Client
	deRegisterChan chan *Client
	joinChan       chan *membershipReq
	leaveChan      chan *membershipReq
	broadcastChan  chan *broadcast
	stop           chan stopReq
	done           chan struct{}
}

type membershipReq struct {
	id     int
	roomId string
	client *Client
	// announce sends an ack to the requesting client and a
	// user:joined/user:left event to the room. Private-room
	// subscriptions made during login are silent.
	announce bool
}

// broadcast targets one room, or every connected client when roomId is
// empty.
type broadcast struct {
	roomId string
	event  *ServerEvent
}

type stopReq struct {
	done chan struct{}
}

func NewChatServer(logger *log.Logger, st store.MessageRepository, dir identity.Directory, su stats.StatsProvider) (*ChatServer, error) {
	su.RegisterMetric("NumConnections")
	su.RegisterMetric("NumOnlineUsers")
	su.RegisterMetric("NumRooms")
	su.RegisterMetric("MessagesSent")

	return &ChatServer{
		log:            logger,
		store:          st,
		directory:      dir,
		stats:          su,
		clients:        make(map[*Client]struct{}),
		rooms:          make(map[string]map[*Client]struct{}),
		RegisterChan:   make(chan *Client, 256),
		deRegisterChan: make(chan *Client, 256),
		joinChan:       make(chan *membershipReq, 256),
		leaveChan:      make(chan *membershipReq, 256),
		broadcastChan:  make(chan *broadcast, 256),
		stop:           make(chan stopReq),
		done:           make(chan struct{}),
	}, nil
}

func (cs *ChatServer) Run() {
	for {
		select {
		case c := <-cs.RegisterChan:
			cs.log.Printf("adding connection %q", c.connId)
			cs.addClient(c)
		case c := <-cs.deRegisterChan:
			cs.log.Printf("removing connection %q", c.connId)
			cs.removeClient(c)
		case req := <-cs.joinChan:
			cs.joinRoom(req)
		case req := <-cs.leaveChan:
			cs.leaveRoom(req)
		case b := <-cs.broadcastChan:
			cs.fanOut(b)
		case req := <-cs.stop:
			cs.log.Println("stopping client connections")
			for c := range cs.clients {
				c.stopClient()
			}

			close(req.done)
			close(cs.done)
			return
		}
	}
}

func (cs *ChatServer) addClient(c *Client) {
	cs.clients[c] = struct{}{}
	cs.stats.Incr("NumConnections")
}

func (cs *ChatServer) removeClient(c *Client) {
	if _, ok := cs.clients[c]; !ok {
		return
	}

	delete(cs.clients, c)
	cs.dropFromAllRooms(c)
	cs.stats.Decr("NumConnections")
}

func (cs *ChatServer) Shutdown(ctx context.Context) error {
	req := stopReq{done: make(chan struct{})}

	select {
	case cs.stop <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package realtime

import (
	"fmt"
	"log"
	"net/http"

	"github.com/CoreVine/nursy-backend/middleware"
	"github.com/CoreVine/nursy-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Gateway manages per-connection identity resolution, command dispatch and
// room-scoped event fan-out. One instance is constructed in main and passed
// by reference; it owns no global state.
type Gateway struct {
	resolver middleware.IdentityResolver
	dispatch *services.DispatchService
	matching *services.MatchingService
	payments *services.PaymentService
	validate *validator.Validate

	upgrader websocket.Upgrader

	clients map[*Client]bool
	rooms   map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	joins      chan roomOp
	leaves     chan roomOp
	broadcasts chan roomBroadcast
	done       chan struct{}
}

type roomOp struct {
	client *Client
	room   string
}

type roomBroadcast struct {
	room    string
	exclude *Client
	event   Event
}

// NewGateway wires the gateway to its collaborators.
func NewGateway(resolver middleware.IdentityResolver, dispatch *services.DispatchService, matching *services.MatchingService, payments *services.PaymentService) *Gateway {
	return &Gateway{
		resolver: resolver,
		dispatch: dispatch,
		matching: matching,
		payments: payments,
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The socket transport is browser-facing; CORS policy is handled
			// at the HTTP layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		joins:      make(chan roomOp),
		leaves:     make(chan roomOp),
		broadcasts: make(chan roomBroadcast, 64),
		done:       make(chan struct{}),
	}
}

// Start launches the gateway's event loop.
func (g *Gateway) Start() {
	go g.run()
	log.Println("Realtime gateway started")
}

// Stop shuts the gateway down, closing every connection.
func (g *Gateway) Stop() {
	close(g.done)
}

// run serializes all membership and fan-out mutations on one goroutine, so
// command handlers never touch the maps directly.
func (g *Gateway) run() {
	for {
		select {
		case client := <-g.register:
			g.clients[client] = true

		case client := <-g.unregister:
			if _, ok := g.clients[client]; ok {
				delete(g.clients, client)
				for room, members := range g.rooms {
					delete(members, client)
					if len(members) == 0 {
						delete(g.rooms, room)
					}
				}
				close(client.send)
				log.Printf("Client %s disconnected", client.ID)
			}

		case op := <-g.joins:
			if g.rooms[op.room] == nil {
				g.rooms[op.room] = make(map[*Client]bool)
			}
			g.rooms[op.room][op.client] = true

		case op := <-g.leaves:
			if members, ok := g.rooms[op.room]; ok {
				delete(members, op.client)
				if len(members) == 0 {
					delete(g.rooms, op.room)
				}
			}

		case b := <-g.broadcasts:
			for member := range g.rooms[b.room] {
				if member != b.exclude {
					member.Emit(b.event)
				}
			}

		case <-g.done:
			for client := range g.clients {
				close(client.send)
				delete(g.clients, client)
			}
			log.Println("Realtime gateway stopped")
			return
		}
	}
}

// HandleWS upgrades an authenticated HTTP request to a websocket connection.
// The bearer credential comes from the Authorization header or, for browser
// clients that cannot set headers on websocket handshakes, the token query
// parameter.
func (g *Gateway) HandleWS(c *gin.Context) {
	credential := c.GetHeader("Authorization")
	if credential == "" {
		credential = c.Query("token")
	}

	principal, err := g.resolver.ResolvePrincipal(credential)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Invalid or missing credential",
			},
		})
		return
	}

	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}

	client := newClient(uuid.NewString(), principal, g, conn)
	g.register <- client
	log.Printf("Client %s connected (user %d, %s)", client.ID, principal.ID, principal.Type)

	go client.writePump()
	go client.readPump()
}

// orderRoom names the broadcast group scoped to one order.
func orderRoom(orderID uint) string {
	return fmt.Sprintf("requests.rooms.%d", orderID)
}

// joinRoom adds the client to the order's room.
func (g *Gateway) joinRoom(client *Client, orderID uint) {
	select {
	case g.joins <- roomOp{client: client, room: orderRoom(orderID)}:
	case <-g.done:
	}
}

// leaveRoom removes the client from the order's room.
func (g *Gateway) leaveRoom(client *Client, orderID uint) {
	select {
	case g.leaves <- roomOp{client: client, room: orderRoom(orderID)}:
	case <-g.done:
	}
}

// emitToRoom fans an event out to every room member except the sender.
func (g *Gateway) emitToRoom(orderID uint, exclude *Client, event Event) {
	select {
	case g.broadcasts <- roomBroadcast{room: orderRoom(orderID), exclude: exclude, event: event}:
	case <-g.done:
	}
}

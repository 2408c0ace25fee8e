package telemetry

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/gwcore/zigbeedriver/events"
)

// DiagnosticsServer streams event-tracker snapshots to connected WebSocket
// clients, such as a local gateway admin UI. It implements http.Handler;
// mount it on whatever path a caller's HTTP mux wants.
type DiagnosticsServer struct {
	bus      *events.EventBus
	upgrader websocket.Upgrader
	subID    uint64
	mu       sync.Mutex
	clients  map[*diagClient]struct{}
}

type diagClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewDiagnosticsServer creates a server that subscribes to bus immediately;
// every event published from this point on is broadcast to whatever
// clients are connected at publish time.
func NewDiagnosticsServer(bus *events.EventBus) *DiagnosticsServer {
	s := &DiagnosticsServer{
		bus: bus,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*diagClient]struct{}),
	}
	s.subID = bus.Subscribe(s.broadcast)
	return s
}

// ServeHTTP upgrades the connection to a WebSocket and registers it as a
// diagnostics client until it disconnects. The connection is read-only
// from the client's perspective; inbound messages are discarded, read only
// to detect disconnects and respond to control frames.
func (s *DiagnosticsServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &diagClient{conn: conn, send: make(chan []byte, 32)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go s.writeLoop(c)
	s.readLoop(c)
}

func (s *DiagnosticsServer) readLoop(c *diagClient) {
	defer s.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *DiagnosticsServer) writeLoop(c *diagClient) {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (s *DiagnosticsServer) drop(c *diagClient) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	c.conn.Close()
}

// broadcast is the bus subscription handler. A client whose send buffer is
// full is dropped rather than blocking the bus's dispatch goroutine.
func (s *DiagnosticsServer) broadcast(ev events.Event) {
	snap := snapshot{
		Type:      ev.Type(),
		DeviceID:  ev.DeviceID(),
		Timestamp: ev.Timestamp(),
		Event:     ev,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			delete(s.clients, c)
			close(c.send)
			c.conn.Close()
		}
	}
}

// ClientCount returns the number of currently connected diagnostics clients.
func (s *DiagnosticsServer) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close unsubscribes from the event bus and disconnects every connected
// client.
func (s *DiagnosticsServer) Close() error {
	s.bus.Unsubscribe(s.subID)

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
		c.conn.Close()
	}
	return nil
}

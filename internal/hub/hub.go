package hub

import (
	"encoding/json"
	"sync"

	"github.com/cristianxmm/tv-signage-system/internal/config"
	"github.com/cristianxmm/tv-signage-system/internal/log"
)

// Hub owns the set of connected displays and their zone membership.
// A connection belongs to at most one zone: JoinZone replaces the previous
// membership instead of accumulating it. Fan-out iterates a snapshot of the
// target set, so disconnects are safe to interleave with a broadcast.
type Hub struct {
	clients    map[string]*Client            // clientID -> client
	zones      map[string]map[string]*Client // zone -> clientID -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *zoneMessage
	mu         sync.RWMutex
	config     config.WebSocketConfig

	onCountChange func(int)
}

// zoneMessage targets either one zone or, when All is set, every open
// connection regardless of membership.
type zoneMessage struct {
	Zone    string
	All     bool
	Message []byte
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		zones:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *zoneMessage, 256),
		config:     cfg,
	}
}

// SetConnectionCountCallback registers a callback invoked with the number of
// open connections after each register/unregister. Used for metrics.
func (h *Hub) SetConnectionCountCallback(fn func(int)) {
	h.onCountChange = fn
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			count := len(h.clients)
			h.mu.Unlock()
			h.notifyCount(count)
			l := log.L()
			l.Debug().Str(log.FieldClientID, client.ID).Msg("display connected")

		case client := <-h.unregister:
			h.mu.Lock()
			count := len(h.clients)
			if _, ok := h.clients[client.ID]; ok {
				h.removeFromZoneLocked(client)
				delete(h.clients, client.ID)
				count = len(h.clients)
				close(client.Send)
			}
			h.mu.Unlock()
			h.notifyCount(count)
			l := log.L()
			l.Debug().Str(log.FieldClientID, client.ID).Msg("display disconnected")

		case msg := <-h.broadcast:
			for _, client := range h.snapshot(msg) {
				select {
				case client.Send <- msg.Message:
				default:
					go h.removeClient(client)
				}
			}
		}
	}
}

// snapshot copies the delivery set under the read lock so the iteration in
// Run cannot race with membership changes.
func (h *Hub) snapshot(msg *zoneMessage) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.All {
		targets := make([]*Client, 0, len(h.clients))
		for _, c := range h.clients {
			targets = append(targets, c)
		}
		return targets
	}

	zoneClients, ok := h.zones[msg.Zone]
	if !ok {
		return nil
	}
	targets := make([]*Client, 0, len(zoneClients))
	for _, c := range zoneClients {
		targets = append(targets, c)
	}
	return targets
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// JoinZone subscribes the client to a zone, dropping any previous
// membership first. Joining an unknown zone simply creates it; an empty
// zone name is a valid label, not an error.
func (h *Hub) JoinZone(client *Client, zone string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromZoneLocked(client)

	if _, ok := h.zones[zone]; !ok {
		h.zones[zone] = make(map[string]*Client)
	}
	h.zones[zone][client.ID] = client
	client.Session.JoinZone(zone)

	l := log.L()
	l.Info().Str(log.FieldClientID, client.ID).Str(log.FieldZone, zone).Msg("display joined zone")
}

// removeFromZoneLocked drops the client's current membership, if any.
// Caller must hold h.mu.
func (h *Hub) removeFromZoneLocked(client *Client) {
	if !client.Session.IsJoined() {
		return
	}
	zone := client.Session.Zone()
	if zoneClients, ok := h.zones[zone]; ok {
		delete(zoneClients, client.ID)
		if len(zoneClients) == 0 {
			delete(h.zones, zone)
		}
	}
}

// BroadcastToZone delivers a message to every display currently joined to
// the zone. Delivery is fire-and-forget.
func (h *Hub) BroadcastToZone(zone string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.broadcast <- &zoneMessage{Zone: zone, Message: data}
	return nil
}

// BroadcastAll delivers a message to every open connection, including ones
// that never joined a zone.
func (h *Hub) BroadcastAll(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.broadcast <- &zoneMessage{All: true, Message: data}
	return nil
}

// ZoneClientCount returns the number of displays joined to a zone.
func (h *Hub) ZoneClientCount(zone string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if zoneClients, ok := h.zones[zone]; ok {
		return len(zoneClients)
	}
	return 0
}

// ClientCount returns the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) notifyCount(count int) {
	if h.onCountChange != nil {
		h.onCountChange(count)
	}
}

func (h *Hub) removeClient(client *Client) {
	h.unregister <- client
}

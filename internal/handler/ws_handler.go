package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cristianxmm/tv-signage-system/internal/config"
	"github.com/cristianxmm/tv-signage-system/internal/domain"
	"github.com/cristianxmm/tv-signage-system/internal/hub"
	"github.com/cristianxmm/tv-signage-system/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Displays are embedded devices on the local network; origin
		// checks belong to the reverse proxy when one is deployed.
		return true
	},
}

// WSHandler owns the display-facing WebSocket endpoint.
type WSHandler struct {
	hub     *hub.Hub
	service service.DispatchService
	wsCfg   config.WebSocketConfig
}

func NewWSHandler(h *hub.Hub, svc service.DispatchService, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:     h,
		service: svc,
		wsCfg:   wsCfg,
	}
}

// HandleWebSocket upgrades the connection and starts the read/write pumps.
// Displays connect unauthenticated: they only ever receive content.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.wsCfg)

	h.hub.Register(client)

	go client.WritePump()
	go func() {
		client.ReadPump(h.handleMessage)
		if err := h.service.HandleDisconnect(context.Background(), client); err != nil {
			log.Printf("Disconnect handling failed for client %s: %v", client.ID, err)
		}
	}()
}

// handleMessage dispatches one inbound frame. Structured JSON messages are
// preferred, but a frame that is not one is treated as a bare zone name —
// the original join message shape displays send right after connecting.
func (h *WSHandler) handleMessage(client *hub.Client, message []byte) {
	ctx := context.Background()

	payload := bytes.TrimSpace(message)

	var base domain.BaseMessage
	if err := json.Unmarshal(payload, &base); err == nil && base.Type != "" {
		switch base.Type {
		case domain.MsgTypeJoin:
			var msg domain.JoinMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid join message"))
				return
			}
			if err := h.service.HandleJoin(ctx, client, msg.Zone); err != nil {
				log.Printf("Join failed for client %s: %v", client.ID, err)
			}

		case domain.MsgTypePing:
			client.SendMessage(map[string]string{"type": domain.MsgTypePong})

		default:
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Unknown message type"))
		}
		return
	}

	// Bare join: either a raw zone name or a JSON-quoted string.
	zone := string(payload)
	var quoted string
	if err := json.Unmarshal(payload, &quoted); err == nil {
		zone = quoted
	}
	if err := h.service.HandleJoin(ctx, client, zone); err != nil {
		log.Printf("Join failed for client %s: %v", client.ID, err)
	}
}

// RegisterRoutes attaches the WebSocket endpoint.
func (h *WSHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/ws", h.HandleWebSocket)
}

package controllers

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// WebSocketController keeps the set of connected UI clients and broadcasts
// real-time events to them. It implements the service.Notifier port; every
// emission is best-effort.
type WebSocketController struct {
	logger *zap.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewWebSocketController(logger *zap.Logger) *WebSocketController {
	return &WebSocketController{
		logger:  logger,
		clients: make(map[*websocket.Conn]bool),
	}
}

// HandleWebSocket handles WebSocket connections
// HandleWebSocket godoc
// @Summary      WebSocket Endpoint
// @Description  Real-time merchant event stream
// @Tags         websocket
// @Router       /ws [get]
func (h *WebSocketController) HandleWebSocket(c *websocket.Conn) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		c.Close()
	}()

	// Keep reading until the client goes away; inbound frames are ignored.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *WebSocketController) broadcast(event string, merchantID string, payload map[string]interface{}) {
	message, err := json.Marshal(map[string]interface{}{
		"event":       event,
		"merchant_id": merchantID,
		"payload":     payload,
		"timestamp":   time.Now(),
	})
	if err != nil {
		h.logger.Warn("failed to marshal websocket event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
			// Dead connection; the read loop will clean it up.
			h.logger.Debug("websocket write failed", zap.Error(err))
		}
	}
}

func (h *WebSocketController) EmitOrderEvent(merchantID, customerID string, payload map[string]interface{}) {
	h.broadcast("order_update", merchantID, payload)
}

func (h *WebSocketController) EmitProductEvent(merchantID, productID string, payload map[string]interface{}) {
	h.broadcast("product_update", merchantID, payload)
}

func (h *WebSocketController) EmitCashbackEvent(merchantID, customerID string, payload map[string]interface{}) {
	h.broadcast("cashback_update", merchantID, payload)
}

func (h *WebSocketController) SendMerchantUpdate(merchantID string, payload map[string]interface{}) {
	h.broadcast("merchant_update", merchantID, payload)
}

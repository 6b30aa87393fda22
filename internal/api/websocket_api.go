package api

import (
	"go-merchant/internal/controllers"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type WebSocketApi struct {
	controller *controllers.WebSocketController
}

func NewWebSocketApi(controller *controllers.WebSocketController) *WebSocketApi {
	return &WebSocketApi{
		controller: controller,
	}
}

// Setup registers WebSocket route
func (h *WebSocketApi) Setup(app *fiber.App) {
	app.Get("/ws", websocket.New(h.controller.HandleWebSocket))
}

package api

import (
	"go-merchant/internal/controllers"

	"github.com/gofiber/fiber/v2"
)

type CrossAppApi struct {
	controller *controllers.CrossAppController
}

func NewCrossAppApi(controller *controllers.CrossAppController) *CrossAppApi {
	return &CrossAppApi{
		controller: controller,
	}
}

// Setup registers all cross-app relay routes
func (h *CrossAppApi) Setup(app *fiber.App) {
	group := app.Group("/api/cross-app")

	group.Post("/inbound", h.controller.HandleInbound)
	group.Post("/flush", h.controller.Flush)
	group.Get("/statistics", h.controller.GetStatistics)
	group.Post("/:merchantId/webhook", h.controller.RegisterWebhook)
	group.Get("/:merchantId/status", h.controller.GetStatus)
	group.Post("/:merchantId/events/order", h.controller.SendOrderStatusUpdate)
	group.Post("/:merchantId/events/product", h.controller.SendProductUpdate)
	group.Post("/:merchantId/events/cashback", h.controller.SendCashbackUpdate)
	group.Post("/:merchantId/events/merchant", h.controller.SendMerchantUpdate)
}

package controllers

import (
	"go-merchant/internal/models"
	"go-merchant/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CrossAppController struct {
	Service service.CrossAppSyncService
}

func NewCrossAppController(service service.CrossAppSyncService) *CrossAppController {
	return &CrossAppController{
		Service: service,
	}
}

type registerWebhookRequest struct {
	URL    string `json:"url"`
	Secret string `json:"secret,omitempty"`
}

type orderStatusEventRequest struct {
	OrderID    string                 `json:"order_id"`
	CustomerID string                 `json:"customer_id"`
	Update     map[string]interface{} `json:"update"`
}

type productEventRequest struct {
	ProductID string                 `json:"product_id"`
	Update    map[string]interface{} `json:"update"`
}

type cashbackEventRequest struct {
	CustomerID string                 `json:"customer_id"`
	Update     map[string]interface{} `json:"update"`
}

type merchantEventRequest struct {
	Update map[string]interface{} `json:"update"`
}

// RegisterWebhook godoc
// @Summary      Register customer app webhook
// @Description  Upsert the destination URL for a merchant's cross-app events
// @Tags         cross-app
// @Accept       json
// @Produce      json
// @Param        merchantId path string true "Merchant ID"
// @Param        input body registerWebhookRequest true "Webhook"
// @Success      200 {object} map[string]string
// @Router       /api/cross-app/{merchantId}/webhook [post]
func (ctrl *CrossAppController) RegisterWebhook(c *fiber.Ctx) error {
	var req registerWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.RegisterCustomerAppWebhook(c.Context(), c.Params("merchantId"), req.URL, req.Secret); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Webhook registered successfully",
	})
}

// SendOrderStatusUpdate godoc
// @Summary      Queue an order status event
// @Tags         cross-app
// @Accept       json
// @Produce      json
// @Param        merchantId path string true "Merchant ID"
// @Param        input body orderStatusEventRequest true "Event"
// @Success      202 {object} map[string]string
// @Router       /api/cross-app/{merchantId}/events/order [post]
func (ctrl *CrossAppController) SendOrderStatusUpdate(c *fiber.Ctx) error {
	var req orderStatusEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctrl.Service.SendOrderStatusUpdate(c.Params("merchantId"), req.OrderID, req.CustomerID, req.Update)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Order status update queued",
	})
}

// SendProductUpdate godoc
// @Summary      Queue a product event
// @Tags         cross-app
// @Accept       json
// @Produce      json
// @Param        merchantId path string true "Merchant ID"
// @Param        input body productEventRequest true "Event"
// @Success      202 {object} map[string]string
// @Router       /api/cross-app/{merchantId}/events/product [post]
func (ctrl *CrossAppController) SendProductUpdate(c *fiber.Ctx) error {
	var req productEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctrl.Service.SendProductUpdate(c.Params("merchantId"), req.ProductID, req.Update)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Product update queued",
	})
}

// SendCashbackUpdate godoc
// @Summary      Queue a cashback event
// @Tags         cross-app
// @Accept       json
// @Produce      json
// @Param        merchantId path string true "Merchant ID"
// @Param        input body cashbackEventRequest true "Event"
// @Success      202 {object} map[string]string
// @Router       /api/cross-app/{merchantId}/events/cashback [post]
func (ctrl *CrossAppController) SendCashbackUpdate(c *fiber.Ctx) error {
	var req cashbackEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctrl.Service.SendCashbackUpdate(c.Params("merchantId"), req.CustomerID, req.Update)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Cashback update queued",
	})
}

// SendMerchantUpdate godoc
// @Summary      Queue a merchant profile event
// @Tags         cross-app
// @Accept       json
// @Produce      json
// @Param        merchantId path string true "Merchant ID"
// @Param        input body merchantEventRequest true "Event"
// @Success      202 {object} map[string]string
// @Router       /api/cross-app/{merchantId}/events/merchant [post]
func (ctrl *CrossAppController) SendMerchantUpdate(c *fiber.Ctx) error {
	var req merchantEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctrl.Service.SendMerchantUpdate(c.Params("merchantId"), req.Update)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Merchant update queued",
	})
}

// HandleInbound godoc
// @Summary      Inbound customer app update
// @Description  Receive an update pushed back from the customer app
// @Tags         cross-app
// @Accept       json
// @Produce      json
// @Param        input body models.CrossAppUpdate true "Update"
// @Success      200 {object} map[string]string
// @Router       /api/cross-app/inbound [post]
func (ctrl *CrossAppController) HandleInbound(c *fiber.Ctx) error {
	var update models.CrossAppUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.HandleCustomerAppUpdate(c.Context(), update); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Update handled",
	})
}

// GetStatus godoc
// @Summary      Get cross-app status for a merchant
// @Tags         cross-app
// @Produce      json
// @Param        merchantId path string true "Merchant ID"
// @Success      200 {object} models.CrossAppSyncStatus
// @Router       /api/cross-app/{merchantId}/status [get]
func (ctrl *CrossAppController) GetStatus(c *fiber.Ctx) error {
	return c.JSON(ctrl.Service.GetCrossAppSyncStatus(c.Params("merchantId")))
}

// GetStatistics godoc
// @Summary      Get cross-app statistics
// @Tags         cross-app
// @Produce      json
// @Success      200 {object} models.CrossAppStatistics
// @Router       /api/cross-app/statistics [get]
func (ctrl *CrossAppController) GetStatistics(c *fiber.Ctx) error {
	return c.JSON(ctrl.Service.GetCrossAppStatistics())
}

// Flush godoc
// @Summary      Drain pending updates now
// @Description  Run one drain pass without waiting for the next tick
// @Tags         cross-app
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /api/cross-app/flush [post]
func (ctrl *CrossAppController) Flush(c *fiber.Ctx) error {
	ctrl.Service.ProcessPendingUpdates()

	return c.JSON(fiber.Map{
		"message": "Drain pass completed",
	})
}

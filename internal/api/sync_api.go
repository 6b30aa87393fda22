package api

import (
	"go-merchant/internal/controllers"

	"github.com/gofiber/fiber/v2"
)

type SyncApi struct {
	controller *controllers.SyncController
}

func NewSyncApi(controller *controllers.SyncController) *SyncApi {
	return &SyncApi{
		controller: controller,
	}
}

// Setup registers all sync routes
func (h *SyncApi) Setup(app *fiber.App) {
	syncGroup := app.Group("/api/sync")

	syncGroup.Post("/run", h.controller.RunSync)
	syncGroup.Post("/run-bulk", h.controller.BulkSync)
	syncGroup.Get("/statistics", h.controller.GetSyncStatistics)
	syncGroup.Post("/:merchantId/full", h.controller.ForceFullSync)
	syncGroup.Get("/:merchantId/status", h.controller.GetSyncStatus)
	syncGroup.Get("/:merchantId/history", h.controller.GetSyncHistory)
	syncGroup.Get("/:merchantId/history/export", h.controller.ExportSyncHistory)
	syncGroup.Post("/:merchantId/schedule", h.controller.ScheduleAutoSync)
	syncGroup.Delete("/:merchantId/schedule", h.controller.ClearAutoSync)
}

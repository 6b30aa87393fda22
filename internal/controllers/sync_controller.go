package controllers

import (
	"bytes"
	"errors"

	"go-merchant/internal/models"
	"go-merchant/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SyncController struct {
	Service service.SyncService
}

func NewSyncController(service service.SyncService) *SyncController {
	return &SyncController{
		Service: service,
	}
}

type scheduleRequest struct {
	IntervalMinutes int `json:"interval_minutes"`
}

type bulkSyncRequest struct {
	MerchantIDs []string `json:"merchant_ids"`
}

// RunSync godoc
// @Summary      Run a sync
// @Description  Sync the requested entity types for a merchant to the customer app
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        input body models.SyncConfig true "Sync Config"
// @Success      200  {object} models.SyncResult
// @Router       /api/sync/run [post]
func (ctrl *SyncController) RunSync(c *fiber.Ctx) error {
	var config models.SyncConfig
	if err := c.BodyParser(&config); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := ctrl.Service.SyncToCustomerApp(c.Context(), config)
	if err != nil {
		if errors.Is(err, service.ErrSyncInProgress) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}

// ForceFullSync godoc
// @Summary      Force a full resync
// @Description  Ignore the stored cursor and resync every entity collection
// @Tags         sync
// @Produce      json
// @Param        merchantId path string true "Merchant ID"
// @Success      200 {object} models.SyncResult
// @Router       /api/sync/{merchantId}/full [post]
func (ctrl *SyncController) ForceFullSync(c *fiber.Ctx) error {
	merchantID := c.Params("merchantId")

	result, err := ctrl.Service.ForceFullSync(c.Context(), merchantID)
	if err != nil {
		if errors.Is(err, service.ErrSyncInProgress) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}

// BulkSync godoc
// @Summary      Sync several merchants
// @Description  Run full-set syncs for a list of merchants with bounded concurrency
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        input body bulkSyncRequest true "Merchant IDs"
// @Success      200 {object} models.BulkSyncResult
// @Router       /api/sync/run-bulk [post]
func (ctrl *SyncController) BulkSync(c *fiber.Ctx) error {
	var req bulkSyncRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.MerchantIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "merchant_ids is required",
		})
	}

	return c.JSON(ctrl.Service.SyncBulk(c.Context(), req.MerchantIDs))
}

// GetSyncStatus godoc
// @Summary      Get sync status
// @Description  Get a merchant's sync status; unknown merchants return the never-synced shape
// @Tags         sync
// @Produce      json
// @Param        merchantId path string true "Merchant ID"
// @Success      200 {object} models.SyncStatus
// @Router       /api/sync/{merchantId}/status [get]
func (ctrl *SyncController) GetSyncStatus(c *fiber.Ctx) error {
	return c.JSON(ctrl.Service.GetSyncStatus(c.Params("merchantId")))
}

// GetSyncHistory godoc
// @Summary      Get sync history
// @Description  Get the retained sync runs for a merchant, newest first
// @Tags         sync
// @Produce      json
// @Param        merchantId path string true "Merchant ID"
// @Param        limit query int false "Max entries"
// @Success      200 {array} models.SyncResult
// @Router       /api/sync/{merchantId}/history [get]
func (ctrl *SyncController) GetSyncHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	history := ctrl.Service.GetSyncHistory(c.Params("merchantId"), limit)

	return c.JSON(fiber.Map{
		"data": history,
	})
}

// ExportSyncHistory godoc
// @Summary      Export sync history
// @Description  Download the merchant's sync history as a spreadsheet
// @Tags         sync
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        merchantId path string true "Merchant ID"
// @Success      200 {file} binary
// @Router       /api/sync/{merchantId}/history/export [get]
func (ctrl *SyncController) ExportSyncHistory(c *fiber.Ctx) error {
	file, err := ctrl.Service.ExportSyncHistory(c.Params("merchantId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename=sync_history.xlsx")
	return c.Send(buf.Bytes())
}

// ScheduleAutoSync godoc
// @Summary      Schedule auto sync
// @Description  Install a recurring sync for a merchant; replaces any prior schedule
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        merchantId path string true "Merchant ID"
// @Param        input body scheduleRequest true "Interval"
// @Success      200 {object} map[string]string
// @Router       /api/sync/{merchantId}/schedule [post]
func (ctrl *SyncController) ScheduleAutoSync(c *fiber.Ctx) error {
	merchantID := c.Params("merchantId")

	var req scheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// Operator-facing bounds; the service itself tolerates any positive value.
	if req.IntervalMinutes < 5 || req.IntervalMinutes > 1440 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "interval_minutes must be between 5 and 1440",
		})
	}

	if err := ctrl.Service.ScheduleAutoSync(merchantID, req.IntervalMinutes); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Auto sync scheduled successfully",
	})
}

// ClearAutoSync godoc
// @Summary      Clear auto sync
// @Description  Cancel the merchant's recurring sync; no-op when none exists
// @Tags         sync
// @Produce      json
// @Param        merchantId path string true "Merchant ID"
// @Success      200 {object} map[string]string
// @Router       /api/sync/{merchantId}/schedule [delete]
func (ctrl *SyncController) ClearAutoSync(c *fiber.Ctx) error {
	ctrl.Service.ClearAutoSync(c.Params("merchantId"))

	return c.JSON(fiber.Map{
		"message": "Auto sync cleared",
	})
}

// GetSyncStatistics godoc
// @Summary      Get sync statistics
// @Description  Aggregate sync counts and durations across all merchants
// @Tags         sync
// @Produce      json
// @Success      200 {object} models.SyncStatistics
// @Router       /api/sync/statistics [get]
func (ctrl *SyncController) GetSyncStatistics(c *fiber.Ctx) error {
	return c.JSON(ctrl.Service.GetSyncStatistics())
}

package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/nikgithub05/travel-buddy/internal/services"
)

// SyncTrigger runs one gated reconciliation cycle.
type SyncTrigger interface {
	Trigger(ctx context.Context) (services.CycleReport, bool)
}

// SyncHandler exposes an on-demand reconciliation cycle.
type SyncHandler struct {
	trigger SyncTrigger
}

func NewSyncHandler(trigger SyncTrigger) *SyncHandler {
	return &SyncHandler{trigger: trigger}
}

func (h *SyncHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/sync", h.HandleSync)
}

// HandleSync blocks until the cycle finishes; it waits for a cycle the
// scheduler is already running.
func (h *SyncHandler) HandleSync(c *fiber.Ctx) error {
	report, ran := h.trigger.Trigger(c.UserContext())
	if !ran {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Remote store unreachable, sync skipped",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Sync cycle completed",
		"report":  report,
	})
}

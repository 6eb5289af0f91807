package handlers

import (
	"github.com/cortexcart/cortexcart-api/internal/dispatcher"
	"github.com/gofiber/fiber/v2"
)

type DispatchHandler struct {
	d *dispatcher.Dispatcher
}

func NewDispatchHandler(d *dispatcher.Dispatcher) *DispatchHandler {
	return &DispatchHandler{d: d}
}

// TriggerDispatch runs one dispatch cycle on demand. The route is guarded
// by the cron secret, the in-process cron calls the dispatcher directly.
func (h *DispatchHandler) TriggerDispatch(c *fiber.Ctx) error {
	outcomes, err := h.d.Run(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Dispatch cycle complete",
		"results": outcomes,
	})
}

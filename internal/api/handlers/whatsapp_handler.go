package handlers

import (
	"log/slog"

	config "github.com/cortexcart/cortexcart-api/configs"
	"github.com/cortexcart/cortexcart-api/internal/inbox"
	"github.com/cortexcart/cortexcart-api/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type WhatsAppHandler struct {
	s   inbox.Service
	cfg config.Config
}

func NewWhatsAppHandler(cfg config.Config, s inbox.Service) *WhatsAppHandler {
	return &WhatsAppHandler{s: s, cfg: cfg}
}

// Verify answers Meta's subscription handshake with the raw challenge.
func (h *WhatsAppHandler) Verify(c *fiber.Ctx) error {
	challenge, ok := h.s.Verify(
		c.Query("hub.mode"),
		c.Query("hub.verify_token"),
		c.Query("hub.challenge"),
	)
	if !ok {
		return c.SendStatus(fiber.StatusForbidden)
	}
	return c.Status(fiber.StatusOK).SendString(challenge)
}

// Receive ingests a webhook delivery. With ack-errors on (the default) a
// processing failure still answers 200 so Meta does not re-deliver; turning
// it off surfaces a 500 instead.
func (h *WhatsAppHandler) Receive(c *fiber.Ctx) error {
	var payload transfer.WhatsAppWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		slog.Error(err.Error())
		if !h.cfg.WhatsAppAckErrors {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		return c.SendStatus(fiber.StatusOK)
	}

	if err := h.s.HandleDelivery(c.Context(), &payload); err != nil {
		slog.Error("handling whatsapp delivery", "error", err)
		if !h.cfg.WhatsAppAckErrors {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	return c.SendStatus(fiber.StatusOK)
}

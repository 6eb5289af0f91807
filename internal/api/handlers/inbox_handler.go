package handlers

import (
	"github.com/cortexcart/cortexcart-api/internal/inbox"
	"github.com/gofiber/fiber/v2"
)

type InboxHandler struct {
	s inbox.Service
}

func NewInboxHandler(s inbox.Service) *InboxHandler {
	return &InboxHandler{s: s}
}

func (h *InboxHandler) ListConversations(c *fiber.Ctx) error {
	userEmail := GetUserEmail(c)

	conversations, err := h.s.ListConversations(c.Context(), userEmail)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list conversations",
		})
	}

	return c.Status(fiber.StatusOK).JSON(conversations)
}

func (h *InboxHandler) ListMessages(c *fiber.Ctx) error {
	conversationID := c.QueryInt("conversation_id", 0)
	if conversationID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "conversation_id is required",
		})
	}

	messages, err := h.s.ListMessages(c.Context(), int64(conversationID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list messages",
		})
	}

	return c.Status(fiber.StatusOK).JSON(messages)
}

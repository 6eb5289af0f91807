package handlers

import (
	"errors"
	"log/slog"

	"github.com/cortexcart/cortexcart-api/internal/credentials"
	"github.com/cortexcart/cortexcart-api/internal/models"
	"github.com/cortexcart/cortexcart-api/internal/publisher"
	"github.com/cortexcart/cortexcart-api/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type PublishHandler struct {
	registry *publisher.Registry
}

func NewPublishHandler(registry *publisher.Registry) *PublishHandler {
	return &PublishHandler{registry: registry}
}

// Publish posts immediately without creating a scheduled row. Session
// callers act as themselves; the cron identity may publish on behalf of the
// user named in the body.
func (h *PublishHandler) Publish(c *fiber.Ctx) error {
	var req transfer.PublishRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	userEmail := GetUserEmail(c)
	if IsCron(c) {
		if req.UserEmail == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "user_email is required",
			})
		}
		userEmail = req.UserEmail
	}

	platform := c.Params("platform")
	pub, ok := h.registry.Lookup(platform)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown platform",
		})
	}

	post := models.ScheduledPost{
		UserEmail:     userEmail,
		Platform:      platform,
		Content:       req.Content,
		ImageURL:      req.ImageURL,
		VideoURL:      req.VideoURL,
		Title:         req.Title,
		BoardID:       req.BoardID,
		PrivacyStatus: req.PrivacyStatus,
	}

	result := pub.Publish(c.Context(), &post)
	if result.Err != nil {
		var upstream *publisher.UpstreamError
		switch {
		case errors.Is(result.Err, credentials.ErrNotConnected):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": result.Err.Error(),
			})
		case errors.As(result.Err, &upstream):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": result.Err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": result.Err.Error(),
			})
		}
	}

	response := fiber.Map{
		"message": "Published successfully",
		"post_id": result.PlatformPostID,
	}
	if result.Warning != "" {
		response["warning"] = result.Warning
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

package handlers

import (
	"log/slog"

	"github.com/cortexcart/cortexcart-api/internal/queue"
	"github.com/cortexcart/cortexcart-api/internal/service"
	"github.com/cortexcart/cortexcart-api/internal/transfer"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
)

type PostHandler struct {
	s           service.PostService
	AsynqClient *asynq.Client
}

func NewPostHandler(service service.PostService, asynqClient *asynq.Client) *PostHandler {
	return &PostHandler{s: service, AsynqClient: asynqClient}
}

// CreatePost stores the post. Posts already due are handed to the queue for
// immediate delivery; future posts are left to the dispatch sweep, which is
// the single owner of anything with a later due time.
func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userEmail := GetUserEmail(c)

	var pc transfer.PostCreation
	if err := c.BodyParser(&pc); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	postID, delay, err := h.s.Create(c.Context(), userEmail, &pc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if delay == 0 {
		err = queue.EnqueuePost(h.AsynqClient, queue.PublishPostPayload{PostID: postID}, 0)
		if err != nil {
			slog.Error("enqueueing post", "post_id", postID, "error", err)
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"id":      postID,
				"message": "Post saved, publish will run on the next sweep",
			})
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":      postID,
		"message": "Post scheduled successfully",
	})
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userEmail := GetUserEmail(c)
	postID := c.QueryInt("id", 0)

	if postID != 0 {
		post, err := h.s.Info(c.Context(), int64(postID), userEmail)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to list posts",
			})
		}

		return c.Status(fiber.StatusOK).JSON(post)
	}

	posts, err := h.s.List(c.Context(), userEmail)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userEmail := GetUserEmail(c)
	postID := c.QueryInt("id", 0)

	err := h.s.Remove(c.Context(), userEmail, int64(postID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove post",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *PostHandler) PublishHistory(c *fiber.Ctx) error {
	userEmail := GetUserEmail(c)

	records, err := h.s.History(c.Context(), userEmail)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list publish history",
		})
	}

	return c.Status(fiber.StatusOK).JSON(records)
}

package handlers

import (
	"fmt"
	"log"
	"time"

	config "github.com/cortexcart/cortexcart-api/configs"
	"github.com/cortexcart/cortexcart-api/internal/service"
	"github.com/cortexcart/cortexcart-api/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type ConnectHandler struct {
	s   service.ConnectService
	cfg config.Config
}

func NewConnectHandler(cfg config.Config, s service.ConnectService) *ConnectHandler {
	return &ConnectHandler{s: s, cfg: cfg}
}

// Connect redirects to the platform's consent page. The state parameter is
// a short-lived token carrying the user identity back to the callback.
func (h *ConnectHandler) Connect(c *fiber.Ctx) error {
	userEmail := GetUserEmail(c)

	state, err := utils.GenerateToken(h.cfg.SecretKey, userEmail, 15*time.Minute)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to start connect flow",
		})
	}

	authURL := h.s.GetAuthURL(c.Context(), c.Params("platform"), state)
	if authURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown platform",
		})
	}
	return c.Redirect(authURL)
}

func (h *ConnectHandler) CallbackHandler(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	platform := c.Params("platform")

	claims, err := utils.ValidateToken(h.cfg.SecretKey, state)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}
	userEmail := claims.UserEmail

	switch platform {
	case "facebook":
		err = h.s.FacebookCallback(c.Context(), code, userEmail)
	case "pinterest":
		err = h.s.PinterestCallback(c.Context(), code, userEmail)
	case "youtube":
		err = h.s.YoutubeCallback(c.Context(), code, userEmail)
	case "x":
		err = h.s.XCallback(c.Context(), code, c.Query("code_verifier"), userEmail)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown platform",
		})
	}

	if err != nil {
		log.Println(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Something went wrong",
		})
	}

	redirectURL := fmt.Sprintf("%s/dashboard/connections", h.cfg.FrontendURL)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (h *ConnectHandler) ListConnections(c *fiber.Ctx) error {
	userEmail := GetUserEmail(c)

	connections, err := h.s.ListConnections(c.Context(), userEmail)
	if err != nil {
		log.Println(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch connections",
		})
	}

	return c.Status(fiber.StatusOK).JSON(connections)
}

func (h *ConnectHandler) ListInstagramAccounts(c *fiber.Ctx) error {
	userEmail := GetUserEmail(c)

	accounts, err := h.s.ListInstagramAccounts(c.Context(), userEmail)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch instagram accounts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(accounts)
}

func (h *ConnectHandler) SelectFacebookPage(c *fiber.Ctx) error {
	userEmail := GetUserEmail(c)
	pageID := c.Query("page_id")

	if err := h.s.SelectFacebookPage(c.Context(), userEmail, pageID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ConnectHandler) SelectInstagramAccount(c *fiber.Ctx) error {
	userEmail := GetUserEmail(c)
	instagramUserID := c.Query("instagram_id")

	if err := h.s.SelectInstagramAccount(c.Context(), userEmail, instagramUserID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
)

func GetUserEmail(c *fiber.Ctx) string {
	email, _ := c.Locals("user_email").(string)
	return email
}

func IsCron(c *fiber.Ctx) bool {
	isCron, _ := c.Locals("is_cron").(bool)
	return isCron
}

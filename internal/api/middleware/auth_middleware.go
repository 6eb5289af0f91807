package middleware

import (
	"log"
	"strings"

	config "github.com/cortexcart/cortexcart-api/configs"
	"github.com/cortexcart/cortexcart-api/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// CronIdentity is the acting identity set when a request authenticates with
// the shared cron secret instead of a user session.
const CronIdentity = "cron"

type AuthMiddleware struct {
	cfg config.Config
}

func NewAuthMiddleware(cfg config.Config) *AuthMiddleware {
	return &AuthMiddleware{cfg: cfg}
}

// AuthMiddleware accepts either a session cookie or a bearer cron secret.
// Both paths normalize into the same user_email local so handlers never
// branch on the auth mode.
func (m *AuthMiddleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(m.cfg.CookieName)
		bearer := bearerToken(c)

		if tokenString == "" && bearer == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing token or cookies",
			})
		}

		if bearer != "" {
			if m.cfg.CronSecret == "" || bearer != m.cfg.CronSecret {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid token",
				})
			}
			c.Locals("user_email", CronIdentity)
			c.Locals("is_cron", true)
		} else {
			claims, err := utils.ValidateToken(m.cfg.SecretKey, tokenString)
			if err != nil {
				c.Cookie(&fiber.Cookie{
					Name:   m.cfg.CookieName,
					Value:  "",
					Path:   "/",
					MaxAge: -1, // Delete cookie
				})

				log.Printf("Token validation failed: %v", err)
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid or expired token",
				})
			}

			c.Locals("user_email", claims.UserEmail)
			c.Locals("is_cron", false)
		}
		return c.Next()
	}
}

// RequireCron guards the dispatch trigger: only the cron secret may call it.
func (m *AuthMiddleware) RequireCron() fiber.Handler {
	return func(c *fiber.Ctx) error {
		bearer := bearerToken(c)
		if m.cfg.CronSecret == "" || bearer != m.cfg.CronSecret {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		c.Locals("user_email", CronIdentity)
		c.Locals("is_cron", true)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

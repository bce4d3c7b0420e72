package handlers

import (
	"regexp"
	"unicode/utf8"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"

	"github.com/gofiber/fiber/v2"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}

	if utf8.RuneCountInString(s) < max {
		return s
	}

	return string([]rune(s)[:max])
}

func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// Viewer pulls the resolved identity out of the request, nil for guests.
func Viewer(c *fiber.Ctx) *model.Users {
	user, ok := c.Locals("viewer").(model.Users)

	if !ok {
		return nil
	}

	return &user
}

func NotAllowed(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(&fiber.Map{
		"errors": []fiber.Map{{
			"message": "Not allowed.",
		}},
	})
}

func NotFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(&fiber.Map{
		"errors": []fiber.Map{{
			"message": message,
		}},
	})
}

func Forbidden(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusForbidden).JSON(&fiber.Map{
		"errors": []fiber.Map{{
			"message": message,
		}},
	})
}

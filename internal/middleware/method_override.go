package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// MethodOverrideField is the form field HTML forms use to request PUT or DELETE.
const MethodOverrideField = "_method"

// MethodOverride is a Fiber middleware that lets a POST form reach PUT, PATCH
// and DELETE routes by naming the method in the _method field.
// It must be registered before any route.
func MethodOverride() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		switch method := strings.ToUpper(c.FormValue(MethodOverrideField)); method {
		case fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
			c.Method(method)
		}

		return c.Next()
	}
}

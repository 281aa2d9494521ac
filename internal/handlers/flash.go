package handlers

import (
	"net/url"
	"strings"
	"time"

	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
)

const flashCookie = "flash"

// Flash is a one-time notice shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

func flashFromResult(res services.Result) *Flash {
	kind := "danger"
	if res.OK {
		kind = "success"
	}
	return &Flash{Kind: kind, Message: res.Message}
}

// setFlash stores the result for the page the client is redirected to.
func setFlash(c *fiber.Ctx, res services.Result) {
	f := flashFromResult(res)
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(f.Kind + "|" + f.Message),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(time.Minute),
	})
}

// popFlash reads and clears the pending flash, if any.
func popFlash(c *fiber.Ctx) *Flash {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return nil
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Unix(0, 0),
	})

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(decoded, "|")
	if !ok || message == "" {
		return nil
	}
	return &Flash{Kind: kind, Message: message}
}

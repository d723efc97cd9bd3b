package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// clientIP resolves the caller address from X-Forwarded-For (first hop), then
// X-Real-IP, then the socket peer. A header value of "unknown" is skipped.
// The result is copied out of the request buffer so it can outlive the handler.
func clientIP(c *fiber.Ctx) string {
	if xff := c.Get(fiber.HeaderXForwardedFor); usableIP(xff) {
		first, _, _ := strings.Cut(xff, ",")
		return utils.CopyString(strings.TrimSpace(first))
	}
	if realIP := c.Get("X-Real-IP"); usableIP(realIP) {
		return utils.CopyString(strings.TrimSpace(realIP))
	}
	return utils.CopyString(c.IP())
}

func usableIP(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, "unknown")
}

package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/relay-backend/internal/httpx"
)

// OriginAllowed rejects browser requests whose Origin is not in allowed, a
// comma separated list. "*" or an empty list lets everything through, as do
// requests without an Origin header (native clients).
func OriginAllowed(allowed string) fiber.Handler {
	origins := make(map[string]struct{})
	for _, o := range strings.Split(allowed, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return func(c *fiber.Ctx) error { return c.Next() }
		}
		if o != "" {
			origins[strings.ToLower(o)] = struct{}{}
		}
	}
	if len(origins) == 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return func(c *fiber.Ctx) error {
		origin := strings.TrimSpace(c.Get(fiber.HeaderOrigin))
		if origin == "" {
			return c.Next()
		}
		if _, ok := origins[strings.ToLower(strings.TrimRight(origin, "/"))]; !ok {
			return httpx.Forbidden(c, "forbidden_origin", "origin not allowed")
		}
		return c.Next()
	}
}

package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestContext gives each request a user context derived from base, so handlers stop
// when the server shuts down. A positive timeout also bounds every request.
// fasthttp does not report client disconnects, so this is the only cancellation signal
// the pipeline receives from the HTTP path.
func RequestContext(base context.Context, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			ctx    context.Context
			cancel context.CancelFunc
		)
		if timeout > 0 {
			ctx, cancel = context.WithTimeout(base, timeout)
		} else {
			ctx, cancel = context.WithCancel(base)
		}
		defer cancel()

		c.SetUserContext(ctx)
		return c.Next()
	}
}

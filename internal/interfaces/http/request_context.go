package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestContext deja en c.UserContext() un contexto con plazo que se cancela al terminar la petición.
// fasthttp no notifica cuando el cliente corta la conexión: el plazo es el límite efectivo de un turno.
func RequestContext(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if timeout <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

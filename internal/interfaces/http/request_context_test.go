package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/stock-oracle-api/internal/interfaces/http"
)

func TestRequestContext_PlazoLlegaAlHandler(t *testing.T) {
	app := fiber.New()
	app.Get("/turno", apphttp.RequestContext(20*time.Millisecond), func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		_, ok := ctx.Deadline()
		require.True(t, ok)
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			return c.SendStatus(fiber.StatusOK)
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return c.SendStatus(fiber.StatusRequestTimeout)
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/turno", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusRequestTimeout, resp.StatusCode)
}

func TestRequestContext_SinPlazoNoAgregaDeadline(t *testing.T) {
	app := fiber.New()
	app.Get("/turno", apphttp.RequestContext(0), func(c *fiber.Ctx) error {
		_, ok := c.UserContext().Deadline()
		assert.False(t, ok)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/turno", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

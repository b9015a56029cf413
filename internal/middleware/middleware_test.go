package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/localnerve/jam-build-revdb/internal/config"
	"github.com/localnerve/jam-build-revdb/internal/services"
	"github.com/localnerve/jam-build-revdb/internal/types"
)

func newApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var ce *types.CustomError
			if errors.As(err, &ce) {
				return c.Status(ce.Code).SendString(ce.Type)
			}
			return fiber.DefaultErrorHandler(c, err)
		},
	})
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("apiVersion").(string))
	})
	app.Get("/things/:thing", handlers...)
	return app
}

func TestVersionMiddleware(t *testing.T) {
	app := newApp(VersionMiddleware())

	for header, want := range map[string]int{
		"":      fiber.StatusOK,
		"1":     fiber.StatusOK,
		"1.0":   fiber.StatusOK,
		"1.2.0": fiber.StatusOK,
		"2.0.0": fiber.StatusBadRequest,
		"beta":  fiber.StatusBadRequest,
	} {
		req := httptest.NewRequest("GET", "/things/a", nil)
		if header != "" {
			req.Header.Set("X-Api-Version", header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, header)
		if want == fiber.StatusOK {
			assert.NotEmpty(t, resp.Header.Get("X-Api-Version"))
		}
	}
}

func TestAuthorizeWithoutAuthorizer(t *testing.T) {
	perms := services.NewPermissions(&config.Config{}, zap.NewNop())
	for _, p := range []*services.Permissions{nil, perms} {
		app := newApp(VersionMiddleware(), Authorize(p, "thing", services.ActionWrite))
		resp, err := app.Test(httptest.NewRequest("GET", "/things/a", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestAuthorizeRequiresSession(t *testing.T) {
	perms := services.NewPermissions(&config.Config{
		AuthzURL:      "http://127.0.0.1:1",
		AuthzClientID: "client",
	}, zap.NewNop())
	app := newApp(VersionMiddleware(), Authorize(perms, "thing", services.ActionWrite))

	resp, err := app.Test(httptest.NewRequest("GET", "/things/a", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

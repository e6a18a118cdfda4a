package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/Distribucion-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildTestApp construye una aplicación Fiber mínima con ActorMiddleware y un
// handler dummy que devuelve el actor resuelto.
func buildTestApp() *fiber.App {
	app := fiber.New()
	app.Get("/whoami", apphttp.ActorMiddleware(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"actor": apphttp.GetActor(c)})
	})
	return app
}

// doRequest lanza una petición GET /whoami con el X-Actor indicado.
func doRequest(t *testing.T, app *fiber.App, actor string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if actor != "" {
		req.Header.Set("X-Actor", actor)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests ActorMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestActorMiddleware_PropagaElHeader(t *testing.T) {
	app := buildTestApp()
	resp := doRequest(t, app, "planner@cadena")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "planner@cadena", body["actor"])
}

func TestActorMiddleware_SinHeaderResuelveVacio(t *testing.T) {
	app := buildTestApp()
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode,
		"las lecturas no exigen actor; solo las mutaciones lo requieren")

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body["actor"])
}

func TestGetActor_SinMiddlewareDevuelveVacio(t *testing.T) {
	app := fiber.New()
	app.Get("/raw", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"actor": apphttp.GetActor(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/raw", nil)
	req.Header.Set("X-Actor", "planner@cadena")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body["actor"], "sin middleware el local no existe")
}

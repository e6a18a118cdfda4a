package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Distribucion-api/internal/application/dto"
)

const actorLocalKey = "actor"

// ActorMiddleware extrae la identidad del operador del header X-Actor y la
// deja en el contexto. Las operaciones que mutan estado la exigen: cada
// entrada de auditoría lleva quién la provocó.
func ActorMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(actorLocalKey, c.Get("X-Actor"))
		return c.Next()
	}
}

// GetActor devuelve la identidad del operador; cadena vacía si no se envió.
func GetActor(c *fiber.Ctx) string {
	if actor, ok := c.Locals(actorLocalKey).(string); ok {
		return actor
	}
	return ""
}

// requireActor corta con 400 si la petición mutadora no identifica al operador.
// Devuelve ok=false cuando la respuesta ya quedó escrita.
func requireActor(c *fiber.Ctx) (string, bool) {
	actor := GetActor(c)
	if actor == "" {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "MISSING_ACTOR", Message: "header X-Actor requerido",
		})
		return "", false
	}
	return actor, true
}

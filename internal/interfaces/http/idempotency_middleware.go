package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Cabeceras de idempotencia.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

// IdempotencyMiddleware repite la respuesta de la primera ejecución cuando un cliente reintenta
// una escritura con la misma Idempotency-Key. Sin cabecera la petición pasa sin cambios.
// La clave se aísla por empresa, usuario, método y ruta. Una respuesta 5xx libera la clave.
func IdempotencyMiddleware(store cache.IdempotencyStore, ttl time.Duration, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" {
			return c.Next()
		}
		if len(key) > 255 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_IDEMPOTENCY_KEY", Message: "Idempotency-Key demasiado larga"})
		}
		ctx := c.UserContext()
		scoped := fmt.Sprintf("%d:%d:%s:%s:%s", GetCompanyID(c), GetUserID(c), c.Method(), c.Path(), key)

		reserved, err := store.Reserve(ctx, scoped, ttl)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("reservar clave de idempotencia")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_UNAVAILABLE", Message: "almacén de idempotencia no disponible"})
		}
		if !reserved {
			return replay(c, store, scoped)
		}

		if err := c.Next(); err != nil {
			if relErr := store.Release(ctx, scoped); relErr != nil {
				log.Warn().Err(relErr).Str("key", key).Msg("liberar clave de idempotencia")
			}
			return err
		}

		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			if relErr := store.Release(ctx, scoped); relErr != nil {
				log.Warn().Err(relErr).Str("key", key).Msg("liberar clave de idempotencia")
			}
			return nil
		}
		resp := cache.StoredResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := store.Complete(ctx, scoped, resp, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("guardar respuesta idempotente")
		}
		return nil
	}
}

func replay(c *fiber.Ctx, store cache.IdempotencyStore, scoped string) error {
	entry, err := store.Get(c.UserContext(), scoped)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_UNAVAILABLE", Message: "almacén de idempotencia no disponible"})
	}
	if entry == nil || entry.Pending || entry.Response == nil {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_IN_PROGRESS", Message: "una petición con la misma Idempotency-Key está en curso"})
	}
	c.Set(HeaderReplayed, "true")
	if entry.Response.ContentType != "" {
		c.Set(fiber.HeaderContentType, entry.Response.ContentType)
	}
	return c.Status(entry.Response.Status).Send(entry.Response.Body)
}

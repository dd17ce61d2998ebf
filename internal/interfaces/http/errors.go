package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-kardex/internal/application/dto"
	"github.com/jhoicas/Inventario-kardex/internal/domain"
)

// writeError traduce errores de dominio a status HTTP y cuerpo ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: "stock insuficiente",
			Details: map[string]any{
				"productId":   insufficient.ProductID,
				"warehouseId": insufficient.WarehouseID,
				"available":   insufficient.Available,
				"requested":   insufficient.Requested,
				"resulting":   insufficient.Resulting,
			},
		})
	case errors.Is(err, domain.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: "cantidad inválida"})
	case errors.Is(err, domain.ErrInvalidReason):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_REASON", Message: "motivo inválido o inactivo para el tipo de movimiento"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrUnknownKey):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_KEY", Message: "producto o bodega no encontrado"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrReasonInUse):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "REASON_IN_USE", Message: "el motivo está referenciado por movimientos"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto con el estado actual"})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: "conflicto de concurrencia, reintente"})
	case errors.Is(err, domain.ErrStoreUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "almacenamiento no disponible, intente más tarde"})
	case errors.Is(err, domain.ErrLedgerInconsistent):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "LEDGER_INCONSISTENT", Message: "kardex inconsistente, reconstruya el snapshot"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-kardex/internal/application/dto"
	"github.com/jhoicas/Inventario-kardex/internal/application/reason"
)

// ReasonHandler administra el catálogo de motivos de movimiento.
type ReasonHandler struct {
	uc *reason.UseCase
}

// NewReasonHandler construye el handler.
func NewReasonHandler(uc *reason.UseCase) *ReasonHandler {
	return &ReasonHandler{uc: uc}
}

// List godoc
// @Summary      Listar motivos de movimiento
// @Tags         reasons
// @Security     Bearer
// @Produce      json
// @Param        tipoMovimiento  query  string  false  "ENTRADA, SALIDA o AJUSTE"
// @Param        soloActivos     query  bool    false  "sólo activos"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/reasons [get]
func (h *ReasonHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext(), c.Query("tipoMovimiento"), c.QueryBool("soloActivos", false))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "rows": list})
}

// Create godoc
// @Summary      Crear motivo
// @Tags         reasons
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReasonRequest  true  "movementType, code, label"
// @Success      201  {object}  entity.MovementReason
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/reasons [post]
func (h *ReasonHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReasonRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Activate godoc
// @Summary      Activar motivo
// @Tags         reasons
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del motivo"
// @Success      200  {object}  entity.MovementReason
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/reasons/{id}/activate [patch]
func (h *ReasonHandler) Activate(c *fiber.Ctx) error {
	out, err := h.uc.Activate(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar motivo
// @Tags         reasons
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del motivo"
// @Success      200  {object}  entity.MovementReason
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/reasons/{id}/deactivate [patch]
func (h *ReasonHandler) Deactivate(c *fiber.Ctx) error {
	out, err := h.uc.Deactivate(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar motivo nunca usado
// @Tags         reasons
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del motivo"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/reasons/{id} [delete]
func (h *ReasonHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

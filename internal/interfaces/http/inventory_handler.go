package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-kardex/internal/application/dto"
	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// InventoryHandler maneja movimientos, stock, kardex y alertas (protegido).
type InventoryHandler struct {
	engine *inventory.StockEngine
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(engine *inventory.StockEngine) *InventoryHandler {
	return &InventoryHandler{engine: engine}
}

// RecordMovement godoc
// @Summary      Registrar movimiento (tipo en tipoMovimiento)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "productId, warehouseId, quantity, tipoMovimiento, reasonCode"
// @Param        Idempotency-Key  header  string  false  "clave de idempotencia si el body no la trae"
// @Success      201  {object}  entity.LedgerEntry
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	return h.record(c, "")
}

// RecordEntry godoc
// @Summary      Registrar entrada
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "productId, warehouseId, quantity, reasonCode"
// @Param        Idempotency-Key  header  string  false  "clave de idempotencia si el body no la trae"
// @Success      201  {object}  entity.LedgerEntry
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/entries [post]
func (h *InventoryHandler) RecordEntry(c *fiber.Ctx) error {
	return h.record(c, entity.MovementTypeEntrada)
}

// RecordExit godoc
// @Summary      Registrar salida
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "productId, warehouseId, quantity, reasonCode"
// @Param        Idempotency-Key  header  string  false  "clave de idempotencia si el body no la trae"
// @Success      201  {object}  entity.LedgerEntry
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/exits [post]
func (h *InventoryHandler) RecordExit(c *fiber.Ctx) error {
	return h.record(c, entity.MovementTypeSalida)
}

// RecordAdjustment godoc
// @Summary      Registrar ajuste
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "quantity es el delta con signo"
// @Param        Idempotency-Key  header  string  false  "clave de idempotencia si el body no la trae"
// @Success      201  {object}  entity.LedgerEntry
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) RecordAdjustment(c *fiber.Ctx) error {
	return h.record(c, entity.MovementTypeAjuste)
}

func (h *InventoryHandler) record(c *fiber.Ctx, movementType entity.MovementType) error {
	var in dto.RecordMovementRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	if in.IdempotencyKey == nil {
		if key := c.Get("Idempotency-Key"); key != "" {
			in.IdempotencyKey = &key
		}
	}
	entry, err := h.engine.RecordFromRequest(c.UserContext(), GetUserID(c), movementType, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// GetStock godoc
// @Summary      Consultar stock por producto y bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouseId  query  string  false  "bodega"
// @Param        productId    query  string  false  "producto"
// @Param        estado       query  string  false  "NORMAL, BAJO o CRITICO"
// @Param        q            query  string  false  "texto en nombre o SKU"
// @Param        page         query  int     false  "página (desde 1)"
// @Param        limit        query  int     false  "tamaño de página"
// @Param        sortBy       query  string  false  "nombre, cantidad, estado o fecha"
// @Param        order        query  string  false  "asc o desc"
// @Success      200  {object}  dto.ListResponse[dto.StockRowResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	q, err := parseStockQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	if q, err = q.Normalize(); err != nil {
		return writeError(c, err)
	}
	rows, total, err := h.engine.GetStock(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.StockRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.NewStockRowResponse(r))
	}
	return c.JSON(dto.ListResponse[dto.StockRowResponse]{Rows: out, Total: total, Page: q.Page.Number, Limit: q.Page.Size})
}

// GetKardex godoc
// @Summary      Consultar kardex de una bodega
// @Description  Por defecto ordena del más reciente al más antiguo.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouseId     query  string  true   "bodega"
// @Param        productId       query  string  false  "producto"
// @Param        tipoMovimiento  query  string  false  "ENTRADA, SALIDA o AJUSTE"
// @Param        fechaDesde      query  string  false  "RFC3339 o AAAA-MM-DD"
// @Param        fechaHasta      query  string  false  "RFC3339 o AAAA-MM-DD (día completo)"
// @Param        page            query  int     false  "página (desde 1)"
// @Param        limit           query  int     false  "tamaño de página"
// @Success      200  {object}  dto.ListResponse[entity.LedgerEntry]
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/kardex [get]
func (h *InventoryHandler) GetKardex(c *fiber.Ctx) error {
	q, err := parseKardexQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	if q, err = q.Normalize(); err != nil {
		return writeError(c, err)
	}
	rows, total, err := h.engine.GetKardex(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ListResponse[entity.LedgerEntry]{Rows: rows, Total: total, Page: q.Page.Number, Limit: q.Page.Size})
}

// GetAlerts godoc
// @Summary      Productos en estado BAJO y CRITICO
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AlertsResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/alerts [get]
func (h *InventoryHandler) GetAlerts(c *fiber.Ctx) error {
	alerts, err := h.engine.GetAlerts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AlertsResponse{Low: alerts.Low, Critical: alerts.Critical})
}

// SetThreshold godoc
// @Summary      Fijar o borrar el umbral mínimo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetThresholdRequest  true  "minimumThreshold null borra el umbral"
// @Success      200  {object}  entity.StockSnapshot
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/threshold [put]
func (h *InventoryHandler) SetThreshold(c *fiber.Ctx) error {
	var in dto.SetThresholdRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	snap, err := h.engine.SetMinimumThreshold(c.UserContext(), in.ProductID, in.WarehouseID, in.MinimumThreshold)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(snap)
}

// Rebuild godoc
// @Summary      Reconstruir el snapshot desde el kardex
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RebuildRequest  true  "productId, warehouseId"
// @Success      200  {object}  dto.RebuildResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/rebuild [post]
func (h *InventoryHandler) Rebuild(c *fiber.Ctx) error {
	var in dto.RebuildRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	res, err := h.engine.RebuildSnapshot(c.UserContext(), in.ProductID, in.WarehouseID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.RebuildResponse{
		ProductID:   res.Key.ProductID,
		WarehouseID: res.Key.WarehouseID,
		Previous:    res.Previous,
		Rebuilt:     res.Rebuilt,
		Entries:     res.Entries,
		Corrected:   res.Corrected,
	})
}

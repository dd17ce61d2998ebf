package dto

import (
	"time"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// RecordMovementRequest body para POST /api/inventory/{movements,entries,exits,adjustments}.
// TipoMovimiento sólo se usa en /movements; Quantity es la magnitud salvo en AJUSTE (delta con signo).
type RecordMovementRequest struct {
	ProductID         string  `json:"productId" validate:"required,max=64"`
	WarehouseID       string  `json:"warehouseId" validate:"required,max=64"`
	TipoMovimiento    string  `json:"tipoMovimiento,omitempty" validate:"omitempty,oneof=ENTRADA SALIDA AJUSTE entrada salida ajuste"`
	Quantity          int64   `json:"quantity"`
	ReasonCode        string  `json:"reasonCode" validate:"required,max=50"`
	ReferenceDocument *string `json:"referenceDocument,omitempty" validate:"omitempty,max=120"`
	Notes             *string `json:"notes,omitempty" validate:"omitempty,max=500"`
	IdempotencyKey    *string `json:"idempotencyKey,omitempty" validate:"omitempty,max=100"`
}

// StockRowResponse fila de GET /api/inventory/stock.
type StockRowResponse struct {
	ProductID        string            `json:"productId"`
	ProductLabel     string            `json:"productLabel"`
	WarehouseID      string            `json:"warehouseId"`
	WarehouseLabel   string            `json:"warehouseLabel"`
	Quantity         int64             `json:"quantity"`
	MinimumThreshold *int64            `json:"minimumThreshold"`
	Estado           entity.AlertState `json:"estado"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// NewStockRowResponse mapea una fila del motor.
func NewStockRowResponse(r entity.StockRow) StockRowResponse {
	return StockRowResponse{
		ProductID:        r.ProductID,
		ProductLabel:     r.ProductLabel,
		WarehouseID:      r.WarehouseID,
		WarehouseLabel:   r.WarehouseLabel,
		Quantity:         r.Quantity,
		MinimumThreshold: r.MinimumThreshold,
		Estado:           r.AlertState,
		UpdatedAt:        r.UpdatedAt,
	}
}

// AlertsResponse body de GET /api/inventory/alerts.
type AlertsResponse struct {
	Low      []entity.StockSnapshot `json:"low"`
	Critical []entity.StockSnapshot `json:"critical"`
}

// SetThresholdRequest body para PUT /api/inventory/stock/threshold. MinimumThreshold null borra el umbral.
type SetThresholdRequest struct {
	ProductID        string `json:"productId" validate:"required,max=64"`
	WarehouseID      string `json:"warehouseId" validate:"required,max=64"`
	MinimumThreshold *int64 `json:"minimumThreshold" validate:"omitempty,min=0"`
}

// RebuildRequest body para POST /api/inventory/stock/rebuild.
type RebuildRequest struct {
	ProductID   string `json:"productId" validate:"required,max=64"`
	WarehouseID string `json:"warehouseId" validate:"required,max=64"`
}

// RebuildResponse resultado de la reconstrucción del snapshot.
type RebuildResponse struct {
	ProductID   string `json:"productId"`
	WarehouseID string `json:"warehouseId"`
	Previous    int64  `json:"previous"`
	Rebuilt     int64  `json:"rebuilt"`
	Entries     int    `json:"entries"`
	Corrected   bool   `json:"corrected"`
}

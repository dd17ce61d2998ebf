package entity

import (
	"strings"
	"time"
)

// MovementType tipo de movimiento del kardex.
type MovementType string

const (
	MovementTypeEntrada MovementType = "ENTRADA" // entrada
	MovementTypeSalida  MovementType = "SALIDA"  // salida
	MovementTypeAjuste  MovementType = "AJUSTE"  // ajuste con signo
)

// Valid indica si el tipo es uno de los soportados.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeEntrada, MovementTypeSalida, MovementTypeAjuste:
		return true
	}
	return false
}

// ParseMovementType normaliza el texto recibido ("entrada", " AJUSTE ") a MovementType.
func ParseMovementType(s string) (MovementType, bool) {
	t := MovementType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

// LedgerEntry es un registro inmutable del kardex.
// QuantityAfter = QuantityBefore + QuantityDelta y QuantityBefore es el QuantityAfter
// del registro anterior de la misma clave (orden dado por Sequence).
type LedgerEntry struct {
	ID                string       `db:"id" json:"id"`
	Sequence          int64        `db:"seq" json:"sequence"`
	Timestamp         time.Time    `db:"occurred_at" json:"timestamp"`
	ProductID         string       `db:"product_id" json:"productId"`
	WarehouseID       string       `db:"warehouse_id" json:"warehouseId"`
	MovementType      MovementType `db:"movement_type" json:"movementType"`
	QuantityDelta     int64        `db:"quantity_delta" json:"quantityDelta"`
	QuantityBefore    int64        `db:"quantity_before" json:"quantityBefore"`
	QuantityAfter     int64        `db:"quantity_after" json:"quantityAfter"`
	ReasonCode        string       `db:"reason_code" json:"reasonCode"`
	UserID            string       `db:"user_id" json:"userId"`
	ReferenceDocument *string      `db:"reference_document" json:"referenceDocument,omitempty"`
	Notes             *string      `db:"notes" json:"notes,omitempty"`
	IdempotencyKey    *string      `db:"idempotency_key" json:"-"`
}

// Clone copia el registro sin compartir punteros.
func (e LedgerEntry) Clone() LedgerEntry {
	e.ReferenceDocument = cloneString(e.ReferenceDocument)
	e.Notes = cloneString(e.Notes)
	e.IdempotencyKey = cloneString(e.IdempotencyKey)
	return e
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Key devuelve la clave (producto, bodega) del registro.
func (e LedgerEntry) Key() StockKey {
	return StockKey{ProductID: e.ProductID, WarehouseID: e.WarehouseID}
}

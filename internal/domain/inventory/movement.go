package inventory

import (
	"math"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// SignedDelta convierte la cantidad recibida al delta que se aplica al stock.
// ENTRADA y SALIDA reciben la magnitud (> 0); AJUSTE recibe el delta con signo (!= 0).
func SignedDelta(t entity.MovementType, quantity int64) (int64, error) {
	switch t {
	case entity.MovementTypeEntrada:
		if quantity <= 0 {
			return 0, domain.ErrInvalidQuantity
		}
		return quantity, nil
	case entity.MovementTypeSalida:
		if quantity <= 0 {
			return 0, domain.ErrInvalidQuantity
		}
		return -quantity, nil
	case entity.MovementTypeAjuste:
		if quantity == 0 {
			return 0, domain.ErrInvalidQuantity
		}
		return quantity, nil
	}
	return 0, domain.ErrInvalidInput
}

// ValidateReason verifica que el motivo exista, esté activo y corresponda al tipo de movimiento.
func ValidateReason(reason *entity.MovementReason, t entity.MovementType) error {
	if reason == nil || !reason.Active || reason.MovementType != t {
		return domain.ErrInvalidReason
	}
	return nil
}

// Apply calcula la cantidad resultante; nunca admite stock negativo.
// Un resultado que no cabe en int64 es una cantidad inválida, no un faltante.
func Apply(key entity.StockKey, before, delta int64) (int64, error) {
	if delta > 0 && before > math.MaxInt64-delta {
		return 0, domain.ErrInvalidQuantity
	}
	after := before + delta
	if after < 0 {
		return 0, &domain.InsufficientStockError{
			ProductID:   key.ProductID,
			WarehouseID: key.WarehouseID,
			Available:   before,
			Requested:   delta,
			Resulting:   after,
		}
	}
	return after, nil
}

// Replay recorre el kardex de una clave (en orden de Sequence) verificando la cadena
// before/after y devuelve la cantidad resultante.
func Replay(entries []entity.LedgerEntry) (int64, error) {
	var qty int64
	for _, e := range entries {
		if e.QuantityBefore != qty ||
			e.QuantityAfter != e.QuantityBefore+e.QuantityDelta ||
			e.QuantityAfter < 0 {
			return 0, domain.ErrLedgerInconsistent
		}
		qty = e.QuantityAfter
	}
	return qty, nil
}

package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Motor de stock / kardex.
	ErrInvalidQuantity     = errors.New("cantidad inválida")
	ErrInvalidReason       = errors.New("motivo de movimiento inválido")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrUnknownKey          = errors.New("producto o bodega desconocido")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia")
	ErrStoreUnavailable    = errors.New("almacenamiento no disponible")
	ErrLedgerInconsistent  = errors.New("kardex inconsistente con el stock")
	ErrReasonInUse         = errors.New("el motivo está referenciado por movimientos")
)

// InsufficientStockError detalla un rechazo por stock insuficiente.
// Resulting es la cantidad que habría quedado (siempre negativa).
type InsufficientStockError struct {
	ProductID   string
	WarehouseID string
	Available   int64
	Requested   int64 // delta con signo
	Resulting   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: producto %s bodega %s disponible %d, delta %d, resultado %d",
		e.ProductID, e.WarehouseID, e.Available, e.Requested, e.Resulting)
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

package inventory

import (
	"context"

	"github.com/jhoicas/Inventario-kardex/internal/application/dto"
	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// RecordFromRequest adapta el request HTTP a RecordMovement.
// movementType vacío toma el tipo de in.TipoMovimiento (endpoint genérico /movements).
func (e *StockEngine) RecordFromRequest(ctx context.Context, userID string, movementType entity.MovementType, in dto.RecordMovementRequest) (*entity.LedgerEntry, error) {
	if movementType == "" {
		mt, ok := entity.ParseMovementType(in.TipoMovimiento)
		if !ok {
			return nil, domain.ErrInvalidInput
		}
		movementType = mt
	}
	return e.RecordMovement(ctx, MovementInput{
		ProductID:         in.ProductID,
		WarehouseID:       in.WarehouseID,
		MovementType:      movementType,
		Quantity:          in.Quantity,
		ReasonCode:        in.ReasonCode,
		UserID:            userID,
		ReferenceDocument: in.ReferenceDocument,
		Notes:             in.Notes,
		IdempotencyKey:    in.IdempotencyKey,
	})
}

package repository

import (
	"context"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/query"
)

// LedgerRepository puerto del kardex (sólo inserción, nunca update/delete).
type LedgerRepository interface {
	// Append persiste el registro y asigna Sequence.
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	// Last devuelve la cabeza de la cadena de la clave o nil si no hay registros.
	Last(ctx context.Context, key entity.StockKey) (*entity.LedgerEntry, error)
	// ListByKey devuelve la cadena completa en orden de Sequence.
	ListByKey(ctx context.Context, key entity.StockKey) ([]entity.LedgerEntry, error)
	FindByIdempotencyKey(ctx context.Context, idempotencyKey string) (*entity.LedgerEntry, error)
	List(ctx context.Context, q query.KardexQuery) ([]entity.LedgerEntry, int, error)
	ReferencesReason(ctx context.Context, code string) (bool, error)
}

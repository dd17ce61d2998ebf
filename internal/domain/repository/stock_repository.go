package repository

import (
	"context"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/query"
)

// StockRepository define el puerto para consultar/actualizar el stock por bodega+producto.
// Las escrituras sólo ocurren dentro de TxRunner.Run para garantizar consistencia con el kardex.
type StockRepository interface {
	// Get devuelve el snapshot o domain.ErrNotFound si la clave nunca tuvo movimientos.
	Get(ctx context.Context, key entity.StockKey) (*entity.StockSnapshot, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) creándola con cantidad 0 si no existe.
	GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockSnapshot, error)
	Upsert(ctx context.Context, stock *entity.StockSnapshot) error
	List(ctx context.Context, q query.StockQuery) ([]entity.StockRow, int, error)
	// ListWithThreshold recorre todos los snapshots con umbral mínimo (alertas).
	ListWithThreshold(ctx context.Context) ([]entity.StockSnapshot, error)
}

package postgres

import (
	"context"

	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

var _ repository.DirectoryRepository = (*DirectoryRepo)(nil)

// DirectoryRepo consulta las tablas products y warehouses (directorios externos replicados).
type DirectoryRepo struct {
	q Querier
}

// NewDirectoryRepository construye el adaptador.
func NewDirectoryRepository(q Querier) *DirectoryRepo {
	return &DirectoryRepo{q: q}
}

func (r *DirectoryRepo) ProductExists(ctx context.Context, productID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID)
}

func (r *DirectoryRepo) WarehouseExists(ctx context.Context, warehouseID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM warehouses WHERE id = $1)`, warehouseID)
}

func (r *DirectoryRepo) exists(ctx context.Context, sql, id string) (bool, error) {
	var ok bool
	if err := r.q.QueryRow(ctx, sql, id).Scan(&ok); err != nil {
		return false, classify("directory lookup", err)
	}
	return ok, nil
}

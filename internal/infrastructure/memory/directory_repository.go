package memory

import (
	"context"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

var _ repository.DirectoryRepository = (*DirectoryRepository)(nil)

// DirectoryRepository directorio de productos y bodegas en memoria (etiquetas y existencia).
type DirectoryRepository struct {
	store *Store
}

// NewDirectoryRepository construye el directorio.
func NewDirectoryRepository(store *Store) *DirectoryRepository {
	return &DirectoryRepository{store: store}
}

// RegisterProduct alta o reemplazo de un producto.
func (r *DirectoryRepository) RegisterProduct(p entity.Product) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.products[p.ID] = p
}

// RegisterWarehouse alta o reemplazo de una bodega.
func (r *DirectoryRepository) RegisterWarehouse(w entity.Warehouse) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.warehouses[w.ID] = w
}

func (r *DirectoryRepository) ProductExists(_ context.Context, productID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.products[productID]
	return ok, nil
}

func (r *DirectoryRepository) WarehouseExists(_ context.Context, warehouseID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.warehouses[warehouseID]
	return ok, nil
}

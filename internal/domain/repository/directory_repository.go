package repository

import "context"

// DirectoryRepository consulta los directorios externos de productos y bodegas.
type DirectoryRepository interface {
	ProductExists(ctx context.Context, productID string) (bool, error)
	WarehouseExists(ctx context.Context, warehouseID string) (bool, error)
}

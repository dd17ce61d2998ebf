package memory

import (
	"context"
	"slices"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/query"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepository)(nil)

// StockRepository lectura de snapshots confirmados. Fuera de TxRunner no escribe.
type StockRepository struct {
	store *Store
}

// NewStockRepository construye el repositorio.
func NewStockRepository(store *Store) *StockRepository {
	return &StockRepository{store: store}
}

func (r *StockRepository) Get(_ context.Context, key entity.StockKey) (*entity.StockSnapshot, error) {
	snap, ok := r.store.snapshot(key)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &snap, nil
}

// GetForUpdate sin transacción no hay lock que tomar: usar TxRunner.
func (r *StockRepository) GetForUpdate(_ context.Context, _ entity.StockKey) (*entity.StockSnapshot, error) {
	return nil, errOutsideTx
}

// Upsert sin transacción no escribe: usar TxRunner.
func (r *StockRepository) Upsert(_ context.Context, _ *entity.StockSnapshot) error {
	return errOutsideTx
}

// List etiqueta, clasifica, filtra, ordena y pagina los snapshots.
func (r *StockRepository) List(_ context.Context, q query.StockQuery) ([]entity.StockRow, int, error) {
	r.store.mu.RLock()
	rows := make([]entity.StockRow, 0, len(r.store.snapshots))
	for _, snap := range r.store.snapshots {
		row := entity.StockRow{
			StockSnapshot:  snap.Clone(),
			ProductLabel:   snap.ProductID,
			WarehouseLabel: snap.WarehouseID,
			AlertState:     q.Policy.Classify(snap.Quantity, snap.MinimumThreshold),
		}
		var sku string
		if p, ok := r.store.products[snap.ProductID]; ok {
			row.ProductLabel = p.Name
			sku = p.SKU
		}
		if w, ok := r.store.warehouses[snap.WarehouseID]; ok {
			row.WarehouseLabel = w.Name
		}
		if query.MatchStock(q.Filter, row, sku) {
			rows = append(rows, row)
		}
	}
	r.store.mu.RUnlock()

	query.SortStock(rows, q.SortBy, q.SortOrder)
	return query.Paginate(rows, q.Page), len(rows), nil
}

// ListWithThreshold snapshots con umbral, ordenados por producto y bodega.
func (r *StockRepository) ListWithThreshold(_ context.Context) ([]entity.StockSnapshot, error) {
	r.store.mu.RLock()
	out := make([]entity.StockSnapshot, 0)
	for _, snap := range r.store.snapshots {
		if snap.MinimumThreshold != nil {
			out = append(out, snap.Clone())
		}
	}
	r.store.mu.RUnlock()

	slices.SortFunc(out, func(a, b entity.StockSnapshot) int {
		if a.ProductID != b.ProductID {
			if a.ProductID < b.ProductID {
				return -1
			}
			return 1
		}
		if a.WarehouseID < b.WarehouseID {
			return -1
		}
		if a.WarehouseID > b.WarehouseID {
			return 1
		}
		return 0
	})
	return out, nil
}

package memory

import (
	"context"
	"errors"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/query"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepository)(nil)

var errOutsideTx = errors.New("memory: escritura fuera de transacción")

// LedgerRepository lectura del kardex confirmado.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository construye el repositorio.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// Append sin transacción no escribe: usar TxRunner.
func (r *LedgerRepository) Append(_ context.Context, _ *entity.LedgerEntry) error {
	return errOutsideTx
}

func (r *LedgerRepository) Last(_ context.Context, key entity.StockKey) (*entity.LedgerEntry, error) {
	e, ok := r.store.lastEntry(key)
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *LedgerRepository) ListByKey(_ context.Context, key entity.StockKey) ([]entity.LedgerEntry, error) {
	return r.store.entriesByKey(key), nil
}

func (r *LedgerRepository) FindByIdempotencyKey(_ context.Context, k string) (*entity.LedgerEntry, error) {
	e, ok := r.store.entryByIdempotencyKey(k)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

// List filtra, ordena y pagina el kardex de una bodega.
func (r *LedgerRepository) List(_ context.Context, q query.KardexQuery) ([]entity.LedgerEntry, int, error) {
	r.store.mu.RLock()
	rows := make([]entity.LedgerEntry, 0)
	for _, e := range r.store.entries {
		if query.MatchKardex(q.Filter, e) {
			rows = append(rows, e.Clone())
		}
	}
	r.store.mu.RUnlock()

	query.SortKardex(rows, q.SortBy, q.SortOrder)
	return query.Paginate(rows, q.Page), len(rows), nil
}

func (r *LedgerRepository) ReferencesReason(_ context.Context, code string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.reasonReferenced(code), nil
}

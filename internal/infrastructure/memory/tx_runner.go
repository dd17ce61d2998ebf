package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta fn con el lock de la clave tomado y repositorios que acumulan escrituras;
// sólo si fn termina sin error las escrituras se publican en el Store.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el almacén.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run implementa inventory.TxRunner.
func (r *TxRunner) Run(ctx context.Context, key entity.StockKey, fn func(
	ledgerRepo repository.LedgerRepository,
	stockRepo repository.StockRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock := r.store.locker.Lock(key)
	defer unlock()

	tx := &memTx{
		store:     r.store,
		snapshots: make(map[entity.StockKey]entity.StockSnapshot),
	}
	ledgerRepo := &txLedgerRepository{LedgerRepository: NewLedgerRepository(r.store), tx: tx}
	stockRepo := &txStockRepository{StockRepository: NewStockRepository(r.store), tx: tx}
	if err := fn(ledgerRepo, stockRepo); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	if err := r.store.commit(tx.entries, tx.snapshots); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// memTx escrituras pendientes de una transacción.
type memTx struct {
	store     *Store
	entries   []*entity.LedgerEntry
	snapshots map[entity.StockKey]entity.StockSnapshot
}

// txStockRepository lee lo pendiente antes que lo confirmado.
type txStockRepository struct {
	*StockRepository
	tx *memTx
}

func (r *txStockRepository) Get(ctx context.Context, key entity.StockKey) (*entity.StockSnapshot, error) {
	if snap, ok := r.tx.snapshots[key]; ok {
		return &snap, nil
	}
	return r.StockRepository.Get(ctx, key)
}

// GetForUpdate el lock de la clave ya lo tiene Run; crea el snapshot en 0 si no existe.
func (r *txStockRepository) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockSnapshot, error) {
	snap, err := r.Get(ctx, key)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return &entity.StockSnapshot{ProductID: key.ProductID, WarehouseID: key.WarehouseID}, nil
}

func (r *txStockRepository) Upsert(_ context.Context, stock *entity.StockSnapshot) error {
	r.tx.snapshots[stock.Key()] = stock.Clone()
	return nil
}

type txLedgerRepository struct {
	*LedgerRepository
	tx *memTx
}

func (r *txLedgerRepository) Append(_ context.Context, entry *entity.LedgerEntry) error {
	r.tx.entries = append(r.tx.entries, entry)
	return nil
}

func (r *txLedgerRepository) Last(ctx context.Context, key entity.StockKey) (*entity.LedgerEntry, error) {
	for i := len(r.tx.entries) - 1; i >= 0; i-- {
		if r.tx.entries[i].Key() == key {
			e := *r.tx.entries[i]
			return &e, nil
		}
	}
	return r.LedgerRepository.Last(ctx, key)
}

func (r *txLedgerRepository) ListByKey(ctx context.Context, key entity.StockKey) ([]entity.LedgerEntry, error) {
	out, err := r.LedgerRepository.ListByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	for _, e := range r.tx.entries {
		if e.Key() == key {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *txLedgerRepository) FindByIdempotencyKey(ctx context.Context, k string) (*entity.LedgerEntry, error) {
	for _, e := range r.tx.entries {
		if e.IdempotencyKey != nil && *e.IdempotencyKey == k {
			cp := *e
			return &cp, nil
		}
	}
	return r.LedgerRepository.FindByIdempotencyKey(ctx, k)
}

package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/application/reason"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
	"github.com/jhoicas/Inventario-kardex/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-kardex/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-kardex/pkg/config"
	"github.com/jhoicas/Inventario-kardex/pkg/logger"
)

// storage adaptadores de persistencia elegidos por INVENTORY_STORE.
type storage struct {
	txRunner  inventory.TxRunner
	stock     repository.StockRepository
	ledger    repository.LedgerRepository
	reasons   repository.MovementReasonRepository
	directory repository.DirectoryRepository
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	switch cfg.Inventory.Store {
	case config.StoreMemory:
		store := memory.NewStore()
		s := &storage{
			txRunner:  memory.NewTxRunner(store),
			stock:     memory.NewStockRepository(store),
			ledger:    memory.NewLedgerRepository(store),
			reasons:   memory.NewMovementReasonRepository(store),
			directory: memory.NewDirectoryRepository(store),
			close:     func() {},
		}
		// PostgreSQL trae los motivos en la migración; en memoria se siembran al arrancar.
		if err := reason.NewUseCase(s.reasons, s.ledger, log).Seed(ctx); err != nil {
			return nil, fmt.Errorf("sembrar motivos: %w", err)
		}
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		return s, nil

	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL (%s): %w", postgres.RedactedDSN(cfg.DB), err)
		}
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool, log); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migraciones: %w", err)
			}
		}
		return &storage{
			txRunner:  postgres.NewTxRunner(pool),
			stock:     postgres.NewStockRepository(pool),
			ledger:    postgres.NewLedgerRepository(pool),
			reasons:   postgres.NewMovementReasonRepository(pool),
			directory: postgres.NewDirectoryRepository(pool),
			close:     pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("INVENTORY_STORE desconocido: %q", cfg.Inventory.Store)
}

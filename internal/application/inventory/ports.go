package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// key delimita la sección exclusiva: dos Run con la misma clave nunca se solapan,
// claves distintas avanzan en paralelo. Si fn devuelve error no queda ninguna escritura visible.
type TxRunner interface {
	Run(ctx context.Context, key entity.StockKey, fn func(
		ledgerRepo repository.LedgerRepository,
		stockRepo repository.StockRepository,
	) error) error
}

// AlertsCache caché versionada para el resultado de GetAlerts (ver infrastructure/cache).
type AlertsCache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
	Bump(ctx context.Context) error
}

// MovementRecorder recibe el resultado de cada mutación (métricas).
type MovementRecorder interface {
	ObserveMovement(movementType entity.MovementType, outcome string, elapsed time.Duration)
}

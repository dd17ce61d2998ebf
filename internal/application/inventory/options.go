package inventory

import (
	"time"

	"github.com/jhoicas/Inventario-kardex/internal/domain/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
	"github.com/jhoicas/Inventario-kardex/pkg/logger"
)

// Option configura el StockEngine.
type Option func(*StockEngine)

// WithDirectory exige que producto y bodega existan (ErrUnknownKey si no).
func WithDirectory(dir repository.DirectoryRepository) Option {
	return func(e *StockEngine) { e.directory = dir }
}

// WithAlertPolicy reemplaza la política de bandas BAJO/CRITICO.
func WithAlertPolicy(p inventory.AlertPolicy) Option {
	return func(e *StockEngine) { e.policy = p }
}

// WithAlertsCache activa la caché de GetAlerts.
func WithAlertsCache(c AlertsCache) Option {
	return func(e *StockEngine) { e.cache = c }
}

// WithMetrics registra cada mutación en el recorder.
func WithMetrics(m MovementRecorder) Option {
	return func(e *StockEngine) { e.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(e *StockEngine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock fija el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(e *StockEngine) { e.now = now }
}

// WithIDGenerator fija el generador de ids de registros del kardex (tests).
func WithIDGenerator(gen func() string) Option {
	return func(e *StockEngine) { e.newID = gen }
}

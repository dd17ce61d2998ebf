package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain/query"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
	"github.com/jhoicas/Inventario-kardex/pkg/logger"
)

// Resultados registrados en métricas.
const (
	OutcomeAccepted = "accepted"
	OutcomeReplayed = "replayed"
)

// MovementInput entrada de RecordMovement.
// Quantity es la magnitud (> 0) en ENTRADA/SALIDA y el delta con signo en AJUSTE.
type MovementInput struct {
	ProductID         string
	WarehouseID       string
	MovementType      entity.MovementType
	Quantity          int64
	ReasonCode        string
	UserID            string
	ReferenceDocument *string
	Notes             *string
	// IdempotencyKey opcional: un reintento con la misma clave y los mismos datos
	// devuelve el registro ya confirmado.
	IdempotencyKey *string
}

// Alerts resultado de GetAlerts.
type Alerts struct {
	Low      []entity.StockSnapshot `json:"low"`
	Critical []entity.StockSnapshot `json:"critical"`
}

// RebuildResult resultado de RebuildSnapshot.
type RebuildResult struct {
	Key       entity.StockKey
	Previous  int64
	Rebuilt   int64
	Entries   int
	Corrected bool
}

// StockEngine es el motor de stock/kardex: único escritor de snapshots y kardex.
// Cada mutación corre en una sección exclusiva por (producto, bodega) provista por el TxRunner:
// lee el snapshot, valida, agrega el registro al kardex y actualiza el snapshot, todo o nada.
type StockEngine struct {
	txRunner  TxRunner
	stockRepo repository.StockRepository
	ledger    repository.LedgerRepository
	reasons   repository.MovementReasonRepository
	directory repository.DirectoryRepository
	policy    inventory.AlertPolicy
	cache     AlertsCache
	metrics   MovementRecorder
	log       *logger.Logger
	now       func() time.Time
	newID     func() string
}

// NewStockEngine construye el motor. stockRepo y ledgerRepo son los repositorios de lectura
// (fuera de transacción); las escrituras usan los que entrega el TxRunner.
func NewStockEngine(
	txRunner TxRunner,
	stockRepo repository.StockRepository,
	ledgerRepo repository.LedgerRepository,
	reasonRepo repository.MovementReasonRepository,
	opts ...Option,
) *StockEngine {
	e := &StockEngine{
		txRunner:  txRunner,
		stockRepo: stockRepo,
		ledger:    ledgerRepo,
		reasons:   reasonRepo,
		policy:    inventory.DefaultAlertPolicy(),
		log:       logger.Nop(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecordEntry registra una ENTRADA de quantity unidades.
func (e *StockEngine) RecordEntry(ctx context.Context, in MovementInput) (*entity.LedgerEntry, error) {
	in.MovementType = entity.MovementTypeEntrada
	return e.RecordMovement(ctx, in)
}

// RecordExit registra una SALIDA; quantity llega positiva y se aplica como delta negativo.
func (e *StockEngine) RecordExit(ctx context.Context, in MovementInput) (*entity.LedgerEntry, error) {
	in.MovementType = entity.MovementTypeSalida
	return e.RecordMovement(ctx, in)
}

// RecordAdjustment registra un AJUSTE con el delta (con signo) en quantity.
func (e *StockEngine) RecordAdjustment(ctx context.Context, in MovementInput) (*entity.LedgerEntry, error) {
	in.MovementType = entity.MovementTypeAjuste
	return e.RecordMovement(ctx, in)
}

// RecordMovement valida el movimiento y lo aplica de forma atómica.
// Todas las validaciones ocurren antes de escribir; un error nunca deja escrituras parciales.
func (e *StockEngine) RecordMovement(ctx context.Context, in MovementInput) (*entity.LedgerEntry, error) {
	start := time.Now()
	entry, replayed, err := e.recordMovement(ctx, in)
	outcome := OutcomeAccepted
	switch {
	case err != nil:
		outcome = ErrorKind(err)
	case replayed:
		outcome = OutcomeReplayed
	}
	if e.metrics != nil {
		e.metrics.ObserveMovement(in.MovementType, outcome, time.Since(start))
	}

	key := entity.StockKey{ProductID: in.ProductID, WarehouseID: in.WarehouseID}
	if err != nil {
		ev := e.log.Debug()
		if !isRejection(err) {
			ev = e.log.Error()
		}
		ev.Err(err).
			Str("key", key.String()).
			Str("movement_type", string(in.MovementType)).
			Int64("quantity", in.Quantity).
			Str("user_id", in.UserID).
			Msg("movimiento rechazado")
		return nil, err
	}
	if replayed {
		e.log.Info().Str("entry_id", entry.ID).Str("key", key.String()).Msg("movimiento repetido: se devuelve el registro existente")
		return entry, nil
	}

	e.log.Info().
		Str("entry_id", entry.ID).
		Str("key", key.String()).
		Str("movement_type", string(entry.MovementType)).
		Int64("delta", entry.QuantityDelta).
		Int64("before", entry.QuantityBefore).
		Int64("after", entry.QuantityAfter).
		Str("reason", entry.ReasonCode).
		Str("user_id", entry.UserID).
		Msg("movimiento registrado")
	e.invalidateAlerts(ctx)
	return entry, nil
}

func (e *StockEngine) recordMovement(ctx context.Context, in MovementInput) (*entity.LedgerEntry, bool, error) {
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.WarehouseID = strings.TrimSpace(in.WarehouseID)
	in.UserID = strings.TrimSpace(in.UserID)
	in.ReasonCode = strings.ToUpper(strings.TrimSpace(in.ReasonCode))
	if in.ProductID == "" || in.WarehouseID == "" || in.UserID == "" {
		return nil, false, domain.ErrInvalidInput
	}
	if !in.MovementType.Valid() {
		return nil, false, domain.ErrInvalidInput
	}
	delta, err := inventory.SignedDelta(in.MovementType, in.Quantity)
	if err != nil {
		return nil, false, err
	}
	if in.IdempotencyKey != nil && strings.TrimSpace(*in.IdempotencyKey) == "" {
		in.IdempotencyKey = nil
	}

	reason, err := e.reasons.GetByCode(ctx, in.ReasonCode)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}
	if err := inventory.ValidateReason(reason, in.MovementType); err != nil {
		return nil, false, err
	}

	key := entity.StockKey{ProductID: in.ProductID, WarehouseID: in.WarehouseID}
	if err := e.checkDirectory(ctx, key); err != nil {
		return nil, false, err
	}

	var (
		result   *entity.LedgerEntry
		replayed bool
	)
	err = e.txRunner.Run(ctx, key, func(ledgerRepo repository.LedgerRepository, stockRepo repository.StockRepository) error {
		snap, err := stockRepo.GetForUpdate(ctx, key)
		if err != nil {
			return err
		}

		if in.IdempotencyKey != nil {
			prev, err := ledgerRepo.FindByIdempotencyKey(ctx, *in.IdempotencyKey)
			switch {
			case err == nil:
				if !samePayload(prev, in, delta) {
					return fmt.Errorf("clave de idempotencia %q reutilizada: %w", *in.IdempotencyKey, domain.ErrConflict)
				}
				result, replayed = prev, true
				return nil
			case !errors.Is(err, domain.ErrNotFound):
				return err
			}
		}

		head, err := ledgerRepo.Last(ctx, key)
		if err != nil {
			return err
		}
		var chainQty int64
		if head != nil {
			chainQty = head.QuantityAfter
		}
		if chainQty != snap.Quantity {
			return fmt.Errorf("%s: kardex %d, snapshot %d: %w", key, chainQty, snap.Quantity, domain.ErrLedgerInconsistent)
		}

		after, err := inventory.Apply(key, snap.Quantity, delta)
		if err != nil {
			return err
		}

		now := e.now()
		entry := &entity.LedgerEntry{
			ID:                e.newID(),
			Timestamp:         now,
			ProductID:         key.ProductID,
			WarehouseID:       key.WarehouseID,
			MovementType:      in.MovementType,
			QuantityDelta:     delta,
			QuantityBefore:    snap.Quantity,
			QuantityAfter:     after,
			ReasonCode:        reason.Code,
			UserID:            in.UserID,
			ReferenceDocument: in.ReferenceDocument,
			Notes:             in.Notes,
			IdempotencyKey:    in.IdempotencyKey,
		}
		if err := ledgerRepo.Append(ctx, entry); err != nil {
			return err
		}
		snap.Quantity = after
		snap.UpdatedAt = now
		if err := stockRepo.Upsert(ctx, snap); err != nil {
			return err
		}
		result = entry
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, replayed, nil
}

// samePayload compara un reintento con el registro confirmado bajo la misma clave de idempotencia.
func samePayload(prev *entity.LedgerEntry, in MovementInput, delta int64) bool {
	return prev.ProductID == in.ProductID &&
		prev.WarehouseID == in.WarehouseID &&
		prev.MovementType == in.MovementType &&
		prev.QuantityDelta == delta &&
		prev.ReasonCode == in.ReasonCode &&
		prev.UserID == in.UserID
}

func (e *StockEngine) checkDirectory(ctx context.Context, key entity.StockKey) error {
	if e.directory == nil {
		return nil
	}
	ok, err := e.directory.ProductExists(ctx, key.ProductID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("producto %s: %w", key.ProductID, domain.ErrUnknownKey)
	}
	ok, err = e.directory.WarehouseExists(ctx, key.WarehouseID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bodega %s: %w", key.WarehouseID, domain.ErrUnknownKey)
	}
	return nil
}

// SetMinimumThreshold fija (o borra con nil) el umbral mínimo de una clave.
// Corre en la misma sección exclusiva que los movimientos porque escribe el snapshot.
func (e *StockEngine) SetMinimumThreshold(ctx context.Context, productID, warehouseID string, minimum *int64) (*entity.StockSnapshot, error) {
	key := entity.StockKey{ProductID: strings.TrimSpace(productID), WarehouseID: strings.TrimSpace(warehouseID)}
	if key.ProductID == "" || key.WarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if minimum != nil && *minimum < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if err := e.checkDirectory(ctx, key); err != nil {
		return nil, err
	}
	var result *entity.StockSnapshot
	err := e.txRunner.Run(ctx, key, func(_ repository.LedgerRepository, stockRepo repository.StockRepository) error {
		snap, err := stockRepo.GetForUpdate(ctx, key)
		if err != nil {
			return err
		}
		snap.MinimumThreshold = nil
		if minimum != nil {
			m := *minimum
			snap.MinimumThreshold = &m
		}
		snap.UpdatedAt = e.now()
		if err := stockRepo.Upsert(ctx, snap); err != nil {
			return err
		}
		result = snap
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("key", key.String()).Interface("minimum_threshold", minimum).Msg("umbral mínimo actualizado")
	e.invalidateAlerts(ctx)
	return result, nil
}

// RebuildSnapshot recalcula el snapshot de una clave reproduciendo su kardex.
// Falla con ErrLedgerInconsistent si la cadena before/after está rota y con ErrNotFound
// si la clave no tiene snapshot ni registros.
func (e *StockEngine) RebuildSnapshot(ctx context.Context, productID, warehouseID string) (*RebuildResult, error) {
	key := entity.StockKey{ProductID: strings.TrimSpace(productID), WarehouseID: strings.TrimSpace(warehouseID)}
	if key.ProductID == "" || key.WarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	var result *RebuildResult
	err := e.txRunner.Run(ctx, key, func(ledgerRepo repository.LedgerRepository, stockRepo repository.StockRepository) error {
		existed := true
		if _, err := stockRepo.Get(ctx, key); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			existed = false
		}
		snap, err := stockRepo.GetForUpdate(ctx, key)
		if err != nil {
			return err
		}
		entries, err := ledgerRepo.ListByKey(ctx, key)
		if err != nil {
			return err
		}
		if !existed && len(entries) == 0 {
			return domain.ErrNotFound
		}
		qty, err := inventory.Replay(entries)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		result = &RebuildResult{Key: key, Previous: snap.Quantity, Rebuilt: qty, Entries: len(entries)}
		if snap.Quantity == qty {
			return nil
		}
		snap.Quantity = qty
		snap.UpdatedAt = e.now()
		result.Corrected = true
		return stockRepo.Upsert(ctx, snap)
	})
	if err != nil {
		return nil, err
	}
	if result.Corrected {
		e.log.Warn().Str("key", key.String()).Int64("previous", result.Previous).Int64("rebuilt", result.Rebuilt).Msg("snapshot corregido desde el kardex")
		e.invalidateAlerts(ctx)
	}
	return result, nil
}

// GetStock lista snapshots con etiquetas, filtro, orden y paginación.
func (e *StockEngine) GetStock(ctx context.Context, q query.StockQuery) ([]entity.StockRow, int, error) {
	q.Policy = e.policy
	q, err := q.Normalize()
	if err != nil {
		return nil, 0, err
	}
	rows, total, err := e.stockRepo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	for i := range rows {
		rows[i].AlertState = e.policy.Classify(rows[i].Quantity, rows[i].MinimumThreshold)
	}
	return rows, total, nil
}

// GetKardex lista el kardex de una bodega (warehouseId obligatorio).
func (e *StockEngine) GetKardex(ctx context.Context, q query.KardexQuery) ([]entity.LedgerEntry, int, error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, 0, err
	}
	return e.ledger.List(ctx, q)
}

// GetAlerts clasifica todos los snapshots con umbral en BAJO y CRITICO.
// Con caché configurada el resultado puede ir levemente atrasado respecto al último movimiento.
func (e *StockEngine) GetAlerts(ctx context.Context) (*Alerts, error) {
	if e.cache == nil {
		return e.scanAlerts(ctx)
	}
	key, err := e.cache.BuildKey(ctx, "inventory", "alerts", e.policy.LowStockMultiplier.String())
	if err == nil {
		var out Alerts
		err = e.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
			return e.scanAlerts(ctx)
		})
		if err == nil {
			return &out, nil
		}
	}
	if isRejection(err) || errors.Is(err, domain.ErrStoreUnavailable) {
		return nil, err
	}
	e.log.Warn().Err(err).Msg("caché de alertas no disponible, se consulta el almacén")
	return e.scanAlerts(ctx)
}

func (e *StockEngine) scanAlerts(ctx context.Context) (*Alerts, error) {
	snaps, err := e.stockRepo.ListWithThreshold(ctx)
	if err != nil {
		return nil, err
	}
	out := &Alerts{Low: []entity.StockSnapshot{}, Critical: []entity.StockSnapshot{}}
	for _, s := range snaps {
		switch e.policy.Classify(s.Quantity, s.MinimumThreshold) {
		case entity.AlertCritico:
			out.Critical = append(out.Critical, s)
		case entity.AlertBajo:
			out.Low = append(out.Low, s)
		}
	}
	return out, nil
}

func (e *StockEngine) invalidateAlerts(ctx context.Context) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Bump(ctx); err != nil {
		e.log.Warn().Err(err).Msg("no se pudo invalidar la caché de alertas")
	}
}

// ErrorKind etiqueta corta del tipo de error (métricas y logs).
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return OutcomeAccepted
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, domain.ErrInvalidReason):
		return "invalid_reason"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrUnknownKey):
		return "unknown_key"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "concurrency_conflict"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, domain.ErrLedgerInconsistent):
		return "ledger_inconsistent"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	}
	return "error"
}

// isRejection indica errores de validación/negocio (no fallas de infraestructura).
func isRejection(err error) bool {
	switch ErrorKind(err) {
	case "invalid_quantity", "invalid_reason", "insufficient_stock", "unknown_key", "conflict", "invalid_input":
		return true
	}
	return false
}

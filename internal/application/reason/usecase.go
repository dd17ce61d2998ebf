// Package reason administra el registro de motivos de movimiento.
package reason

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-kardex/internal/application/dto"
	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
	"github.com/jhoicas/Inventario-kardex/pkg/logger"
)

// UseCase casos de uso del registro de motivos.
// Un motivo referenciado por el kardex nunca se elimina: sólo se desactiva.
type UseCase struct {
	repo   repository.MovementReasonRepository
	ledger repository.LedgerRepository
	log    *logger.Logger
	now    func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.MovementReasonRepository, ledger repository.LedgerRepository, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		repo:   repo,
		ledger: ledger,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create da de alta un motivo. El código se normaliza a mayúsculas y es único.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateReasonRequest) (*entity.MovementReason, error) {
	mt, ok := entity.ParseMovementType(in.MovementType)
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	code := normalizeCode(in.Code)
	label := strings.TrimSpace(in.Label)
	if code == "" || label == "" {
		return nil, domain.ErrInvalidInput
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	now := uc.now()
	reason := &entity.MovementReason{
		ID:               uuid.New().String(),
		MovementType:     mt,
		Code:             code,
		Label:            label,
		Active:           active,
		RequiresDocument: in.RequiresDocument,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repo.Create(ctx, reason); err != nil {
		return nil, err
	}
	uc.log.Info().Str("code", reason.Code).Str("movement_type", string(mt)).Msg("motivo creado")
	return reason, nil
}

// List lista motivos, opcionalmente de un tipo y sólo activos.
func (uc *UseCase) List(ctx context.Context, movementType string, onlyActive bool) ([]entity.MovementReason, error) {
	filter := repository.ReasonFilter{OnlyActive: onlyActive}
	if strings.TrimSpace(movementType) != "" {
		mt, ok := entity.ParseMovementType(movementType)
		if !ok {
			return nil, domain.ErrInvalidInput
		}
		filter.MovementType = &mt
	}
	return uc.repo.List(ctx, filter)
}

// Activate reactiva un motivo.
func (uc *UseCase) Activate(ctx context.Context, id string) (*entity.MovementReason, error) {
	return uc.setActive(ctx, id, true)
}

// Deactivate desactiva un motivo: deja de admitir movimientos nuevos y sigue visible en el histórico.
func (uc *UseCase) Deactivate(ctx context.Context, id string) (*entity.MovementReason, error) {
	return uc.setActive(ctx, id, false)
}

func (uc *UseCase) setActive(ctx context.Context, id string, active bool) (*entity.MovementReason, error) {
	if err := uc.repo.SetActive(ctx, id, active, uc.now()); err != nil {
		return nil, err
	}
	reason, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("code", reason.Code).Bool("active", active).Msg("motivo actualizado")
	return reason, nil
}

// Delete elimina un motivo que nunca se usó; si el kardex lo referencia devuelve ErrReasonInUse.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	reason, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	used, err := uc.ledger.ReferencesReason(ctx, reason.Code)
	if err != nil {
		return err
	}
	if used {
		return domain.ErrReasonInUse
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("code", reason.Code).Msg("motivo eliminado")
	return nil
}

// Seed crea los motivos por defecto que falten (almacén en memoria; PostgreSQL los trae la migración).
func (uc *UseCase) Seed(ctx context.Context) error {
	for _, in := range DefaultReasons() {
		if _, err := uc.Create(ctx, in); err != nil && !errors.Is(err, domain.ErrDuplicate) {
			return err
		}
	}
	return nil
}

// DefaultReasons motivos iniciales por tipo de movimiento.
func DefaultReasons() []dto.CreateReasonRequest {
	return []dto.CreateReasonRequest{
		{MovementType: "ENTRADA", Code: "COMPRA", Label: "Compra a proveedor", RequiresDocument: true},
		{MovementType: "ENTRADA", Code: "DEVOLUCION_CLIENTE", Label: "Devolución de cliente"},
		{MovementType: "SALIDA", Code: "VENTA", Label: "Venta", RequiresDocument: true},
		{MovementType: "SALIDA", Code: "MERMA", Label: "Merma o daño"},
		{MovementType: "AJUSTE", Code: "CONTEO_FISICO", Label: "Conteo físico"},
		{MovementType: "AJUSTE", Code: "CORRECCION", Label: "Corrección de registro"},
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), " ", "_"))
}

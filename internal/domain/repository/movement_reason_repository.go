package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// ReasonFilter filtros del listado de motivos.
type ReasonFilter struct {
	MovementType *entity.MovementType
	OnlyActive   bool
}

// MovementReasonRepository define el puerto de persistencia del registro de motivos.
type MovementReasonRepository interface {
	Create(ctx context.Context, reason *entity.MovementReason) error
	GetByID(ctx context.Context, id string) (*entity.MovementReason, error)
	GetByCode(ctx context.Context, code string) (*entity.MovementReason, error)
	List(ctx context.Context, filter ReasonFilter) ([]entity.MovementReason, error)
	SetActive(ctx context.Context, id string, active bool, at time.Time) error
	Delete(ctx context.Context, id string) error
}

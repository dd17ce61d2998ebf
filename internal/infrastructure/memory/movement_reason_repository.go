package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

var _ repository.MovementReasonRepository = (*MovementReasonRepository)(nil)

// MovementReasonRepository registro de motivos en memoria. Code es único.
type MovementReasonRepository struct {
	store *Store
}

// NewMovementReasonRepository construye el repositorio.
func NewMovementReasonRepository(store *Store) *MovementReasonRepository {
	return &MovementReasonRepository{store: store}
}

func (r *MovementReasonRepository) Create(_ context.Context, reason *entity.MovementReason) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.reasons[reason.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.store.reasons {
		if existing.Code == reason.Code {
			return domain.ErrDuplicate
		}
	}
	r.store.reasons[reason.ID] = *reason
	return nil
}

func (r *MovementReasonRepository) GetByID(_ context.Context, id string) (*entity.MovementReason, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	reason, ok := r.store.reasons[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &reason, nil
}

func (r *MovementReasonRepository) GetByCode(_ context.Context, code string) (*entity.MovementReason, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, reason := range r.store.reasons {
		if reason.Code == code {
			return &reason, nil
		}
	}
	return nil, domain.ErrNotFound
}

// List ordenado por tipo y código.
func (r *MovementReasonRepository) List(_ context.Context, filter repository.ReasonFilter) ([]entity.MovementReason, error) {
	r.store.mu.RLock()
	out := make([]entity.MovementReason, 0, len(r.store.reasons))
	for _, reason := range r.store.reasons {
		if filter.MovementType != nil && reason.MovementType != *filter.MovementType {
			continue
		}
		if filter.OnlyActive && !reason.Active {
			continue
		}
		out = append(out, reason)
	}
	r.store.mu.RUnlock()

	slices.SortFunc(out, func(a, b entity.MovementReason) int {
		if c := cmp.Compare(a.MovementType, b.MovementType); c != 0 {
			return c
		}
		return cmp.Compare(a.Code, b.Code)
	})
	return out, nil
}

func (r *MovementReasonRepository) SetActive(_ context.Context, id string, active bool, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	reason, ok := r.store.reasons[id]
	if !ok {
		return domain.ErrNotFound
	}
	reason.Active = active
	reason.UpdatedAt = at
	r.store.reasons[id] = reason
	return nil
}

// Delete comprueba el uso en el kardex y borra bajo el mismo write lock que commit,
// igual que la FK de kardex_entries en PostgreSQL.
func (r *MovementReasonRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	reason, ok := r.store.reasons[id]
	if !ok {
		return domain.ErrNotFound
	}
	if r.store.reasonReferenced(reason.Code) {
		return domain.ErrReasonInUse
	}
	delete(r.store.reasons, id)
	return nil
}

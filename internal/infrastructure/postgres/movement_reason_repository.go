package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

var _ repository.MovementReasonRepository = (*MovementReasonRepo)(nil)

const reasonColumns = "id, movement_type, code, label, active, requires_document, created_at, updated_at"

// MovementReasonRepo registro de motivos sobre PostgreSQL.
type MovementReasonRepo struct {
	q Querier
}

// NewMovementReasonRepository construye el adaptador.
func NewMovementReasonRepository(q Querier) *MovementReasonRepo {
	return &MovementReasonRepo{q: q}
}

func (r *MovementReasonRepo) Create(ctx context.Context, m *entity.MovementReason) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO movement_reasons (id, movement_type, code, label, active, requires_document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, string(m.MovementType), m.Code, m.Label, m.Active, m.RequiresDocument, m.CreatedAt, m.UpdatedAt,
	)
	return classify("create movement reason", err)
}

func (r *MovementReasonRepo) GetByID(ctx context.Context, id string) (*entity.MovementReason, error) {
	return r.getOne(ctx, "id", id)
}

func (r *MovementReasonRepo) GetByCode(ctx context.Context, code string) (*entity.MovementReason, error) {
	return r.getOne(ctx, "code", code)
}

func (r *MovementReasonRepo) getOne(ctx context.Context, column, value string) (*entity.MovementReason, error) {
	sql, args, err := psql.Select(reasonColumns).From("movement_reasons").Where(squirrel.Eq{column: value}).ToSql()
	if err != nil {
		return nil, classify("build movement reason query", err)
	}
	var m entity.MovementReason
	if err := pgxscan.Get(ctx, r.q, &m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, classify("get movement reason", err)
	}
	return &m, nil
}

func (r *MovementReasonRepo) List(ctx context.Context, filter repository.ReasonFilter) ([]entity.MovementReason, error) {
	b := psql.Select(reasonColumns).From("movement_reasons").OrderBy("movement_type", "code")
	if filter.MovementType != nil {
		b = b.Where(squirrel.Eq{"movement_type": string(*filter.MovementType)})
	}
	if filter.OnlyActive {
		b = b.Where(squirrel.Eq{"active": true})
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, classify("build movement reason list", err)
	}
	out := make([]entity.MovementReason, 0)
	if err := pgxscan.Select(ctx, r.q, &out, sql, args...); err != nil {
		return nil, classify("list movement reasons", err)
	}
	return out, nil
}

func (r *MovementReasonRepo) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE movement_reasons SET active = $2, updated_at = $3 WHERE id = $1`, id, active, at)
	if err != nil {
		return classify("set movement reason active", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete la FK desde kardex_entries impide borrar motivos usados (ErrReasonInUse).
func (r *MovementReasonRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM movement_reasons WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return fmt.Errorf("delete movement reason: %w: %w", domain.ErrReasonInUse, err)
		}
		return classify("delete movement reason", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

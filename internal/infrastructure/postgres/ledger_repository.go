package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/query"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const (
	kardexTable   = "kardex_entries"
	kardexColumns = `id, seq, occurred_at, product_id, warehouse_id, movement_type, quantity_delta,
		quantity_before, quantity_after, reason_code, user_id, reference_document, notes, idempotency_key`
	idempotencyConstraint = "kardex_entries_idempotency_key_key"
)

// columnas de orden permitidas para el kardex.
var kardexSortColumns = map[string]string{
	query.KardexSortTimestamp: "occurred_at",
	query.KardexSortProduct:   "product_id",
	query.KardexSortType:      "movement_type",
	query.KardexSortDelta:     "quantity_delta",
}

// LedgerRepo kardex sobre PostgreSQL. La tabla rechaza UPDATE/DELETE con un trigger.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador del kardex. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Append inserta el registro y completa Sequence con el valor asignado por la secuencia.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO kardex_entries (id, occurred_at, product_id, warehouse_id, movement_type,
			quantity_delta, quantity_before, quantity_after, reason_code, user_id,
			reference_document, notes, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING seq`,
		e.ID, e.Timestamp, e.ProductID, e.WarehouseID, string(e.MovementType),
		e.QuantityDelta, e.QuantityBefore, e.QuantityAfter, e.ReasonCode, e.UserID,
		e.ReferenceDocument, e.Notes, e.IdempotencyKey,
	).Scan(&e.Sequence)
	if err != nil {
		if isUniqueViolation(err) && constraintName(err) == idempotencyConstraint {
			return fmt.Errorf("append kardex: %w: %w", domain.ErrConflict, err)
		}
		if pgCode(err) == codeForeignKeyViolation {
			return fmt.Errorf("append kardex: %w: %w", domain.ErrInvalidReason, err)
		}
		return classify("append kardex", err)
	}
	return nil
}

// Last cabeza de la cadena de la clave; nil si no hay registros.
func (r *LedgerRepo) Last(ctx context.Context, key entity.StockKey) (*entity.LedgerEntry, error) {
	sql := `SELECT ` + kardexColumns + ` FROM kardex_entries
		WHERE product_id = $1 AND warehouse_id = $2
		ORDER BY seq DESC LIMIT 1`
	var e entity.LedgerEntry
	if err := pgxscan.Get(ctx, r.q, &e, sql, key.ProductID, key.WarehouseID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, classify("last kardex entry", err)
	}
	return &e, nil
}

// ListByKey cadena completa de la clave en orden de seq.
func (r *LedgerRepo) ListByKey(ctx context.Context, key entity.StockKey) ([]entity.LedgerEntry, error) {
	sql := `SELECT ` + kardexColumns + ` FROM kardex_entries
		WHERE product_id = $1 AND warehouse_id = $2
		ORDER BY seq ASC`
	out := make([]entity.LedgerEntry, 0)
	if err := pgxscan.Select(ctx, r.q, &out, sql, key.ProductID, key.WarehouseID); err != nil {
		return nil, classify("list kardex by key", err)
	}
	return out, nil
}

func (r *LedgerRepo) FindByIdempotencyKey(ctx context.Context, idempotencyKey string) (*entity.LedgerEntry, error) {
	sql := `SELECT ` + kardexColumns + ` FROM kardex_entries WHERE idempotency_key = $1`
	var e entity.LedgerEntry
	if err := pgxscan.Get(ctx, r.q, &e, sql, idempotencyKey); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, classify("find kardex by idempotency key", err)
	}
	return &e, nil
}

// List página del kardex de una bodega y total filtrado. La query debe venir normalizada.
func (r *LedgerRepo) List(ctx context.Context, q query.KardexQuery) ([]entity.LedgerEntry, int, error) {
	countQ, rowsQ := buildKardexListQuery(q)

	sql, args, err := countQ.ToSql()
	if err != nil {
		return nil, 0, classify("build kardex count", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, 0, classify("count kardex", err)
	}

	sql, args, err = rowsQ.ToSql()
	if err != nil {
		return nil, 0, classify("build kardex list", err)
	}
	out := make([]entity.LedgerEntry, 0)
	if err := pgxscan.Select(ctx, r.q, &out, sql, args...); err != nil {
		return nil, 0, classify("list kardex", err)
	}
	return out, total, nil
}

func (r *LedgerRepo) ReferencesReason(ctx context.Context, code string) (bool, error) {
	var used bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM kardex_entries WHERE reason_code = $1)`, code).Scan(&used)
	if err != nil {
		return false, classify("reason usage", err)
	}
	return used, nil
}

func buildKardexListQuery(q query.KardexQuery) (count, rows squirrel.SelectBuilder) {
	f := q.Filter
	base := psql.Select().From(kardexTable).Where(squirrel.Eq{"warehouse_id": f.WarehouseID})
	if f.ProductID != "" {
		base = base.Where(squirrel.Eq{"product_id": f.ProductID})
	}
	if f.MovementType != nil {
		base = base.Where(squirrel.Eq{"movement_type": string(*f.MovementType)})
	}
	if f.DateFrom != nil {
		base = base.Where(squirrel.GtOrEq{"occurred_at": *f.DateFrom})
	}
	if f.DateTo != nil {
		base = base.Where(squirrel.LtOrEq{"occurred_at": *f.DateTo})
	}

	count = base.Columns("COUNT(*)")

	dir := "ASC"
	if q.SortOrder == query.Desc {
		dir = "DESC"
	}
	col, ok := kardexSortColumns[q.SortBy]
	if !ok {
		col = "occurred_at"
	}
	rows = base.Columns(kardexColumns).
		OrderBy(col+" "+dir, "id "+dir).
		Limit(uint64(q.Page.Size)).
		Offset(uint64(q.Page.Offset()))
	return count, rows
}

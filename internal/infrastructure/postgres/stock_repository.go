package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/query"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const snapshotColumns = "s.product_id, s.warehouse_id, s.quantity, s.minimum_threshold, s.updated_at"

// stateRankExpr replica AlertPolicy.Classify en SQL: 0 CRITICO, 1 BAJO, 2 NORMAL.
// El único parámetro es el multiplicador de la banda BAJO.
const stateRankExpr = `CASE
	WHEN s.minimum_threshold IS NULL THEN 2
	WHEN s.quantity <= s.minimum_threshold THEN 0
	WHEN s.quantity <= s.minimum_threshold * CAST(? AS NUMERIC) THEN 1
	ELSE 2 END`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el snapshot de un producto en una bodega.
func (r *StockRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockSnapshot, error) {
	sql := `SELECT ` + snapshotColumns + `
		FROM stock_snapshots s WHERE s.product_id = $1 AND s.warehouse_id = $2`
	var s entity.StockSnapshot
	if err := pgxscan.Get(ctx, r.q, &s, sql, key.ProductID, key.WarehouseID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, classify("get stock", err)
	}
	return &s, nil
}

// GetForUpdate crea la fila en 0 si no existe y la bloquea (SELECT FOR UPDATE) hasta el fin de la tx.
// Si la tx se revierte, la fila creada desaparece con ella.
func (r *StockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockSnapshot, error) {
	if _, err := r.q.Exec(ctx, `
		INSERT INTO stock_snapshots (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`,
		key.ProductID, key.WarehouseID,
	); err != nil {
		return nil, classify("create stock row", err)
	}
	sql := `SELECT ` + snapshotColumns + `
		FROM stock_snapshots s WHERE s.product_id = $1 AND s.warehouse_id = $2
		FOR UPDATE`
	var s entity.StockSnapshot
	if err := pgxscan.Get(ctx, r.q, &s, sql, key.ProductID, key.WarehouseID); err != nil {
		return nil, classify("get stock for update", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza cantidad, umbral y fecha del snapshot.
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.StockSnapshot) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_snapshots (product_id, warehouse_id, quantity, minimum_threshold, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity,
			minimum_threshold = EXCLUDED.minimum_threshold,
			updated_at = EXCLUDED.updated_at`,
		stock.ProductID, stock.WarehouseID, stock.Quantity, stock.MinimumThreshold, stock.UpdatedAt,
	)
	return classify("upsert stock", err)
}

// List devuelve una página de snapshots etiquetados y el total filtrado.
func (r *StockRepo) List(ctx context.Context, q query.StockQuery) ([]entity.StockRow, int, error) {
	countQ, rowsQ := buildStockListQuery(q)

	sql, args, err := countQ.ToSql()
	if err != nil {
		return nil, 0, classify("build stock count", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, 0, classify("count stock", err)
	}

	sql, args, err = rowsQ.ToSql()
	if err != nil {
		return nil, 0, classify("build stock list", err)
	}
	rows := make([]entity.StockRow, 0)
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, 0, classify("list stock", err)
	}
	return rows, total, nil
}

// ListWithThreshold snapshots con umbral, ordenados por producto y bodega.
func (r *StockRepo) ListWithThreshold(ctx context.Context) ([]entity.StockSnapshot, error) {
	sql := `SELECT ` + snapshotColumns + `
		FROM stock_snapshots s
		WHERE s.minimum_threshold IS NOT NULL
		ORDER BY s.product_id, s.warehouse_id`
	out := make([]entity.StockSnapshot, 0)
	if err := pgxscan.Select(ctx, r.q, &out, sql); err != nil {
		return nil, classify("list stock with threshold", err)
	}
	return out, nil
}

// buildStockListQuery arma el conteo y la página. La query debe venir normalizada.
func buildStockListQuery(q query.StockQuery) (count, rows squirrel.SelectBuilder) {
	mult := q.Policy.LowStockMultiplier.String()

	base := psql.Select().
		From("stock_snapshots s").
		LeftJoin("products p ON p.id = s.product_id").
		LeftJoin("warehouses w ON w.id = s.warehouse_id")

	f := q.Filter
	if f.WarehouseID != "" {
		base = base.Where(squirrel.Eq{"s.warehouse_id": f.WarehouseID})
	}
	if f.ProductID != "" {
		base = base.Where(squirrel.Eq{"s.product_id": f.ProductID})
	}
	if f.State != nil {
		base = base.Where(squirrel.Expr("("+stateRankExpr+") = ?", mult, f.State.Rank()))
	}
	if f.TextQuery != "" {
		like := "%" + f.TextQuery + "%"
		base = base.Where(squirrel.Or{
			squirrel.ILike{"p.name": like},
			squirrel.ILike{"p.sku": like},
			squirrel.ILike{"s.product_id": like},
		})
	}

	count = base.Columns("COUNT(*)")

	dir := "ASC"
	if q.SortOrder == query.Desc {
		dir = "DESC"
	}
	rows = base.Columns(
		snapshotColumns,
		"COALESCE(p.name, s.product_id) AS product_label",
		"COALESCE(w.name, s.warehouse_id) AS warehouse_label",
	)
	switch q.SortBy {
	case query.StockSortQuantity:
		rows = rows.OrderBy("s.quantity " + dir)
	case query.StockSortState:
		rows = rows.OrderByClause("("+stateRankExpr+") "+dir, mult)
	case query.StockSortUpdatedAt:
		rows = rows.OrderBy("s.updated_at " + dir)
	default:
		rows = rows.OrderBy("LOWER(COALESCE(p.name, s.product_id)) " + dir)
	}
	rows = rows.OrderBy("s.product_id ASC", "s.warehouse_id ASC").
		Limit(uint64(q.Page.Size)).
		Offset(uint64(q.Page.Offset()))
	return count, rows
}

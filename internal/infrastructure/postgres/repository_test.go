package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain/query"
	"github.com/jhoicas/Inventario-kardex/pkg/config"
)

func TestBuildStockListQuery_FiltrosYOrden(t *testing.T) {
	critico := entity.AlertCritico
	policy, err := inventory.NewAlertPolicy(decimal.RequireFromString("1.5"))
	require.NoError(t, err)

	q, err := query.StockQuery{
		Filter:    query.StockFilter{WarehouseID: "w1", State: &critico, TextQuery: "arroz"},
		Page:      query.Page{Number: 2, Size: 10},
		SortBy:    query.StockSortState,
		SortOrder: query.Desc,
		Policy:    policy,
	}.Normalize()
	require.NoError(t, err)

	countQ, rowsQ := buildStockListQuery(q)

	sql, args, err := countQ.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "SELECT COUNT(*) FROM stock_snapshots s")
	assert.Contains(t, sql, "s.warehouse_id = $1")
	assert.Contains(t, sql, "ILIKE")
	assert.Equal(t, []any{"w1", "1.5", 0, "%arroz%", "%arroz%", "%arroz%"}, args)

	sql, args, err = rowsQ.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "COALESCE(p.name, s.product_id) AS product_label")
	assert.Contains(t, sql, "END) DESC, s.product_id ASC, s.warehouse_id ASC")
	assert.Contains(t, sql, "LIMIT 10 OFFSET 10")
	assert.Equal(t, "1.5", args[len(args)-1], "el multiplicador del ORDER BY va al final")
}

func TestBuildStockListQuery_OrdenPorDefecto(t *testing.T) {
	q, err := query.StockQuery{}.Normalize()
	require.NoError(t, err)

	_, rowsQ := buildStockListQuery(q)
	sql, args, err := rowsQ.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "ORDER BY LOWER(COALESCE(p.name, s.product_id)) ASC, s.product_id ASC")
	assert.NotContains(t, sql, "WHERE")
	assert.Empty(t, args)
}

func TestBuildKardexListQuery(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	salida := entity.MovementTypeSalida
	q, err := query.KardexQuery{
		Filter: query.KardexFilter{WarehouseID: "w1", ProductID: "p1", MovementType: &salida, DateFrom: &from},
	}.Normalize()
	require.NoError(t, err)

	countQ, rowsQ := buildKardexListQuery(q)
	sql, args, err := countQ.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM kardex_entries WHERE warehouse_id = $1 AND product_id = $2 AND movement_type = $3 AND occurred_at >= $4", sql)
	assert.Equal(t, []any{"w1", "p1", "SALIDA", from}, args)

	sql, _, err = rowsQ.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "ORDER BY occurred_at DESC, id DESC LIMIT 20 OFFSET 0")
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("op", nil))

	deadlock := &pgconn.PgError{Code: codeDeadlockDetected}
	err := classify("op", deadlock)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr), "se conserva el error original")

	assert.ErrorIs(t, classify("op", &pgconn.PgError{Code: codeSerializationFailure}), domain.ErrConcurrencyConflict)
	assert.ErrorIs(t, classify("op", &pgconn.PgError{Code: codeUniqueViolation}), domain.ErrDuplicate)
	assert.ErrorIs(t, classify("op", errors.New("connection refused")), domain.ErrStoreUnavailable)

	canceled := classify("op", fmt.Errorf("x: %w", contextCanceled()))
	assert.NotErrorIs(t, canceled, domain.ErrStoreUnavailable)
}

func TestRedactedDSN(t *testing.T) {
	cfg := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "secreto", DBName: "kardex", SSLMode: "disable"}
	assert.NotContains(t, RedactedDSN(cfg), "secreto")
}

func contextCanceled() error {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx.Err()
}

package query

import (
	"testing"
	"time"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockQuery_NormalizeDefaults(t *testing.T) {
	q, err := StockQuery{}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page.Number)
	assert.Equal(t, DefaultPageSize, q.Page.Size)
	assert.Equal(t, StockSortProduct, q.SortBy)
	assert.Equal(t, Asc, q.SortOrder)
	assert.False(t, q.Policy.LowStockMultiplier.IsZero())
}

func TestStockQuery_NormalizeRechazos(t *testing.T) {
	bad := entity.AlertState("ROJO")
	cases := map[string]StockQuery{
		"orden desconocido":  {SortBy: "price"},
		"dirección inválida": {SortOrder: "up"},
		"página muy grande":  {Page: Page{Size: MaxPageSize + 1}},
		"estado desconocido": {Filter: StockFilter{State: &bad}},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := q.Normalize()
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestKardexQuery_Normalize(t *testing.T) {
	_, err := KardexQuery{}.Normalize()
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "warehouseId es obligatorio")

	q, err := KardexQuery{Filter: KardexFilter{WarehouseID: "w1"}, SortOrder: "ASC"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, KardexSortTimestamp, q.SortBy)
	assert.Equal(t, Asc, q.SortOrder)

	q, err = KardexQuery{Filter: KardexFilter{WarehouseID: "w1"}}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, Desc, q.SortOrder, "por defecto el más reciente primero")

	from := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)
	_, err = KardexQuery{Filter: KardexFilter{WarehouseID: "w1", DateFrom: &from, DateTo: &to}}.Normalize()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSortStock_DesempatePorProducto(t *testing.T) {
	rows := []entity.StockRow{
		{StockSnapshot: entity.StockSnapshot{ProductID: "p3", WarehouseID: "w1", Quantity: 5}},
		{StockSnapshot: entity.StockSnapshot{ProductID: "p1", WarehouseID: "w2", Quantity: 5}},
		{StockSnapshot: entity.StockSnapshot{ProductID: "p1", WarehouseID: "w1", Quantity: 5}},
		{StockSnapshot: entity.StockSnapshot{ProductID: "p2", WarehouseID: "w1", Quantity: 1}},
	}
	SortStock(rows, StockSortQuantity, Desc)

	got := make([]string, 0, len(rows))
	for _, r := range rows {
		got = append(got, r.Key().String())
	}
	assert.Equal(t, []string{"p1@w1", "p1@w2", "p3@w1", "p2@w1"}, got)
}

func TestSortStock_PorEstado(t *testing.T) {
	rows := []entity.StockRow{
		{StockSnapshot: entity.StockSnapshot{ProductID: "a"}, AlertState: entity.AlertNormal},
		{StockSnapshot: entity.StockSnapshot{ProductID: "b"}, AlertState: entity.AlertCritico},
		{StockSnapshot: entity.StockSnapshot{ProductID: "c"}, AlertState: entity.AlertBajo},
	}
	SortStock(rows, StockSortState, Asc)
	assert.Equal(t, "b", rows[0].ProductID)
	assert.Equal(t, "c", rows[1].ProductID)
	assert.Equal(t, "a", rows[2].ProductID)
}

func TestSortKardex_DesempatePorID(t *testing.T) {
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	entries := []entity.LedgerEntry{
		{ID: "a", Timestamp: ts},
		{ID: "c", Timestamp: ts.Add(time.Minute)},
		{ID: "b", Timestamp: ts},
	}
	SortKardex(entries, KardexSortTimestamp, Desc)
	assert.Equal(t, "c", entries[0].ID)
	assert.Equal(t, "b", entries[1].ID)
	assert.Equal(t, "a", entries[2].ID)
}

func TestMatchStock_TextoSinTildes(t *testing.T) {
	row := entity.StockRow{StockSnapshot: entity.StockSnapshot{ProductID: "p1", WarehouseID: "w1"}, ProductLabel: "Azúcar Morena"}

	assert.True(t, MatchStock(StockFilter{TextQuery: "azucar"}, row, ""))
	assert.True(t, MatchStock(StockFilter{TextQuery: "MORENA"}, row, ""))
	assert.True(t, MatchStock(StockFilter{TextQuery: "sku-9"}, row, "SKU-9"))
	assert.False(t, MatchStock(StockFilter{TextQuery: "sal"}, row, ""))
	assert.False(t, MatchStock(StockFilter{WarehouseID: "w2"}, row, ""))
}

func TestMatchKardex_RangoDeFechas(t *testing.T) {
	ts := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	e := entity.LedgerEntry{WarehouseID: "w1", ProductID: "p1", MovementType: entity.MovementTypeSalida, Timestamp: ts}

	from, to := ts.Add(-time.Hour), ts.Add(time.Hour)
	assert.True(t, MatchKardex(KardexFilter{WarehouseID: "w1", DateFrom: &from, DateTo: &to}, e))
	assert.True(t, MatchKardex(KardexFilter{WarehouseID: "w1", DateFrom: &ts, DateTo: &ts}, e), "límites inclusivos")

	later := ts.Add(time.Second)
	assert.False(t, MatchKardex(KardexFilter{WarehouseID: "w1", DateFrom: &later}, e))

	entrada := entity.MovementTypeEntrada
	assert.False(t, MatchKardex(KardexFilter{WarehouseID: "w1", MovementType: &entrada}, e))
	assert.False(t, MatchKardex(KardexFilter{WarehouseID: "w2"}, e))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2}, Paginate(items, Page{Number: 1, Size: 2}))
	assert.Equal(t, []int{5}, Paginate(items, Page{Number: 3, Size: 2}))
	assert.Empty(t, Paginate(items, Page{Number: 4, Size: 2}))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "cafe con leche", Fold("Café con LECHE"))
	assert.Equal(t, "nino", Fold("Niño"))
}

package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// MatchStock evalúa los filtros de stock sobre una fila ya etiquetada y clasificada.
func MatchStock(f StockFilter, row entity.StockRow, sku string) bool {
	if f.WarehouseID != "" && row.WarehouseID != f.WarehouseID {
		return false
	}
	if f.ProductID != "" && row.ProductID != f.ProductID {
		return false
	}
	if f.State != nil && row.AlertState != *f.State {
		return false
	}
	if f.TextQuery != "" {
		needle := Fold(f.TextQuery)
		if !strings.Contains(Fold(row.ProductLabel), needle) &&
			!strings.Contains(Fold(sku), needle) &&
			!strings.Contains(Fold(row.ProductID), needle) {
			return false
		}
	}
	return true
}

// SortStock ordena filas de stock; desempate por productId y bodega ascendentes.
func SortStock(rows []entity.StockRow, sortBy string, order SortOrder) {
	slices.SortStableFunc(rows, func(a, b entity.StockRow) int {
		var c int
		switch sortBy {
		case StockSortQuantity:
			c = cmp.Compare(a.Quantity, b.Quantity)
		case StockSortState:
			c = cmp.Compare(a.AlertState.Rank(), b.AlertState.Rank())
		case StockSortUpdatedAt:
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			c = cmp.Compare(Fold(a.ProductLabel), Fold(b.ProductLabel))
		}
		if order == Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		if c = cmp.Compare(a.ProductID, b.ProductID); c != 0 {
			return c
		}
		return cmp.Compare(a.WarehouseID, b.WarehouseID)
	})
}

// MatchKardex evalúa los filtros del kardex sobre un registro.
func MatchKardex(f KardexFilter, e entity.LedgerEntry) bool {
	if e.WarehouseID != f.WarehouseID {
		return false
	}
	if f.ProductID != "" && e.ProductID != f.ProductID {
		return false
	}
	if f.MovementType != nil && e.MovementType != *f.MovementType {
		return false
	}
	if f.DateFrom != nil && e.Timestamp.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && e.Timestamp.After(*f.DateTo) {
		return false
	}
	return true
}

// SortKardex ordena registros del kardex; desempate estable por id en la misma dirección.
func SortKardex(entries []entity.LedgerEntry, sortBy string, order SortOrder) {
	slices.SortStableFunc(entries, func(a, b entity.LedgerEntry) int {
		var c int
		switch sortBy {
		case KardexSortProduct:
			c = cmp.Compare(a.ProductID, b.ProductID)
		case KardexSortType:
			c = cmp.Compare(a.MovementType, b.MovementType)
		case KardexSortDelta:
			c = cmp.Compare(a.QuantityDelta, b.QuantityDelta)
		default:
			c = a.Timestamp.Compare(b.Timestamp)
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if order == Desc {
			return -c
		}
		return c
	})
}

// Paginate recorta la página solicitada.
func Paginate[T any](items []T, p Page) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+p.Size, len(items))
	return items[start:end]
}

// Package query define los filtros, orden y paginación de las lecturas de stock y kardex.
// Lo usan tanto el adaptador PostgreSQL (traducido a SQL) como el almacén en memoria.
package query

import (
	"strings"
	"time"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/inventory"
)

// Límites de paginación.
const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// SortOrder dirección de orden.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Claves de orden del listado de stock.
const (
	StockSortProduct   = "product"
	StockSortQuantity  = "quantity"
	StockSortState     = "state"
	StockSortUpdatedAt = "updatedAt"
)

// Claves de orden del kardex.
const (
	KardexSortTimestamp = "timestamp"
	KardexSortProduct   = "productId"
	KardexSortType      = "movementType"
	KardexSortDelta     = "quantityDelta"
)

// Page página 1-based.
type Page struct {
	Number int
	Size   int
}

// Offset desplazamiento para LIMIT/OFFSET.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func (p Page) normalize() (Page, error) {
	if p.Number <= 0 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		return p, domain.ErrInvalidInput
	}
	return p, nil
}

// StockFilter filtros del listado de stock. Campos vacíos/nil no filtran.
type StockFilter struct {
	WarehouseID string
	ProductID   string
	State       *entity.AlertState
	TextQuery   string // libre, sobre la etiqueta/SKU del producto
}

// StockQuery consulta paginada de stock.
type StockQuery struct {
	Filter    StockFilter
	Page      Page
	SortBy    string
	SortOrder SortOrder
	Policy    inventory.AlertPolicy // para filtrar/ordenar por estado
}

// Normalize aplica valores por defecto y rechaza claves de orden desconocidas.
func (q StockQuery) Normalize() (StockQuery, error) {
	var err error
	if q.Page, err = q.Page.normalize(); err != nil {
		return q, err
	}
	if q.SortBy == "" {
		q.SortBy = StockSortProduct
	}
	switch q.SortBy {
	case StockSortProduct, StockSortQuantity, StockSortState, StockSortUpdatedAt:
	default:
		return q, domain.ErrInvalidInput
	}
	if q.SortOrder, err = normalizeOrder(q.SortOrder, Asc); err != nil {
		return q, err
	}
	if q.Filter.State != nil && !q.Filter.State.Valid() {
		return q, domain.ErrInvalidInput
	}
	q.Filter.TextQuery = strings.TrimSpace(q.Filter.TextQuery)
	if q.Policy.LowStockMultiplier.IsZero() {
		q.Policy = inventory.DefaultAlertPolicy()
	}
	return q, nil
}

// KardexFilter filtros del kardex. WarehouseID es obligatorio.
type KardexFilter struct {
	WarehouseID  string
	ProductID    string
	MovementType *entity.MovementType
	DateFrom     *time.Time
	DateTo       *time.Time
}

// KardexQuery consulta paginada del kardex de una bodega.
type KardexQuery struct {
	Filter    KardexFilter
	Page      Page
	SortBy    string
	SortOrder SortOrder
}

// Normalize aplica valores por defecto (timestamp desc) y valida la consulta.
func (q KardexQuery) Normalize() (KardexQuery, error) {
	var err error
	if strings.TrimSpace(q.Filter.WarehouseID) == "" {
		return q, domain.ErrInvalidInput
	}
	if q.Page, err = q.Page.normalize(); err != nil {
		return q, err
	}
	if q.SortBy == "" {
		q.SortBy = KardexSortTimestamp
	}
	switch q.SortBy {
	case KardexSortTimestamp, KardexSortProduct, KardexSortType, KardexSortDelta:
	default:
		return q, domain.ErrInvalidInput
	}
	if q.SortOrder, err = normalizeOrder(q.SortOrder, Desc); err != nil {
		return q, err
	}
	if q.Filter.MovementType != nil && !q.Filter.MovementType.Valid() {
		return q, domain.ErrInvalidInput
	}
	if q.Filter.DateFrom != nil && q.Filter.DateTo != nil && q.Filter.DateFrom.After(*q.Filter.DateTo) {
		return q, domain.ErrInvalidInput
	}
	return q, nil
}

func normalizeOrder(o SortOrder, def SortOrder) (SortOrder, error) {
	switch SortOrder(strings.ToLower(string(o))) {
	case "":
		return def, nil
	case Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return o, domain.ErrInvalidInput
}

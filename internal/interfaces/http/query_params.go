package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/query"
)

const dateOnly = "2006-01-02"

// parsePage lee page y limit (o pageSize). Valores ausentes quedan en 0 y los completa Normalize.
func parsePage(c *fiber.Ctx) (query.Page, error) {
	page, err := optionalInt(c.Query("page"))
	if err != nil {
		return query.Page{}, err
	}
	rawSize := c.Query("limit")
	if rawSize == "" {
		rawSize = c.Query("pageSize")
	}
	size, err := optionalInt(rawSize)
	if err != nil {
		return query.Page{}, err
	}
	return query.Page{Number: page, Size: size}, nil
}

func optionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.ErrInvalidInput
	}
	return n, nil
}

// parseStockQuery traduce los parámetros de GET /stock.
func parseStockQuery(c *fiber.Ctx) (query.StockQuery, error) {
	page, err := parsePage(c)
	if err != nil {
		return query.StockQuery{}, err
	}
	q := query.StockQuery{
		Filter: query.StockFilter{
			WarehouseID: strings.TrimSpace(c.Query("warehouseId")),
			ProductID:   strings.TrimSpace(c.Query("productId")),
			TextQuery:   c.Query("q"),
		},
		Page:      page,
		SortBy:    c.Query("sortBy"),
		SortOrder: query.SortOrder(strings.ToLower(c.Query("order"))),
	}
	if raw := strings.TrimSpace(c.Query("estado")); raw != "" {
		state := entity.AlertState(strings.ToUpper(raw))
		if !state.Valid() {
			return query.StockQuery{}, domain.ErrInvalidInput
		}
		q.Filter.State = &state
	}
	return q, nil
}

// parseKardexQuery traduce los parámetros de GET /kardex.
// fechaHasta en formato fecha (sin hora) incluye el día completo.
func parseKardexQuery(c *fiber.Ctx) (query.KardexQuery, error) {
	page, err := parsePage(c)
	if err != nil {
		return query.KardexQuery{}, err
	}
	q := query.KardexQuery{
		Filter: query.KardexFilter{
			WarehouseID: strings.TrimSpace(c.Query("warehouseId")),
			ProductID:   strings.TrimSpace(c.Query("productId")),
		},
		Page:      page,
		SortBy:    c.Query("sortBy"),
		SortOrder: query.SortOrder(strings.ToLower(c.Query("order"))),
	}
	if raw := strings.TrimSpace(c.Query("tipoMovimiento")); raw != "" {
		mt, ok := entity.ParseMovementType(raw)
		if !ok {
			return query.KardexQuery{}, domain.ErrInvalidInput
		}
		q.Filter.MovementType = &mt
	}
	if raw := strings.TrimSpace(c.Query("fechaDesde")); raw != "" {
		from, _, err := parseDate(raw)
		if err != nil {
			return query.KardexQuery{}, err
		}
		q.Filter.DateFrom = &from
	}
	if raw := strings.TrimSpace(c.Query("fechaHasta")); raw != "" {
		to, dayOnly, err := parseDate(raw)
		if err != nil {
			return query.KardexQuery{}, err
		}
		if dayOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		q.Filter.DateTo = &to
	}
	return q, nil
}

// parseDate acepta RFC3339 o fecha simple (UTC). dayOnly indica el segundo formato.
func parseDate(raw string) (t time.Time, dayOnly bool, err error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), false, nil
	}
	if t, err := time.Parse(dateOnly, raw); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, domain.ErrInvalidInput
}

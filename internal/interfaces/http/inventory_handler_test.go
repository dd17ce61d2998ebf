package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/application/reason"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-kardex/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/Inventario-kardex/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	stockRepo := memory.NewStockRepository(store)
	ledgerRepo := memory.NewLedgerRepository(store)
	reasonRepo := memory.NewMovementReasonRepository(store)

	reasons := reason.NewUseCase(reasonRepo, ledgerRepo, nil)
	require.NoError(t, reasons.Seed(context.Background()))

	m := metrics.NewMetrics()
	engine := inventory.NewStockEngine(memory.NewTxRunner(store), stockRepo, ledgerRepo, reasonRepo,
		inventory.WithClock(func() time.Time { return fixedNow }),
		inventory.WithMetrics(m),
	)

	app := fiber.New()
	app.Use(m.Middleware())
	apphttp.Router(app, apphttp.RouterDeps{
		Engine:         engine,
		Reasons:        reasons,
		JWTSecret:      testJWTSecret,
		ServiceName:    "kardex-test",
		MetricsHandler: m.Handler(),
	})
	return &apiFixture{app: app, store: store}
}

func (f *apiFixture) do(t *testing.T, method, path, role string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenFor(t, role))
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func movement(product, warehouse, reasonCode string, qty int64) map[string]any {
	return map[string]any{
		"productId":   product,
		"warehouseId": warehouse,
		"reasonCode":  reasonCode,
		"quantity":    qty,
	}
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

type stockPage struct {
	Rows []struct {
		ProductID        string `json:"productId"`
		WarehouseID      string `json:"warehouseId"`
		Quantity         int64  `json:"quantity"`
		MinimumThreshold *int64 `json:"minimumThreshold"`
		Estado           string `json:"estado"`
	} `json:"rows"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type kardexPage struct {
	Rows  []entity.LedgerEntry `json:"rows"`
	Total int                  `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

type errorBody struct {
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestMovimientos_EntradaSalidaYStock(t *testing.T) {
	f := newAPI(t)

	status, raw := f.do(t, http.MethodPost, "/api/inventory/entries", "bodeguero", movement("p1", "w1", "COMPRA", 10))
	require.Equal(t, http.StatusCreated, status, string(raw))
	entry := decode[entity.LedgerEntry](t, raw)
	assert.Equal(t, entity.MovementTypeEntrada, entry.MovementType)
	assert.Equal(t, int64(10), entry.QuantityAfter)
	assert.Equal(t, testUserID, entry.UserID)

	status, raw = f.do(t, http.MethodPost, "/api/inventory/exits", "bodeguero", movement("p1", "w1", "VENTA", 4))
	require.Equal(t, http.StatusCreated, status, string(raw))
	exit := decode[entity.LedgerEntry](t, raw)
	assert.Equal(t, int64(-4), exit.QuantityDelta)
	assert.Equal(t, int64(10), exit.QuantityBefore)
	assert.Equal(t, int64(6), exit.QuantityAfter)

	status, raw = f.do(t, http.MethodGet, "/api/inventory/stock?warehouseId=w1", "vendedor", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	page := decode[stockPage](t, raw)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, int64(6), page.Rows[0].Quantity)
	assert.Equal(t, "NORMAL", page.Rows[0].Estado)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)
}

func TestMovimientos_EndpointGenericoConTipo(t *testing.T) {
	f := newAPI(t)

	body := movement("p1", "w1", "CONTEO_FISICO", 7)
	body["tipoMovimiento"] = "ajuste"
	status, raw := f.do(t, http.MethodPost, "/api/inventory/movements", "admin", body)
	require.Equal(t, http.StatusCreated, status, string(raw))
	assert.Equal(t, entity.MovementTypeAjuste, decode[entity.LedgerEntry](t, raw).MovementType)

	delete(body, "tipoMovimiento")
	status, _ = f.do(t, http.MethodPost, "/api/inventory/movements", "admin", body)
	assert.Equal(t, http.StatusBadRequest, status, "sin tipoMovimiento no se puede resolver el tipo")
}

func TestMovimientos_StockInsuficiente409ConDetalle(t *testing.T) {
	f := newAPI(t)
	status, _ := f.do(t, http.MethodPost, "/api/inventory/entries", "bodeguero", movement("p1", "w1", "COMPRA", 3))
	require.Equal(t, http.StatusCreated, status)

	status, raw := f.do(t, http.MethodPost, "/api/inventory/exits", "bodeguero", movement("p1", "w1", "VENTA", 5))
	assert.Equal(t, http.StatusConflict, status)
	body := decode[errorBody](t, raw)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Equal(t, float64(3), body.Details["available"])
	assert.Equal(t, float64(-5), body.Details["requested"])
	assert.Equal(t, float64(-2), body.Details["resulting"])
}

func TestMovimientos_ErroresDeValidacion(t *testing.T) {
	f := newAPI(t)

	tests := []struct {
		name string
		path string
		body map[string]any
		code string
	}{
		{"cantidad cero", "/api/inventory/entries", movement("p1", "w1", "COMPRA", 0), "INVALID_QUANTITY"},
		{"salida negativa", "/api/inventory/exits", movement("p1", "w1", "VENTA", -1), "INVALID_QUANTITY"},
		{"motivo de otro tipo", "/api/inventory/entries", movement("p1", "w1", "VENTA", 1), "INVALID_REASON"},
		{"motivo inexistente", "/api/inventory/entries", movement("p1", "w1", "NOPE", 1), "INVALID_REASON"},
		{"sin producto", "/api/inventory/entries", movement("", "w1", "COMPRA", 1), "VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := f.do(t, http.MethodPost, tt.path, "bodeguero", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.code, decode[errorBody](t, raw).Code)
		})
	}

	status, raw := f.do(t, http.MethodPost, "/api/inventory/entries", "bodeguero", movement("", "w1", "COMPRA", 1))
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "required", decode[errorBody](t, raw).Details["productId"])
}

func TestMovimientos_CuerpoInvalido(t *testing.T) {
	f := newAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/api/inventory/entries", bytes.NewBufferString("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenFor(t, "bodeguero"))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMovimientos_IdempotencyKeyHeader(t *testing.T) {
	f := newAPI(t)

	send := func(qty int64) (int, []byte) {
		raw, err := json.Marshal(movement("p1", "w1", "COMPRA", qty))
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/inventory/entries", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", tokenFor(t, "bodeguero"))
		req.Header.Set("Idempotency-Key", "orden-77")
		resp, err := f.app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		out, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, out
	}

	status, first := send(5)
	require.Equal(t, http.StatusCreated, status)
	status, second := send(5)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, decode[entity.LedgerEntry](t, first).ID, decode[entity.LedgerEntry](t, second).ID)

	status, raw := send(6)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", decode[errorBody](t, raw).Code)

	status, raw = f.do(t, http.MethodGet, "/api/inventory/stock?productId=p1", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(5), decode[stockPage](t, raw).Rows[0].Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Permisos
// ──────────────────────────────────────────────────────────────────────────────

func TestPermisos_PorRuta(t *testing.T) {
	f := newAPI(t)

	status, _ := f.do(t, http.MethodPost, "/api/inventory/entries", "vendedor", movement("p1", "w1", "COMPRA", 1))
	assert.Equal(t, http.StatusForbidden, status, "vendedor no registra movimientos")

	status, _ = f.do(t, http.MethodGet, "/api/inventory/alerts", "vendedor", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = f.do(t, http.MethodPost, "/api/inventory/reasons", "bodeguero",
		map[string]any{"movementType": "ENTRADA", "code": "X", "label": "X"})
	assert.Equal(t, http.StatusForbidden, status, "bodeguero no administra motivos")

	status, _ = f.do(t, http.MethodGet, "/api/inventory/stock", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestPermisos_MotivosSoloAdmin(t *testing.T) {
	f := newAPI(t)
	body := []byte(`{"movementType":"ENTRADA","code":"DONACION","label":"Donación"}`)

	req := httptest.NewRequest(http.MethodPost, "/api/inventory/reasons", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenFor(t, "bodeguero", "inventory.reasons.manage"))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "el permiso explícito no reemplaza al rol admin")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "FORBIDDEN", decode[map[string]any](t, raw)["code"])

	status, _ := f.do(t, http.MethodPost, "/api/inventory/reasons", "admin",
		map[string]any{"movementType": "ENTRADA", "code": "DONACION", "label": "Donación"})
	assert.Equal(t, http.StatusCreated, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestKardex_FiltrosYPaginacion(t *testing.T) {
	f := newAPI(t)
	for i := 0; i < 3; i++ {
		status, _ := f.do(t, http.MethodPost, "/api/inventory/entries", "bodeguero", movement("p1", "w1", "COMPRA", 2))
		require.Equal(t, http.StatusCreated, status)
	}
	status, _ := f.do(t, http.MethodPost, "/api/inventory/exits", "bodeguero", movement("p1", "w1", "MERMA", 1))
	require.Equal(t, http.StatusCreated, status)
	status, _ = f.do(t, http.MethodPost, "/api/inventory/entries", "bodeguero", movement("p2", "w2", "COMPRA", 1))
	require.Equal(t, http.StatusCreated, status)

	status, raw := f.do(t, http.MethodGet, "/api/inventory/kardex", "auditor", nil)
	assert.Equal(t, http.StatusBadRequest, status, "warehouseId es obligatorio")
	assert.Equal(t, "VALIDATION", decode[errorBody](t, raw).Code)

	status, raw = f.do(t, http.MethodGet, "/api/inventory/kardex?warehouseId=w1&pageSize=2&page=2", "auditor", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	page := decode[kardexPage](t, raw)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.Limit)
	assert.Len(t, page.Rows, 2)

	status, raw = f.do(t, http.MethodGet, "/api/inventory/kardex?warehouseId=w1&tipoMovimiento=salida", "auditor", nil)
	require.Equal(t, http.StatusOK, status)
	page = decode[kardexPage](t, raw)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "MERMA", page.Rows[0].ReasonCode)

	// fechaHasta sin hora cubre el día completo (los movimientos son a las 10:00)
	status, raw = f.do(t, http.MethodGet, "/api/inventory/kardex?warehouseId=w1&fechaDesde=2024-06-01&fechaHasta=2024-06-01", "auditor", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4, decode[kardexPage](t, raw).Total)

	status, raw = f.do(t, http.MethodGet, "/api/inventory/kardex?warehouseId=w1&fechaHasta=2024-05-31", "auditor", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, decode[kardexPage](t, raw).Total)

	status, _ = f.do(t, http.MethodGet, "/api/inventory/kardex?warehouseId=w1&fechaDesde=2024-06-02&fechaHasta=2024-06-01", "auditor", nil)
	assert.Equal(t, http.StatusBadRequest, status, "rango invertido")

	status, _ = f.do(t, http.MethodGet, "/api/inventory/kardex?warehouseId=w1&fechaDesde=ayer", "auditor", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestStock_ParametrosInvalidos(t *testing.T) {
	f := newAPI(t)
	for _, q := range []string{"estado=ROJO", "limit=500", "sortBy=precio", "order=up", "page=-1", "limit=abc"} {
		status, _ := f.do(t, http.MethodGet, "/api/inventory/stock?"+q, "admin", nil)
		assert.Equal(t, http.StatusBadRequest, status, q)
	}
}

func TestUmbralYAlertas(t *testing.T) {
	f := newAPI(t)
	for _, m := range []map[string]any{
		movement("p1", "w1", "COMPRA", 3),
		movement("p2", "w1", "COMPRA", 8),
		movement("p3", "w1", "COMPRA", 50),
	} {
		status, _ := f.do(t, http.MethodPost, "/api/inventory/entries", "bodeguero", m)
		require.Equal(t, http.StatusCreated, status)
	}
	for _, p := range []string{"p1", "p2", "p3"} {
		status, raw := f.do(t, http.MethodPut, "/api/inventory/stock/threshold", "bodeguero",
			map[string]any{"productId": p, "warehouseId": "w1", "minimumThreshold": 5})
		require.Equal(t, http.StatusOK, status, string(raw))
	}

	status, raw := f.do(t, http.MethodGet, "/api/inventory/alerts", "vendedor", nil)
	require.Equal(t, http.StatusOK, status)
	alerts := decode[struct {
		Low      []entity.StockSnapshot `json:"low"`
		Critical []entity.StockSnapshot `json:"critical"`
	}](t, raw)
	require.Len(t, alerts.Critical, 1)
	assert.Equal(t, "p1", alerts.Critical[0].ProductID)
	require.Len(t, alerts.Low, 1)
	assert.Equal(t, "p2", alerts.Low[0].ProductID)

	status, raw = f.do(t, http.MethodGet, "/api/inventory/stock?estado=bajo", "vendedor", nil)
	require.Equal(t, http.StatusOK, status)
	page := decode[stockPage](t, raw)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "p2", page.Rows[0].ProductID)

	// null borra el umbral
	status, _ = f.do(t, http.MethodPut, "/api/inventory/stock/threshold", "bodeguero",
		map[string]any{"productId": "p1", "warehouseId": "w1", "minimumThreshold": nil})
	require.Equal(t, http.StatusOK, status)
	status, raw = f.do(t, http.MethodGet, "/api/inventory/alerts", "vendedor", nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(raw), `"productId":"p1"`)

	status, _ = f.do(t, http.MethodPut, "/api/inventory/stock/threshold", "bodeguero",
		map[string]any{"productId": "p1", "warehouseId": "w1", "minimumThreshold": -1})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRebuild(t *testing.T) {
	f := newAPI(t)
	status, _ := f.do(t, http.MethodPost, "/api/inventory/entries", "bodeguero", movement("p1", "w1", "COMPRA", 9))
	require.Equal(t, http.StatusCreated, status)

	status, raw := f.do(t, http.MethodPost, "/api/inventory/stock/rebuild", "admin", map[string]any{"productId": "p1", "warehouseId": "w1"})
	require.Equal(t, http.StatusOK, status, string(raw))
	res := decode[map[string]any](t, raw)
	assert.Equal(t, float64(9), res["rebuilt"])
	assert.Equal(t, false, res["corrected"])

	status, _ = f.do(t, http.MethodPost, "/api/inventory/stock/rebuild", "admin", map[string]any{"productId": "nada", "warehouseId": "w1"})
	assert.Equal(t, http.StatusNotFound, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Motivos
// ──────────────────────────────────────────────────────────────────────────────

func TestMotivos_CicloDeVida(t *testing.T) {
	f := newAPI(t)

	status, raw := f.do(t, http.MethodPost, "/api/inventory/reasons", "admin",
		map[string]any{"movementType": "ENTRADA", "code": "donacion recibida", "label": "Donación"})
	require.Equal(t, http.StatusCreated, status, string(raw))
	created := decode[entity.MovementReason](t, raw)
	assert.Equal(t, "DONACION_RECIBIDA", created.Code)
	assert.True(t, created.Active)

	status, _ = f.do(t, http.MethodPost, "/api/inventory/reasons", "admin",
		map[string]any{"movementType": "ENTRADA", "code": "DONACION_RECIBIDA", "label": "Otra"})
	assert.Equal(t, http.StatusConflict, status, "código duplicado")

	status, raw = f.do(t, http.MethodPatch, "/api/inventory/reasons/"+created.ID+"/deactivate", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decode[entity.MovementReason](t, raw).Active)

	status, raw = f.do(t, http.MethodPost, "/api/inventory/entries", "bodeguero", movement("p1", "w1", "DONACION_RECIBIDA", 1))
	assert.Equal(t, http.StatusBadRequest, status, "motivo inactivo")
	assert.Equal(t, "INVALID_REASON", decode[errorBody](t, raw).Code)

	status, _ = f.do(t, http.MethodPatch, "/api/inventory/reasons/"+created.ID+"/activate", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = f.do(t, http.MethodPost, "/api/inventory/entries", "bodeguero", movement("p1", "w1", "DONACION_RECIBIDA", 1))
	require.Equal(t, http.StatusCreated, status)

	status, raw = f.do(t, http.MethodDelete, "/api/inventory/reasons/"+created.ID, "admin", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "REASON_IN_USE", decode[errorBody](t, raw).Code)

	status, raw = f.do(t, http.MethodGet, "/api/inventory/reasons?tipoMovimiento=SALIDA&soloActivos=true", "vendedor", nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[struct {
		Total int                     `json:"total"`
		Rows  []entity.MovementReason `json:"rows"`
	}](t, raw)
	assert.Equal(t, 2, list.Total)

	var merma string
	for _, r := range list.Rows {
		if r.Code == "MERMA" {
			merma = r.ID
		}
	}
	require.NotEmpty(t, merma)
	status, _ = f.do(t, http.MethodDelete, "/api/inventory/reasons/"+merma, "admin", nil)
	assert.Equal(t, http.StatusNoContent, status, "un motivo sin uso se puede borrar")

	status, _ = f.do(t, http.MethodDelete, "/api/inventory/reasons/no-existe", "admin", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Health / métricas
// ──────────────────────────────────────────────────────────────────────────────

func TestHealthYMetricas(t *testing.T) {
	f := newAPI(t)

	status, raw := f.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "kardex-test")

	status, _ = f.do(t, http.MethodPost, "/api/inventory/entries", "bodeguero", movement("p1", "w1", "COMPRA", 1))
	require.Equal(t, http.StatusCreated, status)
	status, _ = f.do(t, http.MethodPost, "/api/inventory/exits", "bodeguero", movement("p1", "w1", "VENTA", 5))
	require.Equal(t, http.StatusConflict, status)

	status, raw = f.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	body := string(raw)
	assert.Contains(t, body, `kardex_movements_total{outcome="accepted",type="ENTRADA"} 1`)
	assert.Contains(t, body, `kardex_movements_total{outcome="insufficient_stock",type="SALIDA"} 1`)
	assert.Contains(t, body, `kardex_http_requests_total{code="201",method="POST",route="/api/inventory/entries"} 1`)
}

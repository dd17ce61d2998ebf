package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

func TestObserveMovement(t *testing.T) {
	m := NewMetrics()
	m.ObserveMovement(entity.MovementTypeEntrada, "accepted", 10*time.Millisecond)
	m.ObserveMovement(entity.MovementTypeEntrada, "accepted", 5*time.Millisecond)
	m.ObserveMovement(entity.MovementTypeSalida, "insufficient_stock", time.Millisecond)
	m.ObserveMovement("", "invalid_input", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.movementsTotal.WithLabelValues("ENTRADA", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.movementsTotal.WithLabelValues("SALIDA", "insufficient_stock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.movementsTotal.WithLabelValues("UNKNOWN", "invalid_input")))
	assert.Equal(t, 3, testutil.CollectAndCount(m.movementDuration))
}

func TestMetricsNil_NoPanic(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveMovement(entity.MovementTypeAjuste, "accepted", 0) })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMiddleware_UsaRutaRegistrada(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/stock/:productId", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/falla", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusConflict, "x") })

	for _, path := range []string{"/stock/p1", "/stock/p2", "/falla"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/stock/:productId", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/falla", "GET", "409")))
}

func TestHandler_ExponeMetricas(t *testing.T) {
	m := NewMetrics()
	m.ObserveMovement(entity.MovementTypeEntrada, "accepted", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `kardex_movements_total{outcome="accepted",type="ENTRADA"} 1`)
}

func TestRegisterer_ColectoresAdicionalesSeExponen(t *testing.T) {
	m := NewMetrics()
	extra := prometheus.NewGauge(prometheus.GaugeOpts{Name: "kardex_build_info", Help: "Versión desplegada."})
	require.NoError(t, m.Registerer().Register(extra))
	extra.Set(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "kardex_build_info 1")

	var nilMetrics *Metrics
	assert.Equal(t, prometheus.DefaultRegisterer, nilMetrics.Registerer())
}

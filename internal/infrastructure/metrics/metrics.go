package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

var _ inventory.MovementRecorder = (*Metrics)(nil)

// Metrics colectores Prometheus del servicio, con registry propio.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	movementsTotal   *prometheus.CounterVec
	movementDuration *prometheus.HistogramVec
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// NewMetrics inicializa el registry y los colectores.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kardex_movements_total",
		Help: "Movimientos de stock por tipo y resultado.",
	}, []string{"type", "outcome"})
	movementDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kardex_movement_duration_seconds",
		Help:    "Duración de la sección exclusiva de cada movimiento.",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kardex_http_requests_total",
		Help: "Peticiones HTTP por ruta, método y código.",
	}, []string{"route", "method", "code"})
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kardex_http_request_duration_seconds",
		Help:    "Duración de las peticiones HTTP por ruta.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	registry.MustRegister(movements, movementDuration, requests, requestDuration)
	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		movementsTotal:   movements,
		movementDuration: movementDuration,
		requestsTotal:    requests,
		requestDuration:  requestDuration,
	}
}

// ObserveMovement registra el resultado de una mutación del motor.
func (m *Metrics) ObserveMovement(movementType entity.MovementType, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	mt := string(movementType)
	if mt == "" {
		mt = "UNKNOWN"
	}
	m.movementsTotal.WithLabelValues(mt, outcome).Inc()
	m.movementDuration.WithLabelValues(mt).Observe(elapsed.Seconds())
}

// Handler http.Handler para /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registerer expone el registry para colectores adicionales.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// Middleware middleware Fiber que mide cada petición usando la ruta registrada (no el path crudo).
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := "unknown"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		m.requestsTotal.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route, c.Method()).Observe(time.Since(start).Seconds())
		return err
	}
}

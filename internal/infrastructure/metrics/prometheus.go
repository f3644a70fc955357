// Package metrics implementa ports.Metrics con Prometheus y expone /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-oracle-api/internal/application/ports"
)

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus métricas del dominio y de HTTP registradas en un registry propio.
type Prometheus struct {
	registry *prometheus.Registry

	moveTransitions  *prometheus.CounterVec
	toolCalls        *prometheus.CounterVec
	chatTurns        *prometheus.CounterVec
	reasoningLatency *prometheus.HistogramVec
	requestDuration  *prometheus.HistogramVec
	apiErrors        *prometheus.CounterVec
}

// NewPrometheus registra las métricas con el prefijo (namespace) indicado.
func NewPrometheus(namespace string) *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		moveTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "move_transitions_total",
			Help:      "Transiciones de estado de operaciones de inventario",
		}, []string{"type", "status"}),
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Herramientas ejecutadas por el despachador",
		}, []string{"tool", "result"}),
		chatTurns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_turns_total",
			Help:      "Turnos de conversación por resultado",
		}, []string{"outcome"}),
		reasoningLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reasoning_step_duration_seconds",
			Help:      "Duración de cada llamada al motor de razonamiento",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"backend", "result"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		apiErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Respuestas HTTP con estado >= 400",
		}, []string{"method", "path", "status"}),
	}
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

func (p *Prometheus) MoveTransition(moveType, status string) {
	p.moveTransitions.WithLabelValues(moveType, status).Inc()
}

func (p *Prometheus) ToolCall(tool string, ok bool) {
	p.toolCalls.WithLabelValues(tool, result(ok)).Inc()
}

func (p *Prometheus) ChatTurn(outcome string) {
	p.chatTurns.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) ReasoningLatency(backend string, d time.Duration, ok bool) {
	p.reasoningLatency.WithLabelValues(backend, result(ok)).Observe(d.Seconds())
}

// Registry registry con todas las métricas (para tests y para el handler).
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler handler net/http de /metrics; se monta en Fiber con adaptor.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Middleware mide la duración de cada petición por ruta registrada (no por URL, para acotar la cardinalidad).
func (p *Prometheus) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
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
		path := c.Route().Path
		code := strconv.Itoa(status)
		p.requestDuration.WithLabelValues(c.Method(), path, code).Observe(time.Since(start).Seconds())
		if status >= 400 {
			p.apiErrors.WithLabelValues(c.Method(), path, code).Inc()
		}
		return err
	}
}

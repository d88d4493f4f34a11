// Package metrics expone las métricas del libro mayor en formato Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Nombres de métricas.
const (
	MetricEventsTotal         = "stock_ledger_events_total"
	MetricUnitsTotal          = "stock_ledger_units_total"
	MetricRejectedTotal       = "stock_ledger_rejected_total"
	MetricProductionCompleted = "stock_ledger_production_orders_completed_total"
	MetricIngredientsConsumed = "stock_ledger_production_ingredients_consumed"
	MetricFeedDurationSeconds = "stock_ledger_feed_duration_seconds"
	MetricFeedEntries         = "stock_ledger_feed_entries"
	MetricHTTPRequestsTotal   = "stock_ledger_http_requests_total"
	MetricHTTPDurationSeconds = "stock_ledger_http_request_duration_seconds"
)

var _ inventory.Metrics = (*Prometheus)(nil)

// Prometheus implementa inventory.Metrics sobre un registro propio.
type Prometheus struct {
	registry *prometheus.Registry

	events              *prometheus.CounterVec
	units               *prometheus.CounterVec
	rejected            *prometheus.CounterVec
	productionCompleted prometheus.Counter
	ingredients         prometheus.Histogram
	feedDuration        prometheus.Histogram
	feedEntries         prometheus.Histogram
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

// New registra las métricas del servicio y las del runtime de Go.
func New() *Prometheus {
	reg := prometheus.NewRegistry()
	p := &Prometheus{
		registry: reg,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricEventsTotal,
			Help: "Eventos de stock registrados por flujo y tipo.",
		}, []string{"stream", "type"}),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricUnitsTotal,
			Help: "Unidades movidas por flujo y tipo (magnitud).",
		}, []string{"stream", "type"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRejectedTotal,
			Help: "Cambios de stock rechazados por motivo.",
		}, []string{"reason"}),
		productionCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricProductionCompleted,
			Help: "Órdenes de producción completadas.",
		}),
		ingredients: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricIngredientsConsumed,
			Help:    "Ingredientes consumidos por orden completada.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		feedDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricFeedDurationSeconds,
			Help:    "Duración de la construcción del feed en vivo.",
			Buckets: prometheus.DefBuckets,
		}),
		feedEntries: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricFeedEntries,
			Help:    "Entradas devueltas por el feed en vivo.",
			Buckets: []float64{0, 10, 50, 100, 250, 500},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricHTTPRequestsTotal,
			Help: "Peticiones HTTP por método, ruta y estado.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricHTTPDurationSeconds,
			Help:    "Duración de las peticiones HTTP.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		p.events, p.units, p.rejected, p.productionCompleted, p.ingredients,
		p.feedDuration, p.feedEntries, p.httpRequests, p.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prometheus) StockAdjusted(stream entity.EventStream, eventType string, quantity int64) {
	p.events.WithLabelValues(string(stream), eventType).Inc()
	p.units.WithLabelValues(string(stream), eventType).Add(float64(quantity))
}

func (p *Prometheus) AdjustRejected(reason string) {
	p.rejected.WithLabelValues(reason).Inc()
}

func (p *Prometheus) ProductionCompleted(_ int64, ingredients int) {
	p.productionCompleted.Inc()
	p.ingredients.Observe(float64(ingredients))
}

func (p *Prometheus) FeedServed(entries int, elapsed time.Duration) {
	p.feedEntries.Observe(float64(entries))
	p.feedDuration.Observe(elapsed.Seconds())
}

// ObserveHTTP registra una petición; route es el patrón de la ruta, no la URL.
func (p *Prometheus) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler sirve el registro en formato de exposición de Prometheus.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry expone el registro (tests).
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Resultados posibles de una operación de almacenamiento.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// StorageMetrics cuenta y mide las operaciones del StorageManager por almacén.
// Todos los métodos aceptan receptor nil (métricas deshabilitadas).
type StorageMetrics struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewStorageMetrics registra las métricas en reg. reg nil devuelve métricas inertes.
func NewStorageMetrics(reg prometheus.Registerer) *StorageMetrics {
	if reg == nil {
		return &StorageMetrics{}
	}
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_operations_total",
		Help: "Operaciones de almacenamiento por tipo, almacén y resultado.",
	}, []string{"op", "store", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storage_operation_duration_seconds",
		Help:    "Duración de las operaciones de almacenamiento.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "store"})
	reg.MustRegister(ops, duration)
	return &StorageMetrics{ops: ops, duration: duration}
}

// Observe registra una operación terminada.
func (m *StorageMetrics) Observe(op, store string, started time.Time, err error) {
	if m == nil || m.ops == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	store = normalizeLabel(store)
	m.ops.WithLabelValues(op, store, outcome).Inc()
	m.duration.WithLabelValues(op, store).Observe(time.Since(started).Seconds())
}

func normalizeLabel(s string) string {
	if s == "" {
		return "all"
	}
	return s
}

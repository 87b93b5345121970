// Package metrics собирает счётчики Prometheus для журнала очков и напоминаний.
// У каждого экземпляра свой реестр, поэтому в тестах они не мешают друг другу.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "exercise_bot"

// Metrics — набор счётчиков приложения.
type Metrics struct {
	registry *prometheus.Registry

	completions      *prometheus.CounterVec
	pointsAwarded    prometheus.Counter
	penaltyPoints    prometheus.Counter
	rangeAdjustments *prometheus.CounterVec
	remindersSent    prometheus.Counter
	corruptedLedgers prometheus.Counter
	rateLimited      prometheus.Counter
	panics           prometheus.Counter
}

// New создаёт и регистрирует все счётчики.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "Completed exercises by position within the day (1, 2, 3+).",
		}, []string{"position"}),
		pointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_awarded_total",
			Help:      "Points awarded for completed exercises.",
		}),
		penaltyPoints: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "penalty_points_total",
			Help:      "Points deducted for missed days when a new day starts.",
		}),
		rangeAdjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "range_adjustments_total",
			Help:      "Difficulty adjustments by direction and result.",
		}, []string{"direction", "result"}),
		remindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Daily exercise reminders sent.",
		}),
		corruptedLedgers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corrupted_ledgers_total",
			Help:      "Stored ledgers replaced with the default state after failed validation.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_messages_total",
			Help:      "Incoming messages dropped by the per-user rate limiter.",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_panics_total",
			Help:      "Panics recovered while handling updates.",
		}),
	}
	m.registry.MustRegister(
		m.completions, m.pointsAwarded, m.penaltyPoints,
		m.rangeAdjustments, m.remindersSent, m.corruptedLedgers,
		m.rateLimited, m.panics,
	)
	return m
}

// Completion учитывает выполнение: номер в дне (с единицы), очки и списанный штраф.
func (m *Metrics) Completion(position, points, penalty int) {
	label := strconv.Itoa(position)
	if position >= 3 {
		label = "3+"
	}
	m.completions.WithLabelValues(label).Inc()
	m.pointsAwarded.Add(float64(points))
	if penalty > 0 {
		m.penaltyPoints.Add(float64(penalty))
	}
}

// RangeAdjustment учитывает попытку изменить сложность.
func (m *Metrics) RangeAdjustment(direction string, ok bool) {
	result := "ok"
	if !ok {
		result = "rejected"
	}
	m.rangeAdjustments.WithLabelValues(direction, result).Inc()
}

// ReminderSent учитывает отправленное напоминание.
func (m *Metrics) ReminderSent() {
	m.remindersSent.Inc()
}

// CorruptedLedger учитывает испорченный журнал.
func (m *Metrics) CorruptedLedger() {
	m.corruptedLedgers.Inc()
}

// RateLimited учитывает сообщение, отброшенное лимитером.
func (m *Metrics) RateLimited() {
	m.rateLimited.Inc()
}

// Panic учитывает восстановленную панику.
func (m *Metrics) Panic() {
	m.panics.Inc()
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry нужен тестам для проверки значений.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

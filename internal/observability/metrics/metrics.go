package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters/histograms for the dialogue engine.
type ConversationMetrics struct {
	turnsTotal        *prometheus.CounterVec
	intentsTotal      *prometheus.CounterVec
	transactionsTotal *prometheus.CounterVec
	extractionsTotal  *prometheus.CounterVec
	placeholdersTotal *prometheus.CounterVec
	turnLatency       *prometheus.HistogramVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medoffice",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Total processed conversation turns",
		}, []string{"state", "status"}),
		intentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medoffice",
			Subsystem: "conversation",
			Name:      "intents_total",
			Help:      "Intent classifications at conversation start",
		}, []string{"intent"}),
		transactionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medoffice",
			Subsystem: "scheduling",
			Name:      "transactions_total",
			Help:      "Completed scheduling transactions",
		}, []string{"kind"}),
		extractionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medoffice",
			Subsystem: "conversation",
			Name:      "extractions_total",
			Help:      "Slot extraction outcomes by field and tier",
		}, []string{"field", "tier"}),
		placeholdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medoffice",
			Subsystem: "conversation",
			Name:      "placeholders_total",
			Help:      "Fields filled with placeholder values after retries ran out",
		}, []string{"field"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medoffice",
			Subsystem: "conversation",
			Name:      "turn_latency_seconds",
			Help:      "Latency of conversation turn processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"state"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.intentsTotal, m.transactionsTotal,
		m.extractionsTotal, m.placeholdersTotal, m.turnLatency)
	return m
}

func (m *ConversationMetrics) ObserveTurn(state, status string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(state, status).Inc()
}

func (m *ConversationMetrics) ObserveIntent(intent string) {
	if m == nil {
		return
	}
	m.intentsTotal.WithLabelValues(intent).Inc()
}

func (m *ConversationMetrics) ObserveTransaction(kind string) {
	if m == nil {
		return
	}
	m.transactionsTotal.WithLabelValues(kind).Inc()
}

func (m *ConversationMetrics) ObserveExtraction(field, tier string) {
	if m == nil {
		return
	}
	m.extractionsTotal.WithLabelValues(field, tier).Inc()
}

func (m *ConversationMetrics) ObservePlaceholder(field string) {
	if m == nil {
		return
	}
	m.placeholdersTotal.WithLabelValues(field).Inc()
}

func (m *ConversationMetrics) ObserveTurnLatency(state string, seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.WithLabelValues(state).Observe(seconds)
}

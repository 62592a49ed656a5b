// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Evaluation metrics
	EvaluationsTotal  *prometheus.CounterVec
	TokensApproved    prometheus.Counter
	ApprovedScore     prometheus.Histogram
	AnalysisCycles    prometheus.Counter
	CandidatesSkipped prometheus.Counter

	// Swap metrics
	SwapAttemptsTotal *prometheus.CounterVec
	SwapConfirmations *prometheus.CounterVec

	// Trading metrics
	BuysTotal         *prometheus.CounterVec
	SellsTotal        *prometheus.CounterVec
	OpenPositions     prometheus.Gauge
	RealizedPnLPct    prometheus.Histogram
	TokensBlacklisted prometheus.Counter

	// Latency metrics
	RPCCallLatency    *prometheus.HistogramVec
	MarketDataLatency *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulAnalysis prometheus.Gauge
	LastSuccessfulMonitor  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "meme_trader"
	}

	return &Metrics{
		// Evaluation metrics
		EvaluationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "evaluations_total",
			Help:      "Total number of token evaluations by rejection category (approved for approvals)",
		}, []string{"category"}),
		TokensApproved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "tokens_approved_total",
			Help:      "Total number of tokens that passed every evaluation phase",
		}),
		ApprovedScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "approved_score",
			Help:      "Opportunity score distribution of approved tokens",
			Buckets:   []float64{60, 65, 70, 75, 80, 85, 90, 95, 100},
		}),
		AnalysisCycles: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "analysis_cycles_total",
			Help:      "Total number of completed analysis cycles",
		}),
		CandidatesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "candidates_skipped_total",
			Help:      "Total number of candidates skipped by the re-analysis cooldown",
		}),

		// Swap metrics
		SwapAttemptsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "attempts_total",
			Help:      "Total number of swap attempts by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		SwapConfirmations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "confirmations_total",
			Help:      "Total number of confirmed swaps by strategy",
		}, []string{"strategy"}),

		// Trading metrics
		BuysTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "buys_total",
			Help:      "Total number of buy decisions by result",
		}, []string{"result"}),
		SellsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "sells_total",
			Help:      "Total number of sell executions by exit reason and result",
		}, []string{"reason", "result"}),
		OpenPositions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "open_positions",
			Help:      "Current number of open positions",
		}),
		RealizedPnLPct: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "realized_pnl_pct",
			Help:      "Realized profit/loss percentage per closed trade",
			Buckets:   []float64{-50, -25, -10, -5, 0, 5, 10, 20, 50, 100, 200},
		}),
		TokensBlacklisted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "tokens_blacklisted_total",
			Help:      "Total number of tokens blacklisted after stop-loss exits",
		}),

		// Latency metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		MarketDataLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "request_latency_seconds",
			Help:      "Market data API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulAnalysis: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_analysis_timestamp",
			Help:      "Unix timestamp of last successful analysis cycle",
		}),
		LastSuccessfulMonitor: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_monitor_timestamp",
			Help:      "Unix timestamp of last successful monitor cycle",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordEvaluation records one evaluation outcome. Approved evaluations use
// the "approved" category.
func RecordEvaluation(category string, approved bool, score float64) {
	if approved {
		DefaultMetrics.EvaluationsTotal.WithLabelValues("approved").Inc()
		DefaultMetrics.TokensApproved.Inc()
		DefaultMetrics.ApprovedScore.Observe(score)
		return
	}
	DefaultMetrics.EvaluationsTotal.WithLabelValues(category).Inc()
}

// RecordAnalysisCycle marks a completed analysis cycle.
func RecordAnalysisCycle(unixTime float64) {
	DefaultMetrics.AnalysisCycles.Inc()
	DefaultMetrics.LastSuccessfulAnalysis.Set(unixTime)
}

// RecordCandidateSkipped increments the cooldown-skip counter.
func RecordCandidateSkipped() {
	DefaultMetrics.CandidatesSkipped.Inc()
}

// RecordSwapAttempt records one swap attempt.
func RecordSwapAttempt(strategy, outcome string) {
	DefaultMetrics.SwapAttemptsTotal.WithLabelValues(strategy, outcome).Inc()
	if outcome == "confirmed" {
		DefaultMetrics.SwapConfirmations.WithLabelValues(strategy).Inc()
	}
}

// RecordBuy records one buy decision.
func RecordBuy(result string) {
	DefaultMetrics.BuysTotal.WithLabelValues(result).Inc()
}

// RecordSell records one sell execution, with realized P&L on success.
func RecordSell(reason, result string, pnlPct float64) {
	DefaultMetrics.SellsTotal.WithLabelValues(reason, result).Inc()
	if result == "success" {
		DefaultMetrics.RealizedPnLPct.Observe(pnlPct)
	}
}

// RecordBlacklist increments the blacklist counter.
func RecordBlacklist() {
	DefaultMetrics.TokensBlacklisted.Inc()
}

// SetOpenPositions updates the open-positions gauge.
func SetOpenPositions(n int) {
	DefaultMetrics.OpenPositions.Set(float64(n))
}

// RecordMonitorCycle marks a completed monitor cycle.
func RecordMonitorCycle(unixTime float64) {
	DefaultMetrics.LastSuccessfulMonitor.Set(unixTime)
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordMarketDataLatency records market data API latency.
func RecordMarketDataLatency(endpoint string, seconds float64) {
	DefaultMetrics.MarketDataLatency.WithLabelValues(endpoint).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

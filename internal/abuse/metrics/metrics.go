package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AbuseEventsTrackedTotal  *prometheus.CounterVec
	AbuseDetectionsTotal     prometheus.Counter
	AbuseBansImposedTotal    *prometheus.CounterVec
	AbuseBansLiftedTotal     *prometheus.CounterVec
	AbuseActiveBans          prometheus.Gauge
	AbuseSweepRunsTotal      *prometheus.CounterVec
	AbuseSweepUnbansTotal    prometheus.Counter
	AbuseStatsResetRowsTotal prometheus.Counter
	AbuseSweepDurationSecs   prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		AbuseEventsTrackedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aegis_abuse_events_tracked_total",
			Help: "Total number of guarded request-path events tracked",
		}, []string{"kind"}),
		AbuseDetectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_abuse_detections_total",
			Help: "Total number of positive abuse verdicts",
		}),
		AbuseBansImposedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aegis_abuse_bans_imposed_total",
			Help: "Total number of bans imposed",
		}, []string{"reason"}),
		AbuseBansLiftedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aegis_abuse_bans_lifted_total",
			Help: "Total number of bans lifted",
		}, []string{"cause"}),
		AbuseActiveBans: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "aegis_abuse_active_bans",
			Help: "Current number of active bans",
		}),
		AbuseSweepRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aegis_abuse_sweep_runs_total",
			Help: "Total number of sweeper runs",
		}, []string{"job", "status"}),
		AbuseSweepUnbansTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_abuse_sweep_unbans_total",
			Help: "Total number of expired bans deactivated by the sweeper",
		}),
		AbuseStatsResetRowsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_abuse_stats_reset_rows_total",
			Help: "Total number of counter rows zeroed by resets",
		}),
		AbuseSweepDurationSecs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "aegis_abuse_sweep_duration_seconds",
			Help: "Duration of sweeper runs in seconds",
		}),
	}
}

func (m *Metrics) IncrementEventsTracked(kind string) {
	m.AbuseEventsTrackedTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementDetections() {
	m.AbuseDetectionsTotal.Inc()
}

func (m *Metrics) IncrementBansImposed(reason string) {
	m.AbuseBansImposedTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementBansLifted(cause string) {
	m.AbuseBansLiftedTotal.WithLabelValues(cause).Inc()
}

func (m *Metrics) IncrementSweepRuns(job, status string) {
	m.AbuseSweepRunsTotal.WithLabelValues(job, status).Inc()
}

func (m *Metrics) IncrementSweepUnbans(count int) {
	m.AbuseSweepUnbansTotal.Add(float64(count))
}

func (m *Metrics) IncrementStatsResetRows(count int) {
	m.AbuseStatsResetRowsTotal.Add(float64(count))
}

func (m *Metrics) ObserveSweepDuration(seconds float64) {
	m.AbuseSweepDurationSecs.Observe(seconds)
}

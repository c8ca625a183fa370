package main

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/availproject/substrate-telemetry-core/internal/aggregator"
	"github.com/availproject/substrate-telemetry-core/internal/aggregatorset"
)

// adminMetrics mirrors aggregator.Metrics as Prometheus collectors, exported
// alongside the stdlib-ish /healthz route.
type adminMetrics struct {
	ingress *prometheus.GaugeVec
	egress  *prometheus.GaugeVec
	dropped *prometheus.GaugeVec
}

func newAdminMetrics() *adminMetrics {
	m := &adminMetrics{
		ingress: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "telemetry_core",
			Name:      "ingress_total",
			Help:      "Ingress messages observed per shard per kind.",
		}, []string{"shard", "kind"}),
		egress: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "telemetry_core",
			Name:      "egress_total",
			Help:      "Egress diffs emitted per shard per kind.",
		}, []string{"shard", "kind"}),
		dropped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "telemetry_core",
			Name:      "dropped_total",
			Help:      "Diffs dropped per shard due to a closed/backed-up feed sink.",
		}, []string{"shard"}),
	}
	prometheus.MustRegister(m.ingress, m.egress, m.dropped)
	return m
}

func (m *adminMetrics) refresh(shardMetrics []aggregator.Metrics) {
	for i, sm := range shardMetrics {
		shard := shardLabel(i)
		for kind, count := range sm.Ingress {
			m.ingress.WithLabelValues(shard, string(kind)).Set(float64(count))
		}
		for kind, count := range sm.Egress {
			m.egress.WithLabelValues(shard, string(kind)).Set(float64(count))
		}
		m.dropped.WithLabelValues(shard).Set(float64(sm.Dropped))
	}
}

func shardLabel(i int) string {
	return strconv.Itoa(i)
}

// newAdminServer wires /healthz and /metrics onto addr. Each request gets a
// uuid for log correlation; feed ids themselves remain plain uint64s — this
// is purely an operational debug aid.
func newAdminServer(addr string, set *aggregatorset.Set, logger *slog.Logger) *http.Server {
	am := newAdminMetrics()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.New()
		logger.Debug("healthz", "request_id", reqID, "shards", set.ShardCount())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promHandlerWithRefresh(am, set))

	return &http.Server{Addr: addr, Handler: mux}
}

func promHandlerWithRefresh(am *adminMetrics, set *aggregatorset.Set) http.Handler {
	inner := promhttp.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		am.refresh(set.LatestMetrics())
		inner.ServeHTTP(w, r)
	})
}

package aggregator

import "time"

// MessageKind names an ingress/egress message kind for per-kind counters.
type MessageKind string

const (
	KindAddNode                MessageKind = "add_node"
	KindRemoveNode              MessageKind = "remove_node"
	KindUpdateBestBlock         MessageKind = "update_best_block"
	KindUpdateFinalized         MessageKind = "update_finalized"
	KindSystemInterval          MessageKind = "system_interval"
	KindHardwareBenchmark       MessageKind = "hardware_benchmark"
	KindBlockInterval           MessageKind = "block_interval"
	KindHistoricalBlockInterval MessageKind = "historical_block_interval"
	KindValidatorAddress        MessageKind = "validator_address"
	KindLocationResolved        MessageKind = "location_resolved"
	KindFeedDiff                MessageKind = "feed_diff"
)

// Metrics is the per-shard counter block requested by AggregatorSet's
// periodic metrics loop.
type Metrics struct {
	Ingress     map[MessageKind]uint64 `json:"ingress"`
	Egress      map[MessageKind]uint64 `json:"egress"`
	IngressRate float64                `json:"ingress_rate"`
	EgressRate  float64                `json:"egress_rate"`
	Dropped     uint64                 `json:"dropped"`
}

// Clone returns a deep copy suitable for storing in a shared snapshot table.
func (m Metrics) Clone() Metrics {
	out := Metrics{
		Ingress:     make(map[MessageKind]uint64, len(m.Ingress)),
		Egress:      make(map[MessageKind]uint64, len(m.Egress)),
		IngressRate: m.IngressRate,
		EgressRate:  m.EgressRate,
		Dropped:     m.Dropped,
	}
	for k, v := range m.Ingress {
		out.Ingress[k] = v
	}
	for k, v := range m.Egress {
		out.Egress[k] = v
	}
	return out
}

// metricsTracker accumulates counters in the shard loop and computes rolling
// rates on each Gather, using the elapsed wall-clock time since the previous
// gather.
type metricsTracker struct {
	ingress map[MessageKind]uint64
	egress  map[MessageKind]uint64
	dropped uint64

	lastGather     time.Time
	lastIngressSum uint64
	lastEgressSum  uint64
}

func newMetricsTracker() *metricsTracker {
	return &metricsTracker{
		ingress:    make(map[MessageKind]uint64),
		egress:     make(map[MessageKind]uint64),
		lastGather: time.Now(),
	}
}

func (t *metricsTracker) recordIngress(kind MessageKind) {
	t.ingress[kind]++
}

func (t *metricsTracker) recordEgress(kind MessageKind) {
	t.egress[kind]++
}

func (t *metricsTracker) recordDropped() {
	t.dropped++
}

func sumCounts(m map[MessageKind]uint64) uint64 {
	var total uint64
	for _, v := range m {
		total += v
	}
	return total
}

func (t *metricsTracker) gather() Metrics {
	now := time.Now()
	elapsed := now.Sub(t.lastGather).Seconds()

	ingressSum := sumCounts(t.ingress)
	egressSum := sumCounts(t.egress)

	var ingressRate, egressRate float64
	if elapsed > 0 {
		ingressRate = float64(ingressSum-t.lastIngressSum) / elapsed
		egressRate = float64(egressSum-t.lastEgressSum) / elapsed
	}

	t.lastGather = now
	t.lastIngressSum = ingressSum
	t.lastEgressSum = egressSum

	out := Metrics{
		Ingress:     make(map[MessageKind]uint64, len(t.ingress)),
		Egress:      make(map[MessageKind]uint64, len(t.egress)),
		IngressRate: ingressRate,
		EgressRate:  egressRate,
		Dropped:     t.dropped,
	}
	for k, v := range t.ingress {
		out.Ingress[k] = v
	}
	for k, v := range t.egress {
		out.Egress[k] = v
	}
	return out
}

package aggregatorset

import (
	"context"
	"sync"
	"time"

	"github.com/availproject/substrate-telemetry-core/internal/aggregator"
	"github.com/availproject/substrate-telemetry-core/internal/endpoints"
	"github.com/availproject/substrate-telemetry-core/internal/node"
)

const defaultPollInterval = 10 * time.Second

// snapshotTable is one shard's most recently polled view of its chains,
// guarded by its own mutex so a reader never blocks a concurrent poll of a
// different shard.
type snapshotTable[T any] struct {
	mu   sync.RWMutex
	byGH map[node.GenesisHash]T
}

func (t *snapshotTable[T]) store(m map[node.GenesisHash]T) {
	t.mu.Lock()
	t.byGH = m
	t.mu.Unlock()
}

func (t *snapshotTable[T]) get(gh node.GenesisHash) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.byGH[gh]
	return v, ok
}

type metricsSlot struct {
	mu sync.RWMutex
	m  aggregator.Metrics
}

func (s *metricsSlot) store(m aggregator.Metrics) {
	s.mu.Lock()
	s.m = m
	s.mu.Unlock()
}

func (s *metricsSlot) load() aggregator.Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m
}

// runMetricsTask is shard i's Metrics task: every interval it gathers
// ingress/egress counters from that one shard and stores them into slot i.
// It uses an absolute-deadline sleep so a slow round doesn't compound delay
// into the next. A shard-call error means the shard is gone — the task logs
// it and exits permanently, leaving the last-stored metrics in place rather
// than retrying a shard that will never answer again.
func (s *Set) runMetricsTask(ctx context.Context, i int, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	shard := s.shards[i]

	next := time.Now().Add(interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}
		next = next.Add(interval)

		m, err := shard.GatherMetrics(ctx)
		if err != nil {
			s.logger.Error("metrics task exiting after shard error", "shard", i, "err", err)
			return
		}
		s.metrics[i].store(m)
	}
}

// runOverviewTask is shard i's Overview task: every interval it sequentially
// gathers overview, block-history, and node-list snapshots from that one
// shard and stores each into slot i. Like runMetricsTask, a shard-call error
// is logged and the task exits permanently.
func (s *Set) runOverviewTask(ctx context.Context, i int, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	shard := s.shards[i]

	next := time.Now().Add(interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}
		next = next.Add(interval)

		overview, err := shard.Overview(ctx)
		if err != nil {
			s.logger.Error("overview task exiting after shard error", "shard", i, "err", err)
			return
		}
		s.overview[i].store(overview)

		history, err := shard.BlockHistory(ctx)
		if err != nil {
			s.logger.Error("overview task exiting after shard error", "shard", i, "err", err)
			return
		}
		s.blockHistory[i].store(history)

		nl, err := shard.NodeList(ctx)
		if err != nil {
			s.logger.Error("overview task exiting after shard error", "shard", i, "err", err)
			return
		}
		s.nodeList[i].store(nl)
	}
}

// OverviewEndpoint fans the lookup across all shard slots, returning the
// first hit. Ingress is fanned out to every shard, so slots normally hold the
// same chains; a slot whose shard dropped messages under overload, or was
// polled at a different moment, can differ, and the lowest-indexed slot that
// holds gh wins.
func (s *Set) OverviewEndpoint(gh node.GenesisHash) (endpoints.ChainOverview, error) {
	for i := range s.overview {
		if v, ok := s.overview[i].get(gh); ok {
			return v, nil
		}
	}
	return endpoints.ChainOverview{}, ErrNoGenesisHash
}

// BlockHistoryEndpoint mirrors OverviewEndpoint for the block-history table.
func (s *Set) BlockHistoryEndpoint(gh node.GenesisHash) (endpoints.BlockHistory, error) {
	for i := range s.blockHistory {
		if v, ok := s.blockHistory[i].get(gh); ok {
			return v, nil
		}
	}
	return endpoints.BlockHistory{}, ErrNoGenesisHash
}

// NodeListEndpoint mirrors OverviewEndpoint for the node-list table.
func (s *Set) NodeListEndpoint(gh node.GenesisHash) (endpoints.NodeList, error) {
	for i := range s.nodeList {
		if v, ok := s.nodeList[i].get(gh); ok {
			return v, nil
		}
	}
	return endpoints.NodeList{}, ErrNoGenesisHash
}

// LatestMetrics returns the most recently polled per-shard metrics vector.
func (s *Set) LatestMetrics() []aggregator.Metrics {
	out := make([]aggregator.Metrics, len(s.metrics))
	for i := range s.metrics {
		out[i] = s.metrics[i].load()
	}
	return out
}

package aggregator

import (
	"context"

	"github.com/availproject/substrate-telemetry-core/internal/endpoints"
	"github.com/availproject/substrate-telemetry-core/internal/node"
)

// Overview requests a ChainOverview snapshot for every chain this shard
// currently owns, built atomically with respect to ingress: the request is
// served from inside the single-writer loop, so it can never observe a torn
// update.
func (s *Shard) Overview(ctx context.Context) (map[node.GenesisHash]endpoints.ChainOverview, error) {
	resp := make(chan map[node.GenesisHash]endpoints.ChainOverview, 1)
	select {
	case s.overviewReq <- overviewRequest{resp: resp}:
	case <-s.done:
		return nil, ErrShardGone
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case v := <-resp:
		return v, nil
	case <-s.done:
		return nil, ErrShardGone
	}
}

// BlockHistory requests a BlockHistory snapshot for every chain this shard
// currently owns.
func (s *Shard) BlockHistory(ctx context.Context) (map[node.GenesisHash]endpoints.BlockHistory, error) {
	resp := make(chan map[node.GenesisHash]endpoints.BlockHistory, 1)
	select {
	case s.historyReq <- blockHistoryRequest{resp: resp}:
	case <-s.done:
		return nil, ErrShardGone
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case v := <-resp:
		return v, nil
	case <-s.done:
		return nil, ErrShardGone
	}
}

// NodeList requests a NodeList snapshot for every chain this shard currently
// owns.
func (s *Shard) NodeList(ctx context.Context) (map[node.GenesisHash]endpoints.NodeList, error) {
	resp := make(chan map[node.GenesisHash]endpoints.NodeList, 1)
	select {
	case s.nodeListReq <- nodeListRequest{resp: resp}:
	case <-s.done:
		return nil, ErrShardGone
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case v := <-resp:
		return v, nil
	case <-s.done:
		return nil, ErrShardGone
	}
}

// GatherMetrics requests the shard's current ingress/egress counters.
func (s *Shard) GatherMetrics(ctx context.Context) (Metrics, error) {
	resp := make(chan Metrics, 1)
	select {
	case s.metricsReq <- metricsRequest{resp: resp}:
	case <-s.done:
		return Metrics{}, ErrShardGone
	case <-ctx.Done():
		return Metrics{}, ctx.Err()
	}
	select {
	case v := <-resp:
		return v, nil
	case <-s.done:
		return Metrics{}, ErrShardGone
	}
}

// Package aggregatorset implements the Aggregator Set: a fixed vector of
// aggregator shards, round-robin feed assignment, ingress fan-out, and
// periodic snapshot polling feeding read-only lookup tables.
package aggregatorset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/availproject/substrate-telemetry-core/internal/aggregator"
	"github.com/availproject/substrate-telemetry-core/internal/endpoints"
	"github.com/availproject/substrate-telemetry-core/internal/node"
	"github.com/availproject/substrate-telemetry-core/internal/telemetrymsg"
)

// fanOutBuffer bounds the ingress channel used to fan a message out to every
// shard when N>1. A single large buffer, matching the per-shard buffering
// rationale in internal/aggregator (see DESIGN.md).
const fanOutBuffer = 4096

// ErrNoGenesisHash is returned by the *_endpoint lookups when no shard knows
// about the requested chain.
var ErrNoGenesisHash = fmt.Errorf("no genesis hash found")

// ErrFatalStartup is returned by New when asked to build a Set with zero
// shards — a configuration error the caller must treat as fatal, not a
// condition to silently correct.
var ErrFatalStartup = fmt.Errorf("num_aggregators must be >= 1")

// Set owns N aggregator shards and round-robins feed assignment across
// them. Ingress is fanned out to every shard so each maintains the same view
// of chain state, apart from messages a backed-up shard drops; only feed
// routing is split, spreading read load.
type Set struct {
	shards []*aggregator.Shard

	counter atomic.Uint64

	fanIn chan telemetrymsg.FromShard

	overview     []snapshotTable[endpoints.ChainOverview]
	blockHistory []snapshotTable[endpoints.BlockHistory]
	nodeList     []snapshotTable[endpoints.NodeList]
	metrics      []metricsSlot

	logger *slog.Logger
}

// New spawns n shards and starts fan-out and periodic polling. ctx governs
// the lifetime of every goroutine this Set starts; cancel it to shut down.
// n<1 is a fatal startup error, not a value to silently correct — a
// misconfigured deployment should fail loudly at boot rather than run with a
// topology nobody asked for.
func New(ctx context.Context, n int, shardOpts aggregator.Opts, pollInterval time.Duration, logger *slog.Logger) (*Set, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrFatalStartup, n)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	s := &Set{
		shards:       make([]*aggregator.Shard, n),
		overview:     make([]snapshotTable[endpoints.ChainOverview], n),
		blockHistory: make([]snapshotTable[endpoints.BlockHistory], n),
		nodeList:     make([]snapshotTable[endpoints.NodeList], n),
		metrics:      make([]metricsSlot, n),
		logger:       logger,
	}
	for i := range s.shards {
		s.shards[i] = aggregator.Spawn(ctx, shardOpts)
	}

	if n > 1 {
		s.fanIn = make(chan telemetrymsg.FromShard, fanOutBuffer)
		go s.runFanOut(ctx)
	}

	for i := range s.shards {
		go s.runMetricsTask(ctx, i, pollInterval)
		go s.runOverviewTask(ctx, i, pollInterval)
	}

	return s, nil
}

// ShardCount returns the number of shards in the set.
func (s *Set) ShardCount() int { return len(s.shards) }

// Ingress returns the channel a feeder sends FromShard messages into. For
// N=1 this is the one shard's own ingress channel (zero-indirection fast
// path); for N>1 it is the fan-out consumer's intake.
func (s *Set) Ingress() chan<- telemetrymsg.FromShard {
	if len(s.shards) == 1 {
		return s.shards[0].Ingress()
	}
	return s.fanIn
}

// runFanOut clones every message received on fanIn to all shards' ingress
// channels, using the non-blocking TrySend (a slow/backed-up shard drops the
// message rather than stalling delivery to the others).
func (s *Set) runFanOut(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.fanIn:
			for _, shard := range s.shards {
				shard.TrySend(msg)
			}
		}
	}
}

// SubscribeFeed assigns the caller to a shard by round-robin — counter
// increments by one per call, `(counter) mod N` selects the slot — and
// registers the feed against that shard.
func (s *Set) SubscribeFeed(ctx context.Context, output aggregator.FeedSink) (shardIndex int, feedID uint64, input chan<- telemetrymsg.FromFeed, err error) {
	idx := int(s.counter.Add(1) % uint64(len(s.shards)))
	id, in, err := s.shards[idx].SubscribeFeed(ctx, output)
	if err != nil {
		return 0, 0, nil, err
	}
	return idx, id, in, nil
}

// UnsubscribeFeed tears down a feed previously returned by SubscribeFeed.
func (s *Set) UnsubscribeFeed(shardIndex int, feedID uint64) {
	if shardIndex < 0 || shardIndex >= len(s.shards) {
		return
	}
	s.shards[shardIndex].UnsubscribeFeed(feedID)
}

// Package aggregator implements the Aggregator Shard: a single-writer actor
// owning a map of Chain State by genesis hash, driving ingress dispatch,
// snapshot-request service, and feed subscriber bookkeeping from one event
// loop goroutine.
package aggregator

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/availproject/substrate-telemetry-core/internal/chain"
	"github.com/availproject/substrate-telemetry-core/internal/endpoints"
	"github.com/availproject/substrate-telemetry-core/internal/findlocation"
	"github.com/availproject/substrate-telemetry-core/internal/node"
	"github.com/availproject/substrate-telemetry-core/internal/telemetrymsg"
)

// ingressBuffer bounds the per-shard ingress queue. The original's ingress
// channel is unbounded; Go has no unbounded channel primitive, so this uses
// a large, fixed buffer with a non-blocking send instead (documented in
// DESIGN.md) — overflow is dropped, consistent with the
// lossy-ingress-under-overload behavior under sustained overload. A dropped
// message is reported only by TrySend's false return; no metric counts it.
const ingressBuffer = 4096

const feedIngressBuffer = 64

// StalenessSweepInterval is how often the shard walks all nodes to refresh
// their stale flag against a threshold computed fresh each sweep.
const StalenessSweepInterval = 5 * time.Second

// FeedSink is the output side of a feed subscription: the shard pushes
// diffs for the feed's subscribed chains here. Owned by the shard that
// services it.
type FeedSink interface {
	Send(msg telemetrymsg.ToFeed) error
}

type feedSubscription struct {
	output FeedSink
	chains map[node.GenesisHash]bool
}

type feedEvent struct {
	id  uint64
	msg telemetrymsg.FromFeed
}

type overviewRequest struct{ resp chan map[node.GenesisHash]endpoints.ChainOverview }
type blockHistoryRequest struct{ resp chan map[node.GenesisHash]endpoints.BlockHistory }
type nodeListRequest struct{ resp chan map[node.GenesisHash]endpoints.NodeList }
type metricsRequest struct{ resp chan Metrics }

type subscribeFeedRequest struct {
	output FeedSink
	resp   chan subscribeFeedResponse
}
type subscribeFeedResponse struct {
	id    uint64
	input chan<- telemetrymsg.FromFeed
}

type unregisterFeedRequest struct{ id uint64 }

// Opts configures a Shard.
type Opts struct {
	Resolver findlocation.Resolver
	// StalenessInterval is how long a node's best block may go un-advanced
	// before UpdateStale marks it stale — recomputed against wall-clock time
	// on each periodic sweep.
	StalenessInterval time.Duration
	// Logger receives feed-sink-closed and other shard-level diagnostics.
	// Defaults to a text handler on stderr if nil.
	Logger *slog.Logger
}

// Shard is the single-writer aggregator actor.
type Shard struct {
	ingress     chan telemetrymsg.FromShard
	overviewReq chan overviewRequest
	historyReq  chan blockHistoryRequest
	nodeListReq chan nodeListRequest
	metricsReq  chan metricsRequest
	subFeedReq  chan subscribeFeedRequest
	unregFeed   chan unregisterFeedRequest
	feedEvents  chan feedEvent

	done chan struct{}

	// state below is only ever touched by run(), the single writer.
	chains            map[node.GenesisHash]*chain.Chain
	feeds             map[uint64]*feedSubscription
	nextFeedID        uint64
	resolver          findlocation.Resolver
	stalenessInterval time.Duration
	metrics           *metricsTracker
	logger            *slog.Logger
}

// Spawn starts a shard's event loop and returns a handle to it. The loop
// runs until ctx is cancelled.
func Spawn(ctx context.Context, opts Opts) *Shard {
	resolver := opts.Resolver
	if resolver == nil {
		resolver = findlocation.Null{}
	}

	stalenessInterval := opts.StalenessInterval
	if stalenessInterval <= 0 {
		stalenessInterval = 60 * time.Second
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	s := &Shard{
		ingress:           make(chan telemetrymsg.FromShard, ingressBuffer),
		overviewReq:       make(chan overviewRequest),
		historyReq:        make(chan blockHistoryRequest),
		nodeListReq:       make(chan nodeListRequest),
		metricsReq:        make(chan metricsRequest),
		subFeedReq:        make(chan subscribeFeedRequest),
		unregFeed:         make(chan unregisterFeedRequest),
		feedEvents:        make(chan feedEvent, feedIngressBuffer),
		done:              make(chan struct{}),
		chains:            make(map[node.GenesisHash]*chain.Chain),
		feeds:             make(map[uint64]*feedSubscription),
		resolver:          resolver,
		stalenessInterval: stalenessInterval,
		metrics:           newMetricsTracker(),
		logger:            logger,
	}

	go s.run(ctx)
	return s
}

// Done reports whether the shard's loop has terminated: once terminated,
// its request endpoints fail.
func (s *Shard) Done() <-chan struct{} { return s.done }

// Ingress returns the send-only ingress channel a fan-out producer writes
// into. A plain send on it blocks once the buffer is full; TrySend is the
// non-blocking alternative (see ingressBuffer).
func (s *Shard) Ingress() chan<- telemetrymsg.FromShard { return s.ingress }

// TrySend attempts a non-blocking ingress send, reporting whether it
// succeeded. Used by the N>1 fan-out consumer.
func (s *Shard) TrySend(msg telemetrymsg.FromShard) bool {
	select {
	case s.ingress <- msg:
		return true
	default:
		return false
	}
}

func (s *Shard) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(StalenessSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-s.ingress:
			s.dispatch(ctx, msg)

		case ev := <-s.feedEvents:
			s.handleFeedEvent(ev)

		case req := <-s.overviewReq:
			req.resp <- s.buildOverview()

		case req := <-s.historyReq:
			req.resp <- s.buildBlockHistory()

		case req := <-s.nodeListReq:
			req.resp <- s.buildNodeList()

		case req := <-s.metricsReq:
			req.resp <- s.metrics.gather()

		case req := <-s.subFeedReq:
			req.resp <- s.handleSubscribeFeed(req.output)

		case req := <-s.unregFeed:
			delete(s.feeds, req.id)

		case <-ticker.C:
			s.sweepStale()
		}
	}
}

func (s *Shard) sweepStale() {
	threshold := node.Timestamp(time.Now().Add(-s.stalenessInterval).UnixMilli())
	for _, c := range s.chains {
		c.Range(func(_ node.UniqueNodeIdentity, n *node.Node) {
			n.UpdateStale(threshold)
		})
	}
}

func (s *Shard) buildOverview() map[node.GenesisHash]endpoints.ChainOverview {
	out := make(map[node.GenesisHash]endpoints.ChainOverview, len(s.chains))
	for gh, c := range s.chains {
		out[gh] = endpoints.BuildChainOverview(c)
	}
	return out
}

func (s *Shard) buildBlockHistory() map[node.GenesisHash]endpoints.BlockHistory {
	out := make(map[node.GenesisHash]endpoints.BlockHistory, len(s.chains))
	for gh, c := range s.chains {
		out[gh] = endpoints.BuildBlockHistory(c.StoredBlocks())
	}
	return out
}

func (s *Shard) buildNodeList() map[node.GenesisHash]endpoints.NodeList {
	out := make(map[node.GenesisHash]endpoints.NodeList, len(s.chains))
	for gh, c := range s.chains {
		out[gh] = endpoints.BuildNodeList(c)
	}
	return out
}

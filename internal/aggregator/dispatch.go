package aggregator

import (
	"context"
	"fmt"

	"github.com/availproject/substrate-telemetry-core/internal/chain"
	"github.com/availproject/substrate-telemetry-core/internal/node"
	"github.com/availproject/substrate-telemetry-core/internal/telemetrymsg"
)

// dispatch applies one ingress message to the relevant Chain/Node and, where
// the underlying mutator reports an observable change, emits the
// corresponding ToFeed diff to every feed subscribed to that genesis hash.
func (s *Shard) dispatch(ctx context.Context, msg telemetrymsg.FromShard) {
	switch m := msg.(type) {

	case telemetrymsg.AddNode:
		s.metrics.recordIngress(KindAddNode)
		c := s.chainFor(m.GenesisHash)
		c.AddNode(m.Identity, m.Details)

		// Awaiting location resolution is a named suspension point inside the
		// shard loop: the resolver call blocks this goroutine, so a slow,
		// uncached resolver stalls every chain this shard owns until it
		// returns. Opts.Resolver is expected to be wrapped in
		// findlocation.Cache for exactly this reason.
		var location *node.NodeLocation
		if m.Address != "" {
			if loc, err := s.resolver.Resolve(ctx, m.Address); err == nil {
				location = loc
			}
		}
		if n, ok := c.NodeByIdentity(m.Identity); ok {
			n.UpdateLocation(location)
		}

		s.broadcast(m.GenesisHash, telemetrymsg.NodeAdded{
			GenesisHash: m.GenesisHash,
			Identity:    m.Identity,
			Details:     m.Details,
			NodeCount:   c.NodeCount(),
			Location:    location,
		})

	case telemetrymsg.RemoveNode:
		s.metrics.recordIngress(KindRemoveNode)
		c, ok := s.chains[m.GenesisHash]
		if !ok {
			return
		}
		c.RemoveNode(m.Identity)
		s.broadcast(m.GenesisHash, telemetrymsg.NodeRemoved{
			GenesisHash: m.GenesisHash,
			Identity:    m.Identity,
			NodeCount:   c.NodeCount(),
		})
		if c.IsEmpty() {
			delete(s.chains, m.GenesisHash)
		}

	case telemetrymsg.UpdateBestBlock:
		s.metrics.recordIngress(KindUpdateBestBlock)
		c := s.chainFor(m.GenesisHash)
		n, ok := c.NodeByIdentity(m.Identity)
		if !ok {
			return
		}
		advanced := n.UpdateBlock(m.Block)
		details, observable := n.UpdateDetails(m.Timestamp, m.PropagationTime)
		if advanced {
			c.FoldBestBlockUpdate(m.Block, details.BlockTime)
		}
		if observable {
			s.broadcast(m.GenesisHash, telemetrymsg.BestBlockUpdated{
				GenesisHash: m.GenesisHash,
				Identity:    m.Identity,
				Details:     details,
			})
		}

	case telemetrymsg.UpdateFinalized:
		s.metrics.recordIngress(KindUpdateFinalized)
		c := s.chainFor(m.GenesisHash)
		n, ok := c.NodeByIdentity(m.Identity)
		if !ok {
			return
		}
		if block, changed := n.UpdateFinalized(m.Block); changed {
			c.FoldFinalizedUpdate(block)
			s.broadcast(m.GenesisHash, telemetrymsg.FinalizedUpdated{
				GenesisHash: m.GenesisHash,
				Identity:    m.Identity,
				Block:       block,
			})
		}

	case telemetrymsg.SystemIntervalReport:
		s.metrics.recordIngress(KindSystemInterval)
		c := s.chainFor(m.GenesisHash)
		n, ok := c.NodeByIdentity(m.Identity)
		if !ok {
			return
		}
		if stats, changed := n.UpdateStats(m.Interval); changed {
			s.broadcast(m.GenesisHash, telemetrymsg.StatsUpdated{
				GenesisHash: m.GenesisHash,
				Identity:    m.Identity,
				Stats:       stats,
			})
		}
		if io, changed := n.UpdateIO(m.Interval); changed {
			s.broadcast(m.GenesisHash, telemetrymsg.IOUpdated{
				GenesisHash: m.GenesisHash,
				Identity:    m.Identity,
				IO:          io,
			})
		}
		if n.UpdateHardware(m.Interval) {
			s.broadcast(m.GenesisHash, telemetrymsg.HardwareUpdated{
				GenesisHash: m.GenesisHash,
				Identity:    m.Identity,
				Hardware:    n.Hardware(),
			})
		}

	case telemetrymsg.HardwareBenchmark:
		s.metrics.recordIngress(KindHardwareBenchmark)
		c := s.chainFor(m.GenesisHash)
		if n, ok := c.NodeByIdentity(m.Identity); ok {
			n.UpdateHwBench(m.HwBench)
		}

	case telemetrymsg.BlockInterval:
		s.metrics.recordIngress(KindBlockInterval)
		c := s.chainFor(m.GenesisHash)
		n, ok := c.NodeByIdentity(m.Identity)
		if !ok {
			return
		}
		n.InsertBlockDetailsInterval(m.End-m.Start, m.Kind)

		best := n.Best()
		sb := c.StoredBlocks()
		details, _ := sb.Get(best.Height, best.Hash, m.Identity)
		interval := &node.Interval{PeerID: m.PeerID, StartTimestamp: m.Start, EndTimestamp: m.End}
		switch m.Kind {
		case node.IntervalProposal:
			details.Proposal = interval
		case node.IntervalSync:
			details.Sync = interval
		case node.IntervalImport:
			details.Import = interval
		}
		sb.Insert(m.Identity, best, details.Proposal, details.Import, details.Sync)

	case telemetrymsg.HistoricalBlockInterval:
		s.metrics.recordIngress(KindHistoricalBlockInterval)
		c := s.chainFor(m.GenesisHash)
		if n, ok := c.NodeByIdentity(m.Identity); ok {
			n.InsertHistoricalBlockData(m.BlockHash, m.BlockHeight, m.Duration, m.Kind)
		}

	case telemetrymsg.ValidatorAddress:
		s.metrics.recordIngress(KindValidatorAddress)
		c := s.chainFor(m.GenesisHash)
		if n, ok := c.NodeByIdentity(m.Identity); ok {
			n.SetValidatorAddress(m.Address)
		}

	case telemetrymsg.LocationResolved:
		s.metrics.recordIngress(KindLocationResolved)
		c := s.chainFor(m.GenesisHash)
		if n, ok := c.NodeByIdentity(m.Identity); ok {
			n.UpdateLocation(m.Location)
		}
	}
}

// chainFor returns the chain for genesisHash, creating it on first use:
// chains are implicitly created by the first node admitted.
func (s *Shard) chainFor(genesisHash node.GenesisHash) *chain.Chain {
	c, ok := s.chains[genesisHash]
	if !ok {
		c = chain.New(genesisHash)
		s.chains[genesisHash] = c
	}
	return c
}

// broadcast routes a diff to every feed subscribed to genesisHash. A send
// failure closes that feed's registration — the sink is assumed dead, so
// there is no point retrying it on the next diff (sink send failure per the
// error handling design: close the affected sink, log).
func (s *Shard) broadcast(genesisHash node.GenesisHash, diff telemetrymsg.ToFeed) {
	for id, f := range s.feeds {
		if !f.chains[genesisHash] {
			continue
		}
		s.metrics.recordEgress(KindFeedDiff)
		if err := f.output.Send(diff); err != nil {
			s.metrics.recordDropped()
			delete(s.feeds, id)
			s.logger.Warn("closing feed sink after send failure",
				"feed_id", id, "err", fmt.Errorf("%w: %v", ErrSinkClosed, err))
		}
	}
}

package node

// Minimum time between best-block updates before the browser-facing detail
// stream gets throttled, in ms.
const ThrottleThreshold Timestamp = 100

// Minimum interval between broadcasts while throttled, in ms.
const ThrottleInterval Timestamp = 1000

// Node is the per-node state machine: static details, rolling counters,
// hardware/IO series, best/finalized blocks, throttling and staleness, and a
// bounded window of historical per-block timings.
type Node struct {
	details NodeDetails
	stats   NodeStats
	io      NodeIO

	best      BlockDetails
	finalized Block

	// throttle holds the timestamp (ms) before which further non-suppressed
	// best-block detail emissions are suppressed.
	throttle Timestamp

	hardware NodeHardware
	location *NodeLocation

	stale bool

	startupTime *Timestamp
	hwbench     *NodeHwBench

	historical HistoricalData
}

// New creates a Node from its static admission details. If details carries a
// parseable startup time it is captured and cleared from the stored copy,
// mirroring the original's "take" semantics.
func New(details NodeDetails) *Node {
	startup := parseStartupTime(details.StartupTime)
	details.StartupTime = nil

	return &Node{
		details:     details,
		best:        BlockDetails{Block: Zero()},
		finalized:   Zero(),
		startupTime: startup,
	}
}

func parseStartupTime(s *string) *Timestamp {
	if s == nil {
		return nil
	}
	v, ok := parseUint(*s)
	if !ok {
		return nil
	}
	t := Timestamp(v)
	return &t
}

func parseUint(s string) (uint64, bool) {
	var v uint64
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + uint64(c-'0')
	}
	return v, true
}

func (n *Node) Details() NodeDetails { return n.details }
func (n *Node) Stats() NodeStats     { return n.stats }
func (n *Node) IO() NodeIO           { return n.io }

func (n *Node) Best() Block              { return n.best.Block }
func (n *Node) BestTimestamp() Timestamp { return n.best.BlockTimestamp }
func (n *Node) Finalized() Block         { return n.finalized }
func (n *Node) Hardware() NodeHardware   { return n.hardware }

func (n *Node) Location() *NodeLocation { return n.location }
func (n *Node) UpdateLocation(loc *NodeLocation) {
	n.location = loc
}

func (n *Node) BlockDetails() BlockDetails { return n.best }

func (n *Node) HwBench() *NodeHwBench { return n.hwbench }

// UpdateHwBench replaces the stored benchmark, returning the previous one.
func (n *Node) UpdateHwBench(hwbench NodeHwBench) *NodeHwBench {
	prev := n.hwbench
	n.hwbench = &hwbench
	return prev
}

// UpdateBlock records a new best block iff its height strictly advances the
// current best. Clears staleness on success. Returns whether it advanced.
func (n *Node) UpdateBlock(block Block) bool {
	if block.Height > n.best.Block.Height {
		n.stale = false
		n.best.Block = block
		return true
	}
	return false
}

// UpdateDetails records a new best-block observation timestamp and resets
// the per-block timing fields (sync/proposal/import), as a new block
// supersedes the previous one's timings. Returns the updated details and
// whether the emission is observable (not throttled): if the current
// timestamp is still within a previously armed throttle window
// the update is applied but reported as suppressed; otherwise, if the new
// block_time is at or below ThrottleThreshold, the throttle is (re)armed for
// ThrottleInterval from now.
func (n *Node) UpdateDetails(timestamp Timestamp, propagationTime *Timestamp) (BlockDetails, bool) {
	n.best.BlockTime = timestamp - n.best.BlockTimestamp
	n.best.BlockTimestamp = timestamp
	n.best.PropagationTime = propagationTime
	n.best.SyncTime = nil
	n.best.ProposalTime = nil
	n.best.ImportTime = nil

	if n.throttle < timestamp {
		if n.best.BlockTime <= ThrottleThreshold {
			n.throttle = timestamp + ThrottleInterval
		}
		return n.best, true
	}
	return n.best, false
}

// UpdateHardware pushes bandwidth samples into the bounded hardware series.
// Returns whether any series changed.
func (n *Node) UpdateHardware(interval SystemInterval) bool {
	changed := false
	if interval.BandwidthUpload != nil {
		changed = n.hardware.Upload.Push(*interval.BandwidthUpload) || changed
	}
	if interval.BandwidthDownload != nil {
		changed = n.hardware.Download.Push(*interval.BandwidthDownload) || changed
	}
	n.hardware.ChartStamps.Push(float64(timeNowMillis()))
	return changed
}

// UpdateStats copy-on-changes peers/txcount, returning the stats and whether
// anything changed.
func (n *Node) UpdateStats(interval SystemInterval) (NodeStats, bool) {
	changed := false
	if interval.Peers != nil && *interval.Peers != n.stats.Peers {
		n.stats.Peers = *interval.Peers
		changed = true
	}
	if interval.TxCount != nil && *interval.TxCount != n.stats.TxCount {
		n.stats.TxCount = *interval.TxCount
		changed = true
	}
	return n.stats, changed
}

// UpdateIO pushes the used-state-cache-size sample into the bounded IO
// series, returning the IO state and whether anything changed.
func (n *Node) UpdateIO(interval SystemInterval) (NodeIO, bool) {
	changed := false
	if interval.UsedStateCacheSize != nil {
		changed = n.io.UsedStateCacheSize.Push(*interval.UsedStateCacheSize) || changed
	}
	return n.io, changed
}

// UpdateFinalized replaces the finalized block iff height strictly advances.
func (n *Node) UpdateFinalized(block Block) (Block, bool) {
	if block.Height > n.finalized.Height {
		n.finalized = block
		return n.finalized, true
	}
	return n.finalized, false
}

// UpdateStale marks the node stale if its best block predates threshold, and
// returns the (possibly unchanged) stale flag. Staleness is never cleared
// here — only UpdateBlock clears it.
func (n *Node) UpdateStale(threshold Timestamp) bool {
	if n.best.BlockTimestamp < threshold {
		n.stale = true
	}
	return n.stale
}

func (n *Node) Stale() bool { return n.stale }

// SetValidatorAddress idempotently sets the validator address, returning
// whether it changed.
func (n *Node) SetValidatorAddress(addr string) bool {
	if n.details.ValidatorAddr != nil && *n.details.ValidatorAddr == addr {
		return false
	}
	n.details.ValidatorAddr = &addr
	return true
}

// IsAuthority reports whether a validator address has been associated with
// this node, if that has ever been communicated.
func (n *Node) IsAuthority() *bool {
	if n.details.ValidatorAddr == nil {
		return nil
	}
	v := true
	return &v
}

func (n *Node) StartupTime() *Timestamp { return n.startupTime }

// InsertBlockDetailsInterval fills in one of the current best block's
// proposal/sync/import timings.
func (n *Node) InsertBlockDetailsInterval(duration Timestamp, kind IntervalKind) {
	switch kind {
	case IntervalProposal:
		n.best.ProposalTime = &duration
	case IntervalSync:
		n.best.SyncTime = &duration
	case IntervalImport:
		n.best.ImportTime = &duration
	}
}

// InsertHistoricalBlockData delegates to the bounded historical window.
func (n *Node) InsertHistoricalBlockData(hash BlockHash, height BlockNumber, duration Timestamp, kind IntervalKind) {
	n.historical.InsertBlockTime(hash, height, duration, kind)
}

// Historical exposes the bounded historical window for snapshot building.
func (n *Node) Historical() []BlockHistoricalData {
	return n.historical.Blocks()
}

// Identity is a small helper used by chain/endpoints code: the Node itself
// doesn't know its own identity (it's the map key in Chain), so callers
// carry identity alongside *Node when they need both.
type Identity = UniqueNodeIdentity

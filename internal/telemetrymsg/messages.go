// Package telemetrymsg defines the closed ingress/egress message enums that
// the (out-of-scope) shard and feed websocket handlers produce and consume.
// The aggregator dispatches on these as a sealed, exhaustively-matched
// tagged union rather than open polymorphism.
package telemetrymsg

import (
	"github.com/availproject/substrate-telemetry-core/internal/node"
)

// FromShard is the sealed ingress message type produced by an upstream shard
// feeder. Implementations are the concrete message structs below.
type FromShard interface {
	isFromShard()
}

// AddNode admits a node to a chain. Address is the node's reported network
// address, as seen by the (out-of-scope) websocket handler; the shard
// resolves it to a location inline before the node is considered admitted.
type AddNode struct {
	GenesisHash node.GenesisHash
	Identity    node.UniqueNodeIdentity
	Details     node.NodeDetails
	Address     string
}

// RemoveNode removes a node from a chain.
type RemoveNode struct {
	GenesisHash node.GenesisHash
	Identity    node.UniqueNodeIdentity
}

// UpdateBestBlock reports a node's new best block.
type UpdateBestBlock struct {
	GenesisHash     node.GenesisHash
	Identity        node.UniqueNodeIdentity
	Block           node.Block
	Timestamp       node.Timestamp
	PropagationTime *node.Timestamp
}

// UpdateFinalized reports a node's new finalized block.
type UpdateFinalized struct {
	GenesisHash node.GenesisHash
	Identity    node.UniqueNodeIdentity
	Block       node.Block
}

// SystemIntervalReport carries periodic hardware/connectivity stats.
type SystemIntervalReport struct {
	GenesisHash node.GenesisHash
	Identity    node.UniqueNodeIdentity
	Interval    node.SystemInterval
}

// HardwareBenchmark reports a one-off benchmark result.
type HardwareBenchmark struct {
	GenesisHash node.GenesisHash
	Identity    node.UniqueNodeIdentity
	HwBench     node.NodeHwBench
}

// BlockInterval reports a timed proposal/sync/import event for the node's
// current best block.
type BlockInterval struct {
	GenesisHash node.GenesisHash
	Identity    node.UniqueNodeIdentity
	Kind        node.IntervalKind
	PeerID      *string
	Start       node.Timestamp
	End         node.Timestamp
}

// HistoricalBlockInterval reports a timed event for a specific (possibly
// non-current-best) block, to be folded into the node's bounded history.
type HistoricalBlockInterval struct {
	GenesisHash node.GenesisHash
	Identity    node.UniqueNodeIdentity
	BlockHash   node.BlockHash
	BlockHeight node.BlockNumber
	Duration    node.Timestamp
	Kind        node.IntervalKind
}

// ValidatorAddress reports the node's validator/authority address.
type ValidatorAddress struct {
	GenesisHash node.GenesisHash
	Identity    node.UniqueNodeIdentity
	Address     string
}

// LocationResolved delivers the result of an (out-of-scope) geo-IP lookup
// for a node's reported address.
type LocationResolved struct {
	GenesisHash node.GenesisHash
	Identity    node.UniqueNodeIdentity
	Location    *node.NodeLocation
}

func (AddNode) isFromShard()                {}
func (RemoveNode) isFromShard()              {}
func (UpdateBestBlock) isFromShard()        {}
func (UpdateFinalized) isFromShard()        {}
func (SystemIntervalReport) isFromShard()   {}
func (HardwareBenchmark) isFromShard()      {}
func (BlockInterval) isFromShard()          {}
func (HistoricalBlockInterval) isFromShard() {}
func (ValidatorAddress) isFromShard()       {}
func (LocationResolved) isFromShard()       {}

// FromFeed is the sealed egress-subscription message type produced by a feed
// (dashboard / HTTP poller) client.
type FromFeed interface {
	isFromFeed()
}

// SubscribeToChain requests updates for one chain.
type SubscribeToChain struct {
	GenesisHash node.GenesisHash
}

// UnsubscribeFromChain cancels a prior subscription.
type UnsubscribeFromChain struct {
	GenesisHash node.GenesisHash
}

// Ping is a liveness check.
type Ping struct {
	Payload string
}

func (SubscribeToChain) isFromFeed()     {}
func (UnsubscribeFromChain) isFromFeed() {}
func (Ping) isFromFeed()                 {}

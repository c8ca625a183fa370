package telemetrymsg

import "github.com/availproject/substrate-telemetry-core/internal/node"

// ToFeed is the sealed egress diff type a shard routes to subscribed feeds.
// Each variant corresponds to one of the Node/Chain mutators' observable
// changes — each mutator reports whether its update is observable, which
// drives downstream diffing.
type ToFeed interface {
	isToFeed()
}

type NodeAdded struct {
	GenesisHash node.GenesisHash
	Identity    node.UniqueNodeIdentity
	Details     node.NodeDetails
	NodeCount   int
	Location    *node.NodeLocation
}

type NodeRemoved struct {
	GenesisHash node.GenesisHash
	Identity    node.UniqueNodeIdentity
	NodeCount   int
}

type BestBlockUpdated struct {
	GenesisHash node.GenesisHash
	Identity    node.UniqueNodeIdentity
	Details     node.BlockDetails
}

type FinalizedUpdated struct {
	GenesisHash node.GenesisHash
	Identity    node.UniqueNodeIdentity
	Block       node.Block
}

type StatsUpdated struct {
	GenesisHash node.GenesisHash
	Identity    node.UniqueNodeIdentity
	Stats       node.NodeStats
}

type HardwareUpdated struct {
	GenesisHash node.GenesisHash
	Identity    node.UniqueNodeIdentity
	Hardware    node.NodeHardware
}

type IOUpdated struct {
	GenesisHash node.GenesisHash
	Identity    node.UniqueNodeIdentity
	IO          node.NodeIO
}

func (NodeAdded) isToFeed()        {}
func (NodeRemoved) isToFeed()      {}
func (BestBlockUpdated) isToFeed() {}
func (FinalizedUpdated) isToFeed() {}
func (StatsUpdated) isToFeed()     {}
func (HardwareUpdated) isToFeed()  {}
func (IOUpdated) isToFeed()        {}

// Package chain implements Chain State: a stable-index slab of nodes
// belonging to one genesis hash, its Block Window, and derived chain-wide
// aggregates (current best/finalized block, average block time).
package chain

import (
	"github.com/availproject/substrate-telemetry-core/internal/blocks"
	"github.com/availproject/substrate-telemetry-core/internal/node"
)

// GenesisHash identifies a chain.
type GenesisHash = node.BlockHash

// Chain holds all telemetry state for one genesis hash.
type Chain struct {
	genesisHash node.GenesisHash

	// slab is an append-with-tombstones vector of node slots addressed by
	// stable index.
	slab     []*node.Node
	idents   []node.UniqueNodeIdentity // slab[i]'s identity, valid iff slab[i] != nil
	byIdent  map[node.UniqueNodeIdentity]int
	freeList []int

	nodeCount int
	maxNodes  int

	storedBlocks *blocks.StoredBlocks

	bestBlock      node.Block
	finalizedBlock node.Block

	avgBlockTimeSum   uint64
	avgBlockTimeCount uint64
}

// New creates an empty chain for the given genesis hash.
func New(genesisHash node.GenesisHash) *Chain {
	return &Chain{
		genesisHash:  genesisHash,
		byIdent:      make(map[node.UniqueNodeIdentity]int),
		storedBlocks: blocks.New(),
	}
}

func (c *Chain) GenesisHash() node.GenesisHash { return c.genesisHash }
func (c *Chain) NodeCount() int                { return c.nodeCount }
func (c *Chain) MaxNodes() int                 { return c.maxNodes }
func (c *Chain) BestBlock() node.Block         { return c.bestBlock }
func (c *Chain) FinalizedBlock() node.Block    { return c.finalizedBlock }
func (c *Chain) StoredBlocks() *blocks.StoredBlocks { return c.storedBlocks }

// AverageBlockTime returns the rolling mean of per-update block intervals
// across all nodes in this chain, if any have been observed.
func (c *Chain) AverageBlockTime() *uint64 {
	if c.avgBlockTimeCount == 0 {
		return nil
	}
	avg := c.avgBlockTimeSum / c.avgBlockTimeCount
	return &avg
}

// AddNode admits a new node, returning its stable index.
// Reuses a freed slot if one is available.
func (c *Chain) AddNode(identity node.UniqueNodeIdentity, details node.NodeDetails) int {
	n := node.New(details)

	var idx int
	if len(c.freeList) > 0 {
		idx = c.freeList[len(c.freeList)-1]
		c.freeList = c.freeList[:len(c.freeList)-1]
		c.slab[idx] = n
		c.idents[idx] = identity
	} else {
		idx = len(c.slab)
		c.slab = append(c.slab, n)
		c.idents = append(c.idents, identity)
	}

	c.byIdent[identity] = idx
	c.nodeCount++
	if c.nodeCount > c.maxNodes {
		c.maxNodes = c.nodeCount
	}
	return idx
}

// RemoveNode tombstones the node's slot, freeing its index for reuse.
// Idempotent: removing an already-absent identity is a no-op.
func (c *Chain) RemoveNode(identity node.UniqueNodeIdentity) {
	idx, ok := c.byIdent[identity]
	if !ok {
		return
	}
	delete(c.byIdent, identity)
	c.slab[idx] = nil
	c.freeList = append(c.freeList, idx)
	c.nodeCount--
}

// NodeByIdentity looks up a node by its identity.
func (c *Chain) NodeByIdentity(identity node.UniqueNodeIdentity) (*node.Node, bool) {
	idx, ok := c.byIdent[identity]
	if !ok {
		return nil, false
	}
	return c.slab[idx], true
}

// NodeSlice exposes the raw slab for snapshot builders that need to iterate
// all live nodes alongside their identity.
func (c *Chain) NodeSlice() []*node.Node { return c.slab }

// Identities returns slab[i]'s identity; only meaningful where NodeSlice()[i]
// is non-nil.
func (c *Chain) Identities() []node.UniqueNodeIdentity { return c.idents }

// IsEmpty reports whether the chain has no remaining nodes (used by the
// shard to decide when a chain should be torn down).
func (c *Chain) IsEmpty() bool { return c.nodeCount == 0 }

// Range calls fn for every live (identity, node) pair.
func (c *Chain) Range(fn func(identity node.UniqueNodeIdentity, n *node.Node)) {
	for i, n := range c.slab {
		if n == nil {
			continue
		}
		fn(c.idents[i], n)
	}
}

// FoldBestBlockUpdate folds a node's newly-observed best-block timing into
// the chain's aggregates: updates the chain-wide best block if this is a new
// height, and folds the block_time delta into the rolling average.
func (c *Chain) FoldBestBlockUpdate(block node.Block, blockTime node.Timestamp) {
	if block.Height > c.bestBlock.Height {
		c.bestBlock = block
	}
	// Saturating sum/count pair.
	if c.avgBlockTimeSum+uint64(blockTime) < c.avgBlockTimeSum {
		c.avgBlockTimeSum = ^uint64(0)
	} else {
		c.avgBlockTimeSum += uint64(blockTime)
	}
	c.avgBlockTimeCount++
}

// FoldFinalizedUpdate folds a node's newly-observed finalized block into the
// chain-wide finalized block if it strictly advances it.
func (c *Chain) FoldFinalizedUpdate(block node.Block) {
	if block.Height > c.finalizedBlock.Height {
		c.finalizedBlock = block
	}
}

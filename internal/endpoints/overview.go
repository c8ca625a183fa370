package endpoints

import (
	"sort"

	"github.com/availproject/substrate-telemetry-core/internal/blocks"
	"github.com/availproject/substrate-telemetry-core/internal/chain"
	"github.com/availproject/substrate-telemetry-core/internal/node"
)

// ChainOverview is the /overview endpoint's serializable payload.
type ChainOverview struct {
	GenesisHash       node.BlockHash            `json:"genesis_hash"`
	BestBlock         node.Block                `json:"best_block"`
	FinalizedBlock    node.Block                `json:"finalized_block"`
	MaxNodes          int                       `json:"max_nodes"`
	NodeCount         int                       `json:"node_count"`
	AverageBlockTime  *uint64                   `json:"average_block_time"`
	Implementations   []OverviewImplementation  `json:"implementations"`
	Forks             []OverviewFork            `json:"forks"`
	Blocks            []OverviewBlock           `json:"blocks"`
}

// OverviewImplementation groups a node-version string with its count.
type OverviewImplementation struct {
	Version string `json:"version"`
	Count   int    `json:"count"`
}

// OverviewFork is one height at which two or more distinct hashes were
// observed.
type OverviewFork struct {
	BlockHeight node.BlockNumber    `json:"block_height"`
	Blocks      []OverviewForkBlock `json:"blocks"`
}

// OverviewForkBlock is one hash at a forked height.
type OverviewForkBlock struct {
	BlockHash         node.BlockHash `json:"block_hash"`
	BlockProducer     *BlockProducer `json:"block_producer"`
	NumberOfWitnesses int            `json:"number_of_witnesses"`
}

// OverviewBlock is one (height, hash) entry in the flat blocks list.
type OverviewBlock struct {
	BlockHeight   node.BlockNumber `json:"block_height"`
	BlockHash     node.BlockHash   `json:"block_hash"`
	BlockProducer *BlockProducer   `json:"block_producer"`
}

// findProducer returns the first identity (in the window's deterministic
// order) with a proposal interval at this (height, hash).
func findProducer(b blocks.HeightBlock) *BlockProducer {
	for _, identity := range b.Identities {
		details := b.ByIdentity[identity]
		if details.Proposal != nil {
			p := intervalToProducer(identity, *details.Proposal)
			return &p
		}
	}
	return nil
}

func buildForks(sb *blocks.StoredBlocks) []OverviewFork {
	var forks []OverviewFork
	sb.ForEachDescending(func(height node.BlockNumber, hbs []blocks.HeightBlock) {
		if len(hbs) < 2 {
			return
		}
		fork := OverviewFork{BlockHeight: height}
		for _, hb := range hbs {
			fork.Blocks = append(fork.Blocks, OverviewForkBlock{
				BlockHash:         hb.Hash,
				BlockProducer:     findProducer(hb),
				NumberOfWitnesses: len(hb.Identities),
			})
		}
		forks = append(forks, fork)
	})
	return forks
}

func buildOverviewBlocks(sb *blocks.StoredBlocks) []OverviewBlock {
	var out []OverviewBlock
	sb.ForEachDescending(func(height node.BlockNumber, hbs []blocks.HeightBlock) {
		for _, hb := range hbs {
			out = append(out, OverviewBlock{
				BlockHeight:   height,
				BlockHash:     hb.Hash,
				BlockProducer: findProducer(hb),
			})
		}
	})
	return out
}

func buildImplementations(c *chain.Chain) []OverviewImplementation {
	counts := make(map[string]int)
	for _, n := range c.NodeSlice() {
		if n == nil {
			continue
		}
		counts[n.Details().Version]++
	}

	out := make([]OverviewImplementation, 0, len(counts))
	for version, count := range counts {
		out = append(out, OverviewImplementation{Version: version, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out
}

// BuildChainOverview builds the ChainOverview snapshot from a chain's current
// state.
func BuildChainOverview(c *chain.Chain) ChainOverview {
	sb := c.StoredBlocks()
	return ChainOverview{
		GenesisHash:      c.GenesisHash(),
		BestBlock:        c.BestBlock(),
		FinalizedBlock:   c.FinalizedBlock(),
		MaxNodes:         c.MaxNodes(),
		NodeCount:        c.NodeCount(),
		AverageBlockTime: c.AverageBlockTime(),
		Implementations:  buildImplementations(c),
		Forks:            buildForks(sb),
		Blocks:           buildOverviewBlocks(sb),
	}
}

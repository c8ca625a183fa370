package endpoints

import (
	"sort"

	"github.com/availproject/substrate-telemetry-core/internal/chain"
	"github.com/availproject/substrate-telemetry-core/internal/node"
)

// NodeList is the /node_list endpoint's serializable payload: nodes grouped
// by implementation version, plus a flat per-node projection.
type NodeList struct {
	Implementations []NodeListImplementation `json:"implementations"`
	Nodes           []NodeListNodeDetails    `json:"nodes"`
}

type NodeListImplementation struct {
	Version string                `json:"version"`
	Nodes   []SUniqueNodeIdentity `json:"nodes"`
	Count   int                   `json:"count"`
}

type NodeListNodeDetails struct {
	Identity           SUniqueNodeIdentity `json:"identity"`
	Details            node.NodeDetails    `json:"details"`
	BestBlock          node.Block          `json:"best_block"`
	FinalizedBlock     node.Block          `json:"finalized_block"`
	BestBlockTimestamp node.Timestamp      `json:"best_block_timestamp"`
	Peers              uint64              `json:"peers"`
	TxCount            uint64              `json:"txcount"`
	Stale              bool                `json:"stale"`
	IsAuthority        *bool               `json:"is_authority"`
}

// BuildNodeList builds the NodeList snapshot from a chain's current state.
// Unlike the original Rust source, which sorts the implementations slice
// twice with one sort redundant, this sorts once.
func BuildNodeList(c *chain.Chain) NodeList {
	grouped := make(map[string][]SUniqueNodeIdentity)

	for i, n := range c.NodeSlice() {
		if n == nil {
			continue
		}
		version := n.Details().Version
		grouped[version] = append(grouped[version], identityToS(c.Identities()[i]))
	}

	implementations := make([]NodeListImplementation, 0, len(grouped))
	for version, idents := range grouped {
		implementations = append(implementations, NodeListImplementation{
			Version: version,
			Nodes:   idents,
			Count:   len(idents),
		})
	}
	sort.Slice(implementations, func(i, j int) bool {
		return implementations[i].Version > implementations[j].Version
	})

	var nodes []NodeListNodeDetails
	c.Range(func(identity node.UniqueNodeIdentity, n *node.Node) {
		nodes = append(nodes, NodeListNodeDetails{
			Identity:           identityToS(identity),
			Details:            n.Details(),
			BestBlock:          n.Best(),
			FinalizedBlock:     n.Finalized(),
			BestBlockTimestamp: n.BestTimestamp(),
			Peers:              n.Stats().Peers,
			TxCount:            n.Stats().TxCount,
			Stale:              n.Stale(),
			IsAuthority:        n.IsAuthority(),
		})
	})

	return NodeList{Implementations: implementations, Nodes: nodes}
}

package endpoints

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/availproject/substrate-telemetry-core/internal/blocks"
	"github.com/availproject/substrate-telemetry-core/internal/node"
)

func TestBuildBlockHistoryDescendingWithDetails(t *testing.T) {
	sb := blocks.New()
	id := node.UniqueNodeIdentity{NodeName: "a", NetworkID: "net"}

	sync := &node.Interval{StartTimestamp: 1, EndTimestamp: 5}
	sb.Insert(id, node.Block{Height: 1, Hash: node.BlockHash{1}}, nil, nil, sync)
	sb.Insert(id, node.Block{Height: 2, Hash: node.BlockHash{2}}, nil, nil, nil)

	bh := BuildBlockHistory(sb)
	require.Len(t, bh.Heights, 2)
	require.Equal(t, node.BlockNumber(2), bh.Heights[0].BlockHeight, "newest first")

	oldest := bh.Heights[1]
	require.Len(t, oldest.Blocks, 1)
	require.Len(t, oldest.Blocks[0].Nodes, 1)
	nodeData := oldest.Blocks[0].Nodes[0]
	require.NotNil(t, nodeData.Sync)
	require.Nil(t, nodeData.Proposal)
}

package chain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/availproject/substrate-telemetry-core/internal/node"
)

func TestAddNodeReusesFreedSlot(t *testing.T) {
	c := New(node.GenesisHash{0x1})

	idA := node.UniqueNodeIdentity{NodeName: "a", NetworkID: "net"}
	idB := node.UniqueNodeIdentity{NodeName: "b", NetworkID: "net"}

	idxA := c.AddNode(idA, node.NodeDetails{})
	require.Equal(t, 1, c.NodeCount())

	c.RemoveNode(idA)
	require.Equal(t, 0, c.NodeCount())

	idxB := c.AddNode(idB, node.NodeDetails{})
	require.Equal(t, idxA, idxB, "the freed slot is reused")
	require.Equal(t, 1, c.MaxNodes(), "high-water mark does not drop on removal")
}

func TestRemoveNodeIdempotent(t *testing.T) {
	c := New(node.GenesisHash{0x1})
	id := node.UniqueNodeIdentity{NodeName: "a", NetworkID: "net"}

	c.RemoveNode(id) // absent identity: no-op, must not panic
	c.AddNode(id, node.NodeDetails{})
	c.RemoveNode(id)
	c.RemoveNode(id) // already removed: still a no-op
	require.Equal(t, 0, c.NodeCount())
}

func TestFoldBestBlockUpdateMonotonicAndAverages(t *testing.T) {
	c := New(node.GenesisHash{0x1})

	c.FoldBestBlockUpdate(node.Block{Height: 5}, 100)
	require.Equal(t, node.BlockNumber(5), c.BestBlock().Height)
	require.NotNil(t, c.AverageBlockTime())
	require.Equal(t, uint64(100), *c.AverageBlockTime())

	c.FoldBestBlockUpdate(node.Block{Height: 3}, 50)
	require.Equal(t, node.BlockNumber(5), c.BestBlock().Height, "height never regresses")
	require.Equal(t, uint64(75), *c.AverageBlockTime(), "average folds in the new sample regardless")

	c.FoldBestBlockUpdate(node.Block{Height: 7}, 100)
	require.Equal(t, node.BlockNumber(7), c.BestBlock().Height)
}

func TestFoldFinalizedUpdateMonotonic(t *testing.T) {
	c := New(node.GenesisHash{0x1})

	c.FoldFinalizedUpdate(node.Block{Height: 4})
	require.Equal(t, node.BlockNumber(4), c.FinalizedBlock().Height)

	c.FoldFinalizedUpdate(node.Block{Height: 2})
	require.Equal(t, node.BlockNumber(4), c.FinalizedBlock().Height)
}

func TestAverageBlockTimeNilBeforeFirstSample(t *testing.T) {
	c := New(node.GenesisHash{0x1})
	require.Nil(t, c.AverageBlockTime())
}

func TestRangeSkipsTombstonedSlots(t *testing.T) {
	c := New(node.GenesisHash{0x1})
	idA := node.UniqueNodeIdentity{NodeName: "a", NetworkID: "net"}
	idB := node.UniqueNodeIdentity{NodeName: "b", NetworkID: "net"}
	c.AddNode(idA, node.NodeDetails{})
	c.AddNode(idB, node.NodeDetails{})
	c.RemoveNode(idA)

	seen := make(map[node.UniqueNodeIdentity]bool)
	c.Range(func(identity node.UniqueNodeIdentity, n *node.Node) {
		seen[identity] = true
	})
	require.False(t, seen[idA])
	require.True(t, seen[idB])
}

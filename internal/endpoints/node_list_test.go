package endpoints

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/availproject/substrate-telemetry-core/internal/chain"
	"github.com/availproject/substrate-telemetry-core/internal/node"
)

func TestBuildNodeListGroupsByVersionSortedDescending(t *testing.T) {
	c := chain.New(node.GenesisHash{0x1})
	c.AddNode(node.UniqueNodeIdentity{NodeName: "a", NetworkID: "net"}, node.NodeDetails{Version: "1.0.0"})
	c.AddNode(node.UniqueNodeIdentity{NodeName: "b", NetworkID: "net"}, node.NodeDetails{Version: "2.0.0"})
	c.AddNode(node.UniqueNodeIdentity{NodeName: "c", NetworkID: "net"}, node.NodeDetails{Version: "1.0.0"})

	nl := BuildNodeList(c)

	require.Len(t, nl.Implementations, 2)
	require.Equal(t, "2.0.0", nl.Implementations[0].Version, "descending version order")
	require.Equal(t, 1, nl.Implementations[0].Count)
	require.Equal(t, "1.0.0", nl.Implementations[1].Version)
	require.Equal(t, 2, nl.Implementations[1].Count)

	require.Len(t, nl.Nodes, 3)
}

func TestBuildNodeListSkipsRemovedNodes(t *testing.T) {
	c := chain.New(node.GenesisHash{0x1})
	id := node.UniqueNodeIdentity{NodeName: "a", NetworkID: "net"}
	c.AddNode(id, node.NodeDetails{Version: "1.0.0"})
	c.RemoveNode(id)

	nl := BuildNodeList(c)
	require.Empty(t, nl.Nodes)
	require.Empty(t, nl.Implementations)
}

package blocks

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/availproject/substrate-telemetry-core/internal/node"
)

func ident(name string) node.UniqueNodeIdentity {
	return node.UniqueNodeIdentity{NodeName: name, NetworkID: "net"}
}

func TestInsertEvictsSmallestHeightPastCapacity(t *testing.T) {
	sb := New()

	for h := 1; h <= MaxHeights+5; h++ {
		sb.Insert(ident("n1"), node.Block{Height: node.BlockNumber(h), Hash: node.BlockHash{byte(h)}}, nil, nil, nil)
	}

	require.Equal(t, MaxHeights, sb.Len())
	require.False(t, sb.Has(1), "height 1 should have been evicted")
	require.False(t, sb.Has(5), "height 5 should have been evicted")
	require.True(t, sb.Has(6), "the 30 largest heights are retained")
	require.True(t, sb.Has(node.BlockNumber(MaxHeights+5)))
}

func TestInsertUpsertOverwritesWholeTriple(t *testing.T) {
	sb := New()
	id := ident("n1")
	block := node.Block{Height: 1, Hash: node.BlockHash{1}}

	proposal := &node.Interval{StartTimestamp: 1, EndTimestamp: 2}
	sb.Insert(id, block, proposal, nil, nil)

	details, ok := sb.Get(block.Height, block.Hash, id)
	require.True(t, ok)
	require.NotNil(t, details.Proposal)
	require.Nil(t, details.Import)

	imp := &node.Interval{StartTimestamp: 3, EndTimestamp: 4}
	sb.Insert(id, block, nil, imp, nil)

	details, ok = sb.Get(block.Height, block.Hash, id)
	require.True(t, ok)
	require.Nil(t, details.Proposal, "Insert overwrites the whole triple, not just non-nil fields")
	require.NotNil(t, details.Import)
}

func TestForEachDescendingOrderAndWitnesses(t *testing.T) {
	sb := New()
	sb.Insert(ident("a"), node.Block{Height: 1, Hash: node.BlockHash{1}}, nil, nil, nil)
	sb.Insert(ident("b"), node.Block{Height: 2, Hash: node.BlockHash{2}}, nil, nil, nil)
	sb.Insert(ident("c"), node.Block{Height: 2, Hash: node.BlockHash{3}}, nil, nil, nil)

	var heightsSeen []node.BlockNumber
	sb.ForEachDescending(func(height node.BlockNumber, hbs []HeightBlock) {
		heightsSeen = append(heightsSeen, height)
		if height == 2 {
			require.Len(t, hbs, 2, "two distinct hashes at the same height is a fork")
		}
	})
	require.Equal(t, []node.BlockNumber{2, 1}, heightsSeen, "newest height first")
}

func TestInsertionOrderDeterminesProducerCandidates(t *testing.T) {
	sb := New()
	block := node.Block{Height: 1, Hash: node.BlockHash{1}}
	sb.Insert(ident("second"), block, nil, nil, nil)
	sb.Insert(ident("first"), block, nil, nil, nil)

	sb.ForEachDescending(func(height node.BlockNumber, hbs []HeightBlock) {
		require.Equal(t, []node.UniqueNodeIdentity{ident("second"), ident("first")}, hbs[0].Identities,
			"identity order reflects insertion order, not a randomized map or a re-sort")
	})
}

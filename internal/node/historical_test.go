package node

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHistoricalDataUpdatesByHash(t *testing.T) {
	var h HistoricalData

	hashA := BlockHash{0xA}
	hashB := BlockHash{0xB}

	dur := Timestamp(10)
	h.InsertBlockTime(hashA, 100, dur, IntervalProposal)
	require.Equal(t, 1, h.Len())

	// A different hash at the same height is a distinct entry, not an
	// update of the first (this is the tautology bug's fix: the original
	// compared a candidate's hash to itself, which would have matched any
	// existing entry regardless of its actual hash).
	h.InsertBlockTime(hashB, 100, dur, IntervalProposal)
	require.Equal(t, 2, h.Len())

	// Updating hashA again in place, not appending a third entry.
	dur2 := Timestamp(20)
	h.InsertBlockTime(hashA, 100, dur2, IntervalSync)
	require.Equal(t, 2, h.Len())

	blocks := h.Blocks()
	var found *BlockHistoricalData
	for i := range blocks {
		if blocks[i].BlockHash == hashA {
			found = &blocks[i]
		}
	}
	require.NotNil(t, found)
	require.NotNil(t, found.ProposalTime)
	require.Equal(t, dur, *found.ProposalTime)
	require.NotNil(t, found.SyncTime)
	require.Equal(t, dur2, *found.SyncTime)
}

func TestHistoricalDataCapped(t *testing.T) {
	var h HistoricalData

	for i := 0; i < HistoricalDataCapacity+10; i++ {
		hash := BlockHash{byte(i), byte(i >> 8)}
		h.InsertBlockTime(hash, BlockNumber(i), Timestamp(i), IntervalImport)
	}

	require.Equal(t, HistoricalDataCapacity, h.Len())

	blocks := h.Blocks()
	// The oldest 10 entries (heights 0..9) must have been evicted; the
	// earliest surviving entry is height 10.
	require.Equal(t, BlockNumber(10), blocks[0].BlockHeight)
}

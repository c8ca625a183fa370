package node

// HistoricalDataCapacity bounds the number of distinct blocks retained per
// node's historical timing window.
const HistoricalDataCapacity = 128

// BlockHistoricalData is one retained block's timing observations.
type BlockHistoricalData struct {
	BlockHeight  BlockNumber
	BlockHash    BlockHash
	ProposalTime *Timestamp
	SyncTime     *Timestamp
	ImportTime   *Timestamp
}

// HistoricalData is a bounded FIFO of per-block timing observations, keyed
// by block hash. Entries are updated in place if already present; otherwise
// appended, evicting the oldest entry past capacity.
//
// The original Rust source's lookup compared a candidate's block_hash to
// itself (a tautology: `b.block_hash == b.block_hash`). This port implements
// the evidently-intended behavior instead: match against the caller-supplied
// block_hash.
type HistoricalData struct {
	blocks []BlockHistoricalData
}

// InsertBlockTime updates (or creates) the entry for blockHash/blockHeight
// with the given timing for kind.
func (h *HistoricalData) InsertBlockTime(blockHash BlockHash, blockHeight BlockNumber, duration Timestamp, kind IntervalKind) {
	block := h.getOrInsert(blockHash, blockHeight)
	switch kind {
	case IntervalProposal:
		block.ProposalTime = &duration
	case IntervalSync:
		block.SyncTime = &duration
	case IntervalImport:
		block.ImportTime = &duration
	}
}

func (h *HistoricalData) getOrInsert(blockHash BlockHash, blockHeight BlockNumber) *BlockHistoricalData {
	for i := range h.blocks {
		if h.blocks[i].BlockHash == blockHash {
			return &h.blocks[i]
		}
	}

	h.blocks = append(h.blocks, BlockHistoricalData{
		BlockHeight: blockHeight,
		BlockHash:   blockHash,
	})
	if len(h.blocks) > HistoricalDataCapacity {
		h.blocks = h.blocks[1:]
	}
	return &h.blocks[len(h.blocks)-1]
}

// Blocks returns the retained entries, oldest first.
func (h *HistoricalData) Blocks() []BlockHistoricalData {
	out := make([]BlockHistoricalData, len(h.blocks))
	copy(out, h.blocks)
	return out
}

// Len reports the number of retained entries.
func (h *HistoricalData) Len() int { return len(h.blocks) }

package endpoints

import (
	"github.com/availproject/substrate-telemetry-core/internal/blocks"
	"github.com/availproject/substrate-telemetry-core/internal/node"
)

// BlockHistory is the /block_history endpoint's serializable payload: the
// full block window, newest height first.
type BlockHistory struct {
	Heights []BlockHistoryHeight `json:"heights"`
}

type BlockHistoryHeight struct {
	BlockHeight node.BlockNumber     `json:"block_height"`
	Blocks      []BlockHistoryBlock  `json:"blocks"`
}

type BlockHistoryBlock struct {
	BlockHash node.BlockHash          `json:"block_hash"`
	Nodes     []BlockHistoryNodeData  `json:"nodes"`
}

type BlockHistoryNodeData struct {
	Identity SUniqueNodeIdentity `json:"identity"`
	Proposal *BlockHistoryDetail `json:"proposal"`
	Import   *BlockHistoryDetail `json:"import"`
	Sync     *BlockHistoryDetail `json:"sync"`
}

type BlockHistoryDetail struct {
	PeerID         *string   `json:"peer_id"`
	StartTimestamp SDateTime `json:"start_timestamp"`
	EndTimestamp   SDateTime `json:"end_timestamp"`
}

func intervalToDetail(i *node.Interval) *BlockHistoryDetail {
	if i == nil {
		return nil
	}
	return &BlockHistoryDetail{
		PeerID:         i.PeerID,
		StartTimestamp: newSDateTime(i.StartTimestamp),
		EndTimestamp:   newSDateTime(i.EndTimestamp),
	}
}

// BuildBlockHistory builds the BlockHistory snapshot from a chain's block
// window.
func BuildBlockHistory(sb *blocks.StoredBlocks) BlockHistory {
	var result BlockHistory
	sb.ForEachDescending(func(height node.BlockNumber, hbs []blocks.HeightBlock) {
		bh := BlockHistoryHeight{BlockHeight: height}
		for _, hb := range hbs {
			block := BlockHistoryBlock{BlockHash: hb.Hash}
			for _, identity := range hb.Identities {
				details := hb.ByIdentity[identity]
				block.Nodes = append(block.Nodes, BlockHistoryNodeData{
					Identity: identityToS(identity),
					Proposal: intervalToDetail(details.Proposal),
					Import:   intervalToDetail(details.Import),
					Sync:     intervalToDetail(details.Sync),
				})
			}
			bh.Blocks = append(bh.Blocks, block)
		}
		result.Heights = append(result.Heights, bh)
	})
	return result
}

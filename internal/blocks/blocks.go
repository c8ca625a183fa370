// Package blocks implements the bounded Block Window: height → hash →
// identity → per-kind interval observations, with eviction of the smallest
// height once more than MaxHeights distinct heights are retained.
package blocks

import (
	"sort"

	"github.com/availproject/substrate-telemetry-core/internal/node"
)

// MaxHeights is the maximum number of distinct heights retained.
const MaxHeights = 30

// IntervalDetails holds the last-observed proposal/import/sync interval for
// one (height, hash, identity) triple. Last-writer-wins per field set: a new
// insert overwrites the whole triple, not just the non-nil fields.
type IntervalDetails struct {
	Proposal *node.Interval
	Import   *node.Interval
	Sync     *node.Interval
}

type hashEntry struct {
	identities []node.UniqueNodeIdentity // insertion order, for deterministic producer selection
	byIdentity map[node.UniqueNodeIdentity]IntervalDetails
}

func newHashEntry() *hashEntry {
	return &hashEntry{byIdentity: make(map[node.UniqueNodeIdentity]IntervalDetails)}
}

type heightEntry struct {
	hashes   []node.BlockHash // insertion order
	byHash   map[node.BlockHash]*hashEntry
}

func newHeightEntry() *heightEntry {
	return &heightEntry{byHash: make(map[node.BlockHash]*hashEntry)}
}

// StoredBlocks is the bounded, ordered Block Window for one chain.
type StoredBlocks struct {
	heights       []node.BlockNumber // ascending, sorted
	byHeight      map[node.BlockNumber]*heightEntry
}

// New creates an empty block window.
func New() *StoredBlocks {
	return &StoredBlocks{byHeight: make(map[node.BlockNumber]*heightEntry)}
}

// Insert upserts the observation triple at (block.Height, block.Hash,
// identity), unconditionally overwriting any prior value there, then evicts
// the smallest height while more than MaxHeights distinct heights remain.
func (s *StoredBlocks) Insert(identity node.UniqueNodeIdentity, block node.Block, proposal, importI, sync *node.Interval) {
	he, ok := s.byHeight[block.Height]
	if !ok {
		he = newHeightEntry()
		s.byHeight[block.Height] = he
		s.insertHeightSorted(block.Height)
	}

	ha, ok := he.byHash[block.Hash]
	if !ok {
		ha = newHashEntry()
		he.byHash[block.Hash] = ha
		he.hashes = append(he.hashes, block.Hash)
	}

	if _, existed := ha.byIdentity[identity]; !existed {
		ha.identities = append(ha.identities, identity)
	}
	ha.byIdentity[identity] = IntervalDetails{Proposal: proposal, Import: importI, Sync: sync}

	for len(s.heights) > MaxHeights {
		s.evictSmallest()
	}
}

func (s *StoredBlocks) insertHeightSorted(h node.BlockNumber) {
	i := sort.Search(len(s.heights), func(i int) bool { return s.heights[i] >= h })
	s.heights = append(s.heights, 0)
	copy(s.heights[i+1:], s.heights[i:])
	s.heights[i] = h
}

func (s *StoredBlocks) evictSmallest() {
	if len(s.heights) == 0 {
		return
	}
	smallest := s.heights[0]
	s.heights = s.heights[1:]
	delete(s.byHeight, smallest)
}

// Get returns the current interval details for (height, hash, identity), if
// any has been recorded yet. Callers that only want to update one interval
// kind should Get first and fold their change into the result before
// calling Insert, since Insert overwrites the whole triple.
func (s *StoredBlocks) Get(height node.BlockNumber, hash node.BlockHash, identity node.UniqueNodeIdentity) (IntervalDetails, bool) {
	he, ok := s.byHeight[height]
	if !ok {
		return IntervalDetails{}, false
	}
	ha, ok := he.byHash[hash]
	if !ok {
		return IntervalDetails{}, false
	}
	d, ok := ha.byIdentity[identity]
	return d, ok
}

// Len reports the number of distinct heights currently retained.
func (s *StoredBlocks) Len() int { return len(s.heights) }

// Has reports whether height is currently retained.
func (s *StoredBlocks) Has(height node.BlockNumber) bool {
	_, ok := s.byHeight[height]
	return ok
}

// HeightBlock is one (hash, node identity -> intervals) bucket at a height.
type HeightBlock struct {
	Hash       node.BlockHash
	Identities []node.UniqueNodeIdentity // deterministic order
	ByIdentity map[node.UniqueNodeIdentity]IntervalDetails
}

// ForEachDescending enumerates the window in descending height order (newest
// first), as required by the snapshot builders.
func (s *StoredBlocks) ForEachDescending(fn func(height node.BlockNumber, blocks []HeightBlock)) {
	for i := len(s.heights) - 1; i >= 0; i-- {
		height := s.heights[i]
		he := s.byHeight[height]
		blocks := make([]HeightBlock, 0, len(he.hashes))
		for _, hash := range he.hashes {
			ha := he.byHash[hash]
			blocks = append(blocks, HeightBlock{
				Hash:       hash,
				Identities: ha.identities,
				ByIdentity: ha.byIdentity,
			})
		}
		fn(height, blocks)
	}
}

package chain

import (
	"sort"

	"github.com/LemoFoundationLtd/lemochain-store/chain/types"
	"github.com/LemoFoundationLtd/lemochain-store/common"
	"gopkg.in/fatih/set.v0"
	"gopkg.in/karalabe/cookiejar.v2/collections/prque"
)

// maxOrphanSeq keeps the float32 priorities in evictQueue exact
const maxOrphanSeq = 1 << 24

type orphanBlock struct {
	block *types.Block
	hash  common.Hash
	seq   uint64 // arrival order
}

// orphanPool holds the blocks whose parent is unknown. It is not thread safe, the caller must hold the chain lock
type orphanPool struct {
	max      int
	seq      uint64
	orphans  map[common.Hash]*orphanBlock
	byParent map[common.Hash]set.Interface // parent hash -> children hashes
	// oldest orphan has the highest priority. Removed orphans stay in queue until they are popped or the queue is rebuilt
	evictQueue *prque.Prque
	stale      int // removed orphans still in evictQueue
}

func newOrphanPool(max int) *orphanPool {
	return &orphanPool{
		max:        max,
		orphans:    make(map[common.Hash]*orphanBlock),
		byParent:   make(map[common.Hash]set.Interface),
		evictQueue: prque.New(),
	}
}

func (p *orphanPool) Has(hash common.Hash) bool {
	_, ok := p.orphans[hash]
	return ok
}

func (p *orphanPool) Len() int {
	return len(p.orphans)
}

// Add put the block into pool. It returns the evicted orphans if the pool is full
func (p *orphanPool) Add(hash common.Hash, block *types.Block) []*types.Block {
	if p.Has(hash) {
		return nil
	}
	var evicted []*types.Block
	for len(p.orphans) >= p.max && !p.evictQueue.Empty() {
		oldest := p.evictQueue.PopItem().(*orphanBlock)
		if p.orphans[oldest.hash] != oldest {
			// has been resolved
			p.stale--
			continue
		}
		p.remove(oldest)
		evicted = append(evicted, oldest.block)
	}

	if p.seq >= maxOrphanSeq {
		p.rebuildQueue()
	}
	p.seq++
	orphan := &orphanBlock{block: block, hash: hash, seq: p.seq}
	p.orphans[hash] = orphan
	children, ok := p.byParent[block.ParentHash()]
	if !ok {
		children = set.New(set.NonThreadSafe)
		p.byParent[block.ParentHash()] = children
	}
	children.Add(hash)
	p.evictQueue.Push(orphan, -float32(orphan.seq))
	return evicted
}

// Children returns the orphans which are waiting for the parent in arrival order. They are still kept in pool
func (p *orphanPool) Children(parent common.Hash) []*types.Block {
	children, ok := p.byParent[parent]
	if !ok {
		return nil
	}
	list := make([]*orphanBlock, 0, children.Size())
	children.Each(func(item interface{}) bool {
		if orphan, ok := p.orphans[item.(common.Hash)]; ok {
			list = append(list, orphan)
		}
		return true
	})
	sortBySeq(list)

	result := make([]*types.Block, len(list))
	for i, orphan := range list {
		result[i] = orphan.block
	}
	return result
}

// ParentsIn returns the parents which are in known and have orphans waiting for them. The parent of the oldest orphan
// comes first
func (p *orphanPool) ParentsIn(known map[common.Hash]uint32) []common.Hash {
	var firsts []*orphanBlock
	for parent, children := range p.byParent {
		if _, ok := known[parent]; !ok {
			continue
		}
		var first *orphanBlock
		children.Each(func(item interface{}) bool {
			if orphan, ok := p.orphans[item.(common.Hash)]; ok && (first == nil || orphan.seq < first.seq) {
				first = orphan
			}
			return true
		})
		if first != nil {
			firsts = append(firsts, first)
		}
	}
	sortBySeq(firsts)

	result := make([]common.Hash, len(firsts))
	for i, orphan := range firsts {
		result[i] = orphan.block.ParentHash()
	}
	return result
}

// Remove deletes the orphan after it is admitted into chain
func (p *orphanPool) Remove(hash common.Hash) {
	orphan, ok := p.orphans[hash]
	if !ok {
		return
	}
	p.remove(orphan)
	if len(p.orphans) == 0 {
		return
	}
	p.stale++
	if p.stale > p.max {
		p.rebuildQueue()
	}
}

func (p *orphanPool) remove(orphan *orphanBlock) {
	delete(p.orphans, orphan.hash)
	parent := orphan.block.ParentHash()
	if children, ok := p.byParent[parent]; ok {
		children.Remove(orphan.hash)
		if children.IsEmpty() {
			delete(p.byParent, parent)
		}
	}
	if len(p.orphans) == 0 {
		// drop the stale queue items and restart the arrival counter
		p.evictQueue.Reset()
		p.seq = 0
		p.stale = 0
	}
}

// rebuildQueue drops the stale items in evictQueue and renumbers the orphans from 1 in arrival order
func (p *orphanPool) rebuildQueue() {
	list := make([]*orphanBlock, 0, len(p.orphans))
	for _, orphan := range p.orphans {
		list = append(list, orphan)
	}
	sortBySeq(list)

	p.evictQueue.Reset()
	for i, orphan := range list {
		orphan.seq = uint64(i + 1)
		p.evictQueue.Push(orphan, -float32(orphan.seq))
	}
	p.seq = uint64(len(list))
	p.stale = 0
}

func sortBySeq(list []*orphanBlock) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].seq < list[j].seq
	})
}

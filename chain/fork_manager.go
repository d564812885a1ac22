package chain

import (
	"errors"
	"sync/atomic"

	"github.com/LemoFoundationLtd/lemochain-store/chain/types"
	"github.com/LemoFoundationLtd/lemochain-store/common"
)

var ErrNoHeadBlock = errors.New("head block is required")

type headBlock struct {
	block  *types.Block
	hash   common.Hash
	height uint32
}

// ForkManager process the fork logic. It keeps the last block on the longest fork
type ForkManager struct {
	head atomic.Value // *headBlock
}

func NewForkManager(genesis *types.Block) *ForkManager {
	fm := &ForkManager{}
	fm.SetHeadBlock(genesis, 0)
	return fm
}

// GetHeadBlock get latest block on current fork
func (fm *ForkManager) GetHeadBlock() *types.Block {
	return fm.load().block
}

func (fm *ForkManager) HeadHash() common.Hash {
	return fm.load().hash
}

func (fm *ForkManager) HeadHeight() uint32 {
	return fm.load().height
}

func (fm *ForkManager) SetHeadBlock(block *types.Block, height uint32) {
	if block == nil {
		panic(ErrNoHeadBlock)
	}
	fm.head.Store(&headBlock{block: block, hash: block.Hash(), height: height})
}

func (fm *ForkManager) load() *headBlock {
	return fm.head.Load().(*headBlock)
}

// UpdateFork switch the head to the new block if it makes a longer fork. A fork with the same height never replaces
// the current one, so the first block reaching a height wins. Return true if the head changed, and whether the new
// head is on another fork
func (fm *ForkManager) UpdateFork(newBlock *types.Block, height uint32) (changed bool, switched bool) {
	oldHead := fm.load()
	if height <= oldHead.height {
		//   ┌─2 [oldHead]
		// 1─┴─3 [newBlock]
		return false, false
	}

	//   ┌─2 [oldHead]───4 [newBlock]
	// 1─┴─3
	// or
	//   ┌─2 [oldHead]
	// 1─┴─3───4 [newBlock]
	fm.SetHeadBlock(newBlock, height)
	return true, newBlock.ParentHash() != oldHead.hash
}

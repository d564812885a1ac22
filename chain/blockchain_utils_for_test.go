package chain

import (
	"errors"
	"sync"

	"github.com/LemoFoundationLtd/lemochain-store/chain/types"
	"github.com/LemoFoundationLtd/lemochain-store/common"
)

var errTestWrite = errors.New("disk is full")

func newTestBlockChain(policy OrphanPolicy) *BlockChain {
	return NewBlockChain(Config{OrphanPolicy: policy})
}

// newTestBlock creates a child of parent. Blocks with same parent and different nonce are different forks
func newTestBlock(parent *types.Block, nonce uint32) *types.Block {
	return newTestBlockWithTxs(parent, nonce, nil)
}

func newTestBlockWithTxs(parent *types.Block, nonce uint32, txs []*types.Transaction) *types.Block {
	header := &types.Header{
		ParentHash: parent.Hash(),
		Nonce:      nonce,
		Difficulty: parent.Header.Difficulty,
		Time:       parent.Time() + 1000,
		TxRoot:     types.DeriveTxsSha(txs),
	}
	return types.NewBlock(header, txs)
}

// makeTestChain creates count blocks after parent
func makeTestChain(parent *types.Block, count int, nonce uint32) []*types.Block {
	blocks := make([]*types.Block, count)
	for i := 0; i < count; i++ {
		parent = newTestBlock(parent, nonce)
		blocks[i] = parent
	}
	return blocks
}

func hashesOf(blocks []*types.Block) []common.Hash {
	result := make([]common.Hash, len(blocks))
	for i, b := range blocks {
		result[i] = b.Hash()
	}
	return result
}

type testStoredBlock struct {
	seq   uint64
	block *types.Block
}

// testBlockStore is a BlockStore in memory
type testBlockStore struct {
	lock     sync.Mutex
	blocks   []testStoredBlock
	genesis  *common.Hash
	writeErr error
	// failWrite makes the n-th call of WriteBlock fail when it is larger than 0
	failWrite int
	writes    int
}

func (s *testBlockStore) WriteBlock(seq uint64, block *types.Block) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes++
	if s.writes == s.failWrite {
		return errTestWrite
	}
	s.blocks = append(s.blocks, testStoredBlock{seq, block})
	return nil
}

func (s *testBlockStore) IterateBlocks(fn func(seq uint64, block *types.Block) error) error {
	s.lock.Lock()
	blocks := append([]testStoredBlock(nil), s.blocks...)
	s.lock.Unlock()
	for _, item := range blocks {
		if err := fn(item.seq, item.block); err != nil {
			return err
		}
	}
	return nil
}

func (s *testBlockStore) WriteGenesis(hash common.Hash) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.genesis = &hash
	return nil
}

func (s *testBlockStore) ReadGenesis() (common.Hash, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.genesis == nil {
		return common.Hash{}, false, nil
	}
	return *s.genesis, true, nil
}

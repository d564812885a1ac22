package chain

import (
	"fmt"
	"sync"
	"time"

	"github.com/LemoFoundationLtd/lemochain-store/chain/types"
	"github.com/LemoFoundationLtd/lemochain-store/common"
	"github.com/LemoFoundationLtd/lemochain-store/common/log"
	"github.com/LemoFoundationLtd/lemochain-store/metrics"
	"github.com/ethereum/go-ethereum/event"
)

var (
	blockInsertTimer    = metrics.NewTimer(metrics.BlockInsert_timerName)
	duplicateBlockMeter = metrics.NewMeter(metrics.DuplicateBlock_meterName)
	orphanBlockMeter    = metrics.NewMeter(metrics.OrphanBlock_meterName)
	orphanEvictMeter    = metrics.NewMeter(metrics.OrphanEvict_meterName)
	forkSwitchMeter     = metrics.NewMeter(metrics.ForkSwitch_meterName)
	tipHeightGauge      = metrics.NewGauge(metrics.TipHeight_gaugeName)
	blockCountGauge     = metrics.NewGauge(metrics.BlockCount_gaugeName)
	tipDropMeter        = metrics.NewMeter(metrics.TipDrop_meterName)
)

// tipEventBacklog is the count of tip events kept for a slow subscriber
const tipEventBacklog = 64

// BlockStore is the persistence which the chain writes every admitted block to
type BlockStore interface {
	// WriteBlock saves the block with its admission sequence number
	WriteBlock(seq uint64, block *types.Block) error
	// IterateBlocks visits the saved blocks by admission order
	IterateBlocks(fn func(seq uint64, block *types.Block) error) error
	WriteGenesis(hash common.Hash) error
	ReadGenesis() (common.Hash, bool, error)
}

// TipEvent is sent when the longest chain gets a new head
type TipEvent struct {
	Hash   common.Hash
	Height uint32
	// Reorg is true if the new head is not a child of the previous head
	Reorg bool
}

type BlockChain struct {
	cfg          Config
	genesisBlock *types.Block

	mu      sync.RWMutex
	blocks  map[common.Hash]*types.Block
	heights map[common.Hash]uint32
	orphans *orphanPool
	fm      *ForkManager
	db      BlockStore
	seq     uint64 // admission sequence of the last block

	sendMu  sync.Mutex // keeps tip events in order
	tipFeed event.Feed
	scope   event.SubscriptionScope
}

// NewBlockChain creates a chain which only contains the genesis block
func NewBlockChain(cfg Config) *BlockChain {
	genesis := cfg.genesis().ToBlock()
	hash := genesis.Hash()
	bc := &BlockChain{
		cfg:          cfg,
		genesisBlock: genesis,
		blocks:       map[common.Hash]*types.Block{hash: genesis},
		heights:      map[common.Hash]uint32{hash: 0},
		orphans:      newOrphanPool(cfg.maxOrphans()),
		fm:           NewForkManager(genesis),
	}
	log.Debug("BlockChain is ready", "genesis", hash.Prefix(), "orphanPolicy", cfg.OrphanPolicy)
	return bc
}

// LoadBlockChain creates a chain from the blocks saved in db, then keeps saving new blocks to it
func LoadBlockChain(cfg Config, db BlockStore) (*BlockChain, error) {
	bc := NewBlockChain(cfg)
	genesisHash := bc.genesisBlock.Hash()

	stored, ok, err := db.ReadGenesis()
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := db.WriteGenesis(genesisHash); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSaveBlock, err)
		}
	} else if stored != genesisHash {
		log.Errorf("Genesis block mismatch. local: %s, config: %s", stored.Prefix(), genesisHash.Prefix())
		return nil, ErrGenesisMismatch
	}

	err = db.IterateBlocks(func(seq uint64, block *types.Block) error {
		hash := block.Hash()
		if _, ok := bc.blocks[hash]; ok {
			return nil
		}
		parentHeight, ok := bc.heights[block.ParentHash()]
		if !ok {
			return fmt.Errorf("%w: parent of block %s at seq %d not found", ErrLoadBlock, hash.Prefix(), seq)
		}
		if _, err := bc.admit(hash, block, parentHeight+1); err != nil {
			return err
		}
		bc.seq = seq
		return nil
	})
	if err != nil {
		return nil, err
	}
	bc.db = db

	log.Info("BlockChain is loaded", "blocks", len(bc.blocks), "currentHeight", bc.CurrentHeight(), "currentHash", bc.Tip().Prefix())
	return bc, nil
}

func (bc *BlockChain) Genesis() *types.Block {
	return bc.genesisBlock
}

// Tip returns the hash of the last block on the longest chain
func (bc *BlockChain) Tip() common.Hash {
	return bc.fm.HeadHash()
}

// CurrentBlock get latest block on the longest chain
func (bc *BlockChain) CurrentBlock() *types.Block {
	return bc.fm.GetHeadBlock()
}

func (bc *BlockChain) CurrentHeight() uint32 {
	return bc.fm.HeadHeight()
}

func (bc *BlockChain) HasBlock(hash common.Hash) bool {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	_, ok := bc.blocks[hash]
	return ok
}

// GetBlockByHash returns nil if the block is not in chain. An orphan block is not in chain
func (bc *BlockChain) GetBlockByHash(hash common.Hash) *types.Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.blocks[hash]
}

func (bc *BlockChain) GetHeight(hash common.Hash) (uint32, bool) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	height, ok := bc.heights[hash]
	return height, ok
}

// BlockCount returns the count of blocks in chain, including genesis
func (bc *BlockChain) BlockCount() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return len(bc.blocks)
}

func (bc *BlockChain) IsOrphan(hash common.Hash) bool {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.orphans.Has(hash)
}

func (bc *BlockChain) OrphanCount() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.orphans.Len()
}

// AncestryOfLongestChain returns the hashes from the child of genesis to the tip. Genesis is excluded
func (bc *BlockChain) AncestryOfLongestChain() []common.Hash {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	head := bc.fm.load()
	result := make([]common.Hash, head.height)
	hash := head.hash
	for i := int(head.height) - 1; i >= 0; i-- {
		result[i] = hash
		hash = bc.blocks[hash].ParentHash()
	}
	return result
}

// SubscribeTip subscribes the changes of the longest chain's head. Events are delivered in order. A subscriber never
// blocks the insertion: if it falls behind by more than tipEventBacklog events, the oldest undelivered ones are dropped
func (bc *BlockChain) SubscribeTip(ch chan<- TipEvent) event.Subscription {
	relay := make(chan TipEvent)
	feedSub := bc.tipFeed.Subscribe(relay)
	sub := event.NewSubscription(func(quit <-chan struct{}) error {
		defer feedSub.Unsubscribe()
		var backlog []TipEvent
		for {
			var out chan<- TipEvent
			var next TipEvent
			if len(backlog) > 0 {
				out, next = ch, backlog[0]
			}
			select {
			case e := <-relay:
				if len(backlog) >= tipEventBacklog {
					tipDropMeter.Mark(1)
					log.Warn("Tip subscriber is too slow, drop the oldest event", "hash", backlog[0].Hash.Prefix())
					backlog = backlog[1:]
				}
				backlog = append(backlog, e)
			case out <- next:
				backlog = backlog[1:]
			case <-quit:
				return nil
			}
		}
	})
	return bc.scope.Track(sub)
}

// Stop unsubscribes all tip subscriptions
func (bc *BlockChain) Stop() {
	bc.scope.Close()
	log.Info("BlockChain stop")
}

// InsertBlock adds a block into chain. Inserting a known block only retries the buffered orphans which failed to be
// saved before. A block whose parent is unknown is buffered or rejected according to the orphan policy
func (bc *BlockChain) InsertBlock(block *types.Block) error {
	if block == nil || block.Header == nil {
		return ErrMalformedBlock
	}
	if !block.VerifyTxRoot() {
		log.Warn("Block's tx root mismatch", "hash", block.Hash().Prefix(), "txRoot", block.TxRoot().Prefix())
		return ErrMalformedBlock
	}
	defer blockInsertTimer.UpdateSince(time.Now())

	hash := block.Hash()
	bc.mu.Lock()
	events, err := bc.insertBlock(hash, block)
	// events are sent in the order the tip changed
	bc.sendMu.Lock()
	bc.mu.Unlock()
	for _, e := range events {
		bc.tipFeed.Send(e)
	}
	bc.sendMu.Unlock()
	return err
}

func (bc *BlockChain) insertBlock(hash common.Hash, block *types.Block) ([]TipEvent, error) {
	if _, ok := bc.blocks[hash]; ok {
		duplicateBlockMeter.Mark(1)
		log.Debug("Ignore duplicated block", "hash", hash.Prefix())
		// retry the orphans left by a failed resolution
		return bc.resolveOrphans(bc.orphans.ParentsIn(bc.heights)), nil
	}

	parentHeight, ok := bc.heights[block.ParentHash()]
	if !ok {
		if bc.orphans.Has(hash) {
			duplicateBlockMeter.Mark(1)
			log.Debug("Ignore duplicated orphan block", "hash", hash.Prefix())
			return nil, nil
		}
		orphanBlockMeter.Mark(1)
		if bc.cfg.OrphanPolicy == OrphanReject {
			log.Debug("Reject orphan block", "hash", hash.Prefix(), "parent", block.ParentHash().Prefix())
			return nil, ErrOrphanBlock
		}
		evicted := bc.orphans.Add(hash, block)
		log.Debug("Buffer orphan block", "hash", hash.Prefix(), "parent", block.ParentHash().Prefix(), "orphans", bc.orphans.Len())
		for _, b := range evicted {
			orphanEvictMeter.Mark(1)
			log.Warn("Orphan pool is full, drop the oldest block", "hash", b.Hash().Prefix())
		}
		return nil, nil
	}

	// a buffered orphan stays in pool until it is saved
	e, err := bc.admit(hash, block, parentHeight+1)
	if err != nil {
		return nil, err
	}
	bc.orphans.Remove(hash)
	var events []TipEvent
	if e != nil {
		events = append(events, *e)
	}
	return append(events, bc.resolveOrphans([]common.Hash{hash})...), nil
}

// resolveOrphans admits the orphans waiting for the parents, and then their children, breadth first. If an orphan
// fails to be saved, it and the rest stay in orphan pool, and are retried when a known block is inserted again
func (bc *BlockChain) resolveOrphans(parents []common.Hash) []TipEvent {
	var events []TipEvent
	queue := parents
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, child := range bc.orphans.Children(parent) {
			childHash := child.Hash()
			e, err := bc.admit(childHash, child, bc.heights[parent]+1)
			if err != nil {
				log.Error("Insert resolved orphan block fail, keep it in orphan pool", "hash", childHash.Prefix(), "err", err)
				return events
			}
			bc.orphans.Remove(childHash)
			if e != nil {
				events = append(events, *e)
			}
			queue = append(queue, childHash)
		}
	}
	return events
}

// admit save the block which parent is known and update the longest fork. It returns a TipEvent if the head changed
func (bc *BlockChain) admit(hash common.Hash, block *types.Block, height uint32) (*TipEvent, error) {
	if bc.db != nil {
		if err := bc.db.WriteBlock(bc.seq+1, block); err != nil {
			log.Errorf("Save block to db fail: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrSaveBlock, err)
		}
	}
	bc.seq++
	bc.blocks[hash] = block
	bc.heights[hash] = height
	blockCountGauge.Update(int64(len(bc.blocks)))
	log.Debug("Insert block", "height", height, "hash", hash.Prefix(), "parent", block.ParentHash().Prefix())

	oldHead := bc.fm.HeadHash()
	changed, switched := bc.fm.UpdateFork(block, height)
	if !changed {
		return nil, nil
	}
	tipHeightGauge.Update(int64(height))
	if switched {
		forkSwitchMeter.Mark(1)
		log.Info("Switch fork!", "oldHead", oldHead.Prefix(), "newHead", hash.Prefix(), "height", height)
		if bc.cfg.LogForks {
			log.Info("Current forks\n" + bc.serializeForks())
		}
	}
	return &TipEvent{Hash: hash, Height: height, Reorg: switched}, nil
}

// SerializeForks dumps the forks tree into string
func (bc *BlockChain) SerializeForks() string {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.serializeForks()
}

func (bc *BlockChain) serializeForks() string {
	return SerializeForks(bc.blocks, bc.heights, bc.fm.HeadHash())
}

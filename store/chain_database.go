package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/LemoFoundationLtd/lemochain-store/chain/types"
	"github.com/LemoFoundationLtd/lemochain-store/common"
	"github.com/LemoFoundationLtd/lemochain-store/common/log"
	"github.com/LemoFoundationLtd/lemochain-store/store/leveldb"
)

var (
	ErrSeqNotIncrease = errors.New("block seq must be larger than the last one")
	ErrDBClosed       = errors.New("database is closed")
)

const (
	dbCache   = 16
	dbHandles = 16
)

// ChainDB saves the blocks by their admission order, so that the chain can be rebuilt by replaying them
type ChainDB struct {
	lock    sync.Mutex
	db      *leveldb.LevelDBDatabase
	lastSeq uint64
	closed  bool
}

func NewChainDB(dir string) (*ChainDB, error) {
	db, err := leveldb.NewLevelDBDatabase(dir, dbCache, dbHandles)
	if err != nil {
		return nil, fmt.Errorf("open chain database fail: %w", err)
	}
	return newChainDB(db)
}

// NewMemChainDB creates a ChainDB which is lost after closed
func NewMemChainDB() *ChainDB {
	chainDB, err := newChainDB(leveldb.NewMemDatabase())
	if err != nil {
		panic(err)
	}
	return chainDB
}

func newChainDB(db *leveldb.LevelDBDatabase) (*ChainDB, error) {
	lastSeq, err := readNumber(db, leveldb.LastSeqKey)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("Open chain database", "path", db.Path(), "lastSeq", lastSeq)
	return &ChainDB{db: db, lastSeq: lastSeq}, nil
}

func readNumber(db leveldb.DatabaseReader, key []byte) (uint64, error) {
	val, err := db.Get(key)
	if err != nil || val == nil {
		return 0, err
	}
	return leveldb.DecodeNumber(val)
}

// Meter starts collecting the database metrics
func (c *ChainDB) Meter() {
	c.db.Meter()
}

// LastSeq returns the seq of the last written block. It is 0 if there is no block
func (c *ChainDB) LastSeq() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lastSeq
}

// WriteBlock saves block and the seq in one batch. The seq must be increasing
func (c *ChainDB) WriteBlock(seq uint64, block *types.Block) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return ErrDBClosed
	}
	if seq <= c.lastSeq {
		return ErrSeqNotIncrease
	}

	data, err := types.EncodeBlock(block)
	if err != nil {
		return err
	}
	batch := c.db.NewBatch()
	_ = batch.Put(leveldb.BlockKey(seq), data)
	_ = batch.Put(leveldb.LastSeqKey, leveldb.EncodeNumber(seq))
	if err := batch.Write(); err != nil {
		return err
	}
	c.lastSeq = seq
	return nil
}

// ReadBlock returns nil if the seq is not exist
func (c *ChainDB) ReadBlock(seq uint64) (*types.Block, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return nil, ErrDBClosed
	}
	data, err := c.db.Get(leveldb.BlockKey(seq))
	if err != nil || data == nil {
		return nil, err
	}
	return types.DecodeBlock(data)
}

// IterateBlocks visits all blocks by seq order. It stops at the first error returned by fn
func (c *ChainDB) IterateBlocks(fn func(seq uint64, block *types.Block) error) error {
	c.lock.Lock()
	if c.closed {
		c.lock.Unlock()
		return ErrDBClosed
	}
	it := c.db.NewIteratorWithPrefix(leveldb.BlockPrefix)
	c.lock.Unlock()
	defer it.Release()

	for it.Next() {
		seq, err := leveldb.SeqFromBlockKey(it.Key())
		if err != nil {
			return err
		}
		block, err := types.DecodeBlock(it.Value())
		if err != nil {
			return fmt.Errorf("decode block at seq %d fail: %w", seq, err)
		}
		if err := fn(seq, block); err != nil {
			return err
		}
	}
	return it.Error()
}

func (c *ChainDB) WriteGenesis(hash common.Hash) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return ErrDBClosed
	}
	return c.db.Put(leveldb.GenesisKey, hash.Bytes())
}

// ReadGenesis returns false if genesis has not been written
func (c *ChainDB) ReadGenesis() (common.Hash, bool, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return common.Hash{}, false, ErrDBClosed
	}
	val, err := c.db.Get(leveldb.GenesisKey)
	if err != nil || val == nil {
		return common.Hash{}, false, err
	}
	return common.BytesToHash(val), true, nil
}

func (c *ChainDB) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.db.Close()
}

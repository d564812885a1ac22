package node

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/LemoFoundationLtd/lemochain-store/chain"
	"github.com/LemoFoundationLtd/lemochain-store/common"
	"github.com/LemoFoundationLtd/lemochain-store/common/log"
	"github.com/LemoFoundationLtd/lemochain-store/metrics"
	"github.com/LemoFoundationLtd/lemochain-store/store"
)

var ErrNodeStopped = errors.New("node is already stopped")

// Node holds the chain and its database
type Node struct {
	config *NodeConfig
	db     *store.ChainDB
	chain  *chain.BlockChain

	stopOnce sync.Once
	quit     chan struct{}
}

// New opens the database in data directory and rebuilds the chain from it
func New(cfg *NodeConfig) (*Node, error) {
	db, err := store.NewChainDB(filepath.Join(cfg.DataDir, ChainDataDir))
	if err != nil {
		return nil, err
	}
	db.Meter()
	bc, err := chain.LoadBlockChain(cfg.Chain, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	n := &Node{
		config: cfg,
		db:     db,
		chain:  bc,
		quit:   make(chan struct{}),
	}
	if metrics.Enabled {
		go metrics.CollectProcessMetrics(3*time.Second, n.quit)
	}
	return n, nil
}

func (n *Node) Chain() *chain.BlockChain {
	return n.chain
}

func (n *Node) DB() *store.ChainDB {
	return n.db
}

func (n *Node) Stop() error {
	err := ErrNodeStopped
	n.stopOnce.Do(func() {
		close(n.quit)
		n.chain.Stop()
		if metrics.Enabled {
			metrics.LogModuleMetrics(metrics.ChainModule)
			metrics.LogModuleMetrics(metrics.LevelDBModule)
		}
		err = n.db.Close()
		log.Info("Node stopped", "dataDir", n.config.DataDir)
	})
	return err
}

// InitGenesis saves the genesis config into data directory. It fails if the database has another genesis block.
// The genesis file is written first, so the database never records a genesis which the file does not have
func InitGenesis(dataDir string, genesis *chain.Genesis) (common.Hash, error) {
	path := filepath.Join(dataDir, GenesisFileName)
	old, err := ioutil.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return common.Hash{}, err
	}
	if err := writeGenesis(dataDir, genesis); err != nil {
		return common.Hash{}, err
	}

	cfg := &NodeConfig{DataDir: dataDir, Chain: chain.Config{Genesis: genesis}}
	n, err := New(cfg)
	if err != nil {
		if old == nil {
			_ = os.Remove(path)
		} else if restoreErr := ioutil.WriteFile(path, old, 0644); restoreErr != nil {
			log.Error("Restore genesis file fail", "path", path, "err", restoreErr)
		}
		return common.Hash{}, err
	}
	defer n.Stop()
	return n.chain.Genesis().Hash(), nil
}

package node

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LemoFoundationLtd/lemochain-store/chain"
	"github.com/LemoFoundationLtd/lemochain-store/chain/types"
	"github.com/LemoFoundationLtd/lemochain-store/store"
	"github.com/stretchr/testify/assert"
)

func newChild(parent *types.Block, nonce uint32) *types.Block {
	header := &types.Header{
		ParentHash: parent.Hash(),
		Nonce:      nonce,
		Time:       parent.Time() + 1000,
		TxRoot:     types.DeriveTxsSha(nil),
	}
	return types.NewBlock(header, nil)
}

func TestNode_Reopen(t *testing.T) {
	cfg := &NodeConfig{DataDir: t.TempDir()}
	n, err := New(cfg)
	assert.NoError(t, err)
	b1 := newChild(n.Chain().Genesis(), 1)
	b2 := newChild(b1, 1)
	assert.NoError(t, n.Chain().InsertBlock(b1))
	assert.NoError(t, n.Chain().InsertBlock(b2))
	assert.NoError(t, n.Stop())
	assert.Equal(t, ErrNodeStopped, n.Stop())

	n, err = New(cfg)
	assert.NoError(t, err)
	defer n.Stop()
	assert.Equal(t, b2.Hash(), n.Chain().Tip())
	assert.Equal(t, uint32(2), n.Chain().CurrentHeight())
	assert.Equal(t, uint64(2), n.DB().LastSeq())
}

func TestInitGenesis(t *testing.T) {
	dir := t.TempDir()
	custom := chain.DefaultGenesisConfig()
	custom.ExtraData = []byte("custom")

	hash, err := InitGenesis(dir, custom)
	assert.NoError(t, err)
	assert.Equal(t, custom.ToBlock().Hash(), hash)
	saved, err := ReadGenesis(dir)
	assert.NoError(t, err)
	assert.Equal(t, hash, saved.ToBlock().Hash())

	// init again with same genesis is fine
	_, err = InitGenesis(dir, custom)
	assert.NoError(t, err)

	// the database already has another genesis
	_, err = InitGenesis(dir, chain.DefaultGenesisConfig())
	assert.Equal(t, chain.ErrGenesisMismatch, err)
	saved, err = ReadGenesis(dir)
	assert.NoError(t, err)
	assert.Equal(t, hash, saved.ToBlock().Hash())
}

func TestInitGenesis_WriteFileFail(t *testing.T) {
	dir := t.TempDir()
	// a directory takes the place of genesis file
	path := filepath.Join(dir, GenesisFileName)
	assert.NoError(t, os.MkdirAll(path, os.ModePerm))
	_, err := InitGenesis(dir, chain.DefaultGenesisConfig())
	assert.Error(t, err)

	// nothing is recorded in database
	db, err := store.NewChainDB(filepath.Join(dir, ChainDataDir))
	if err == nil {
		_, ok, readErr := db.ReadGenesis()
		assert.NoError(t, readErr)
		assert.False(t, ok)
		assert.NoError(t, db.Close())
	}

	assert.NoError(t, os.Remove(path))
	custom := chain.DefaultGenesisConfig()
	custom.ExtraData = []byte("custom")
	hash, err := InitGenesis(dir, custom)
	assert.NoError(t, err)
	assert.Equal(t, custom.ToBlock().Hash(), hash)
}

func TestInitGenesis_Mismatch_NoFile(t *testing.T) {
	dir := t.TempDir()
	n, err := New(&NodeConfig{DataDir: dir})
	assert.NoError(t, err)
	assert.NoError(t, n.Stop())

	custom := chain.DefaultGenesisConfig()
	custom.ExtraData = []byte("custom")
	_, err = InitGenesis(dir, custom)
	assert.Equal(t, chain.ErrGenesisMismatch, err)
	// the genesis file is removed, so the default genesis still works
	genesis, err := ReadGenesis(dir)
	assert.NoError(t, err)
	assert.Nil(t, genesis)
}

func TestFatalWriter(t *testing.T) {
	assert.NotNil(t, fatalWriter())
}

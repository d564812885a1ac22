package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LemoFoundationLtd/lemochain-store/chain"
	"github.com/LemoFoundationLtd/lemochain-store/main/node"
	"github.com/stretchr/testify/assert"
)

// run executes the app with data directory and returns the output
func run(t *testing.T, dataDir string, args ...string) (string, error) {
	var out bytes.Buffer
	app.Writer = &out
	fullArgs := append([]string{"lemostore", "--" + node.DataDirFlag.Name, dataDir, "--" + node.LogLevelFlag.Name, "0"}, args...)
	err := app.Run(fullArgs)
	return out.String(), err
}

func lastLines(t *testing.T, dataDir string, command string) []string {
	out, err := run(t, dataDir, command)
	assert.NoError(t, err)
	return strings.Split(strings.TrimSpace(out), "\n")
}

func TestGenerateExportImport(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	exportFile := filepath.Join(t.TempDir(), "blocks.rlp")

	_, err := run(t, srcDir, "generate", "--count", "30", "--forks", "3", "--txs", "1")
	assert.NoError(t, err)
	srcTip := lastLines(t, srcDir, "tip")
	assert.Contains(t, srcTip[2], "blocks: 31")

	out, err := run(t, srcDir, "export", exportFile)
	assert.NoError(t, err)
	assert.Contains(t, out, "exported 30 blocks")

	out, err = run(t, dstDir, "import", exportFile)
	assert.NoError(t, err)
	assert.Contains(t, out, "imported 30 blocks, skipped 0 blocks, orphans: 0")

	assert.Equal(t, srcTip, lastLines(t, dstDir, "tip"))
	assert.Equal(t, lastLines(t, srcDir, "ancestry"), lastLines(t, dstDir, "ancestry"))
	assert.Equal(t, lastLines(t, srcDir, "forks"), lastLines(t, dstDir, "forks"))

	// import again changes nothing
	out, err = run(t, dstDir, "import", exportFile)
	assert.NoError(t, err)
	assert.Equal(t, srcTip, lastLines(t, dstDir, "tip"))
}

func TestAncestryAndBlock(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "generate", "--count", "5")
	assert.NoError(t, err)

	ancestry := lastLines(t, dir, "ancestry")
	assert.Len(t, ancestry, 6)
	assert.Equal(t, chain.DefaultGenesisConfig().ToBlock().Hash().Hex(), ancestry[0])

	out, err := run(t, dir, "block", ancestry[5])
	assert.NoError(t, err)
	assert.Contains(t, out, "Block 5")
	assert.Contains(t, out, "Tx 1")

	_, err = run(t, dir, "block", "0x1234")
	assert.Equal(t, ErrInvalidHash, err)
	_, err = run(t, dir, "block", "0x5f30cc80133b9394156e24b233f0c4be32b24e44bb3381f02c7ba52619d0febc")
	assert.True(t, errors.Is(err, ErrBlockNotFound))
	_, err = run(t, dir, "block")
	assert.Equal(t, ErrNoBlockHash, err)
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	genesis := chain.DefaultGenesisConfig()
	genesis.ExtraData = []byte("test")
	genesisFile := filepath.Join(t.TempDir(), "genesis.json")
	assert.NoError(t, writeTestGenesis(genesisFile, genesis))

	out, err := run(t, dir, "init", genesisFile)
	assert.NoError(t, err)
	assert.Equal(t, genesis.ToBlock().Hash().Hex(), strings.TrimSpace(out))

	// following commands use the saved genesis
	ancestry := lastLines(t, dir, "ancestry")
	assert.Equal(t, []string{genesis.ToBlock().Hash().Hex()}, ancestry)

	_, err = run(t, dir, "init")
	assert.Equal(t, ErrNoGenesisFile, err)
}

func TestImportCommand_NoFile(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "import")
	assert.Equal(t, ErrNoFileName, err)
	_, err = run(t, dir, "import", filepath.Join(dir, "not_exist.rlp"))
	assert.Error(t, err)
	_, err = run(t, dir, "export")
	assert.Equal(t, ErrNoFileName, err)
}

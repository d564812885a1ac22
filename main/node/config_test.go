package node

import (
	goflag "flag"
	"path/filepath"
	"testing"

	"github.com/LemoFoundationLtd/lemochain-store/chain"
	"github.com/LemoFoundationLtd/lemochain-store/common/flag"
	"github.com/LemoFoundationLtd/lemochain-store/main/config"
	"github.com/stretchr/testify/assert"
	"gopkg.in/urfave/cli.v1"
)

func newTestFlags(t *testing.T, values map[string]string) flag.CmdFlags {
	flagSet := new(goflag.FlagSet)
	for _, f := range GlobalFlags {
		f.Apply(flagSet)
	}
	ctx := cli.NewContext(nil, flagSet, nil)
	for name, value := range values {
		assert.NoError(t, ctx.Set(name, value))
	}
	return flag.NewCmdFlags(ctx, GlobalFlags)
}

func intPtr(i int) *int {
	return &i
}

func TestMakeNodeConfig_Default(t *testing.T) {
	dir := t.TempDir()
	cfg, err := MakeNodeConfig(newTestFlags(t, map[string]string{DataDirFlag.Name: dir}))
	assert.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 3, cfg.LogLevel)
	assert.False(t, cfg.LogToFile)
	assert.Equal(t, chain.OrphanBuffer, cfg.Chain.OrphanPolicy)
	assert.Equal(t, chain.DefaultMaxOrphans, cfg.Chain.MaxOrphans)
	assert.False(t, cfg.Chain.LogForks)
	assert.Nil(t, cfg.Chain.Genesis)
}

func TestMakeNodeConfig_File(t *testing.T) {
	dir := t.TempDir()
	fileCfg := &config.ConfigFromFile{OrphanPolicy: "reject", MaxOrphans: 10, LogForks: true, LogLevel: intPtr(5)}
	assert.NoError(t, config.WriteConfigFile(config.FilePath(dir), fileCfg))

	cfg, err := MakeNodeConfig(newTestFlags(t, map[string]string{DataDirFlag.Name: dir}))
	assert.NoError(t, err)
	assert.Equal(t, chain.OrphanReject, cfg.Chain.OrphanPolicy)
	assert.Equal(t, 10, cfg.Chain.MaxOrphans)
	assert.True(t, cfg.Chain.LogForks)
	assert.Equal(t, 5, cfg.LogLevel)

	// command line flags override the file
	cfg, err = MakeNodeConfig(newTestFlags(t, map[string]string{
		DataDirFlag.Name:      dir,
		OrphanPolicyFlag.Name: "buffer",
		MaxOrphansFlag.Name:   "20",
		LogLevelFlag.Name:     "1",
	}))
	assert.NoError(t, err)
	assert.Equal(t, chain.OrphanBuffer, cfg.Chain.OrphanPolicy)
	assert.Equal(t, 20, cfg.Chain.MaxOrphans)
	assert.Equal(t, 1, cfg.LogLevel)
}

func TestMakeNodeConfig_ConfigFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(t.TempDir(), "custom.json")

	_, err := MakeNodeConfig(newTestFlags(t, map[string]string{DataDirFlag.Name: dir, ConfigFileFlag.Name: path}))
	assert.Error(t, err)

	assert.NoError(t, config.WriteConfigFile(path, &config.ConfigFromFile{MaxOrphans: 7}))
	cfg, err := MakeNodeConfig(newTestFlags(t, map[string]string{DataDirFlag.Name: dir, ConfigFileFlag.Name: path}))
	assert.NoError(t, err)
	assert.Equal(t, 7, cfg.Chain.MaxOrphans)
}

func TestMakeNodeConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	_, err := MakeNodeConfig(newTestFlags(t, map[string]string{DataDirFlag.Name: dir, OrphanPolicyFlag.Name: "drop"}))
	assert.Error(t, err)

	assert.NoError(t, config.WriteConfigFile(config.FilePath(dir), &config.ConfigFromFile{MaxOrphans: -1}))
	_, err = MakeNodeConfig(newTestFlags(t, map[string]string{DataDirFlag.Name: dir}))
	assert.Equal(t, config.ErrMaxOrphansConfig, err)
}

func TestReadGenesis(t *testing.T) {
	dir := t.TempDir()
	genesis, err := ReadGenesis(dir)
	assert.NoError(t, err)
	assert.Nil(t, genesis)

	custom := chain.DefaultGenesisConfig()
	custom.ExtraData = []byte("custom")
	assert.NoError(t, writeGenesis(dir, custom))
	genesis, err = ReadGenesis(dir)
	assert.NoError(t, err)
	assert.Equal(t, custom.ToBlock().Hash(), genesis.ToBlock().Hash())

	cfg, err := MakeNodeConfig(newTestFlags(t, map[string]string{DataDirFlag.Name: dir}))
	assert.NoError(t, err)
	assert.Equal(t, custom.ToBlock().Hash(), cfg.Chain.Genesis.ToBlock().Hash())
}

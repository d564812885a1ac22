package main

import (
	"errors"

	"github.com/LemoFoundationLtd/lemochain-store/chain"
	"github.com/LemoFoundationLtd/lemochain-store/common/log"
	"github.com/LemoFoundationLtd/lemochain-store/main/node"
	"gopkg.in/urfave/cli.v1"
)

var (
	initCommand = cli.Command{
		Action:    initGenesis,
		Name:      "init",
		Usage:     "Bootstrap and initialize a new genesis block",
		ArgsUsage: "<genesisPath>",
		Category:  "BLOCKCHAIN COMMANDS",
		Description: `
The init command initializes a new genesis block.

It expects the genesis file as argument.`,
	}
)

var ErrNoGenesisFile = errors.New("must supply genesis json file path")

// initGenesis 初始化创始块action
func initGenesis(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	node.SetupLog(cfg)

	genesisFile := ctx.Args().First()
	if len(genesisFile) == 0 {
		return ErrNoGenesisFile
	}
	genesis, err := chain.LoadGenesisFile(genesisFile)
	if err != nil {
		return err
	}
	hash, err := node.InitGenesis(cfg.DataDir, genesis)
	if err != nil {
		return err
	}
	log.Infof("init genesis succeed. hash: %s", hash.Hex())
	printf(ctx, "%s\n", hash.Hex())
	return nil
}

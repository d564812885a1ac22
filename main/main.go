package main

import (
	"os"
	"runtime"
	"sort"

	"github.com/LemoFoundationLtd/lemochain-store/main/node"
	"gopkg.in/urfave/cli.v1"
)

var app = node.NewApp("the lemochain-store command line interface")

func init() {
	app.HideVersion = true
	app.Copyright = "Copyright 2017-2018 The Lemochain Authors"
	app.Commands = []cli.Command{
		initCommand,
		generateCommand,
		importCommand,
		exportCommand,
		tipCommand,
		ancestryCommand,
		forksCommand,
		blockCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))
	app.Flags = append(app.Flags, node.GlobalFlags...)

	app.Before = func(ctx *cli.Context) error {
		runtime.GOMAXPROCS(runtime.NumCPU())
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		node.Fatalf("%v", err)
	}
}

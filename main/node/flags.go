package node

import (
	"os"
	"path/filepath"

	"github.com/LemoFoundationLtd/lemochain-store/chain"
	"github.com/LemoFoundationLtd/lemochain-store/common"
	"github.com/LemoFoundationLtd/lemochain-store/metrics"
	"gopkg.in/urfave/cli.v1"
)

const Version = "1.0.0"

func NewApp(usage string) *cli.App {
	app := cli.NewApp()
	app.Name = filepath.Base(os.Args[0])
	app.Version = Version
	app.Usage = usage
	return app
}

var (
	DataDirFlag = cli.StringFlag{
		Name:  common.DataDir,
		Usage: "Data directory for the databases",
		Value: DefaultDataDir(),
	}
	ConfigFileFlag = cli.StringFlag{
		Name:  common.ConfigFile,
		Usage: "Json config file. Default is config.json in data directory",
	}
	LogLevelFlag = cli.IntFlag{
		Name:  common.LogLevel,
		Usage: "output log level. 0 is silent, 5 is debug",
		Value: 3,
	}
	LogFileFlag = cli.BoolFlag{
		Name:  common.LogFile,
		Usage: "Write logs to file in data directory",
	}
	MetricsEnabledFlag = cli.BoolFlag{
		Name:  metrics.MetricsEnabledFlag,
		Usage: "Enable metrics collection and reporting",
	}
	OrphanPolicyFlag = cli.StringFlag{
		Name:  common.OrphanPolicy,
		Usage: `What to do with blocks whose parent is unknown. "buffer" or "reject"`,
		Value: "buffer",
	}
	MaxOrphansFlag = cli.IntFlag{
		Name:  common.MaxOrphans,
		Usage: "Maximum number of buffered orphan blocks",
		Value: chain.DefaultMaxOrphans,
	}
	LogForksFlag = cli.BoolFlag{
		Name:  common.LogForks,
		Usage: "Print the forks tree when the longest chain is switched",
	}
)

// GlobalFlags are accepted by all commands
var GlobalFlags = []cli.Flag{
	DataDirFlag,
	ConfigFileFlag,
	LogLevelFlag,
	LogFileFlag,
	MetricsEnabledFlag,
	OrphanPolicyFlag,
	MaxOrphansFlag,
	LogForksFlag,
}

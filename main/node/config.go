package node

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/LemoFoundationLtd/lemochain-store/chain"
	"github.com/LemoFoundationLtd/lemochain-store/common/flag"
	"github.com/LemoFoundationLtd/lemochain-store/common/log"
	"github.com/LemoFoundationLtd/lemochain-store/main/config"
)

type NodeConfig struct {
	DataDir   string
	LogLevel  int
	LogToFile bool
	Chain     chain.Config
}

// MakeNodeConfig resolves the config from config file and command line flags. The flags set by user override the file
func MakeNodeConfig(flags flag.CmdFlags) (*NodeConfig, error) {
	cfg := &NodeConfig{
		DataDir:   flags.String(DataDirFlag.Name),
		LogLevel:  flags.Int(LogLevelFlag.Name),
		LogToFile: flags.Bool(LogFileFlag.Name),
	}

	configPath := config.FilePath(cfg.DataDir)
	if flags.IsSet(ConfigFileFlag.Name) {
		configPath = flags.String(ConfigFileFlag.Name)
	}
	fileCfg, err := config.ReadConfigFile(configPath)
	if err != nil {
		return nil, err
	}
	if fileCfg == nil && flags.IsSet(ConfigFileFlag.Name) {
		return nil, fmt.Errorf("config file %s is not exist", configPath)
	}
	if fileCfg == nil {
		fileCfg = &config.ConfigFromFile{}
	}

	policyStr := fileCfg.OrphanPolicy
	if flags.IsSet(OrphanPolicyFlag.Name) {
		policyStr = flags.String(OrphanPolicyFlag.Name)
	}
	if cfg.Chain.OrphanPolicy, err = chain.ParseOrphanPolicy(policyStr); err != nil {
		return nil, err
	}
	cfg.Chain.MaxOrphans = fileCfg.MaxOrphans
	if flags.IsSet(MaxOrphansFlag.Name) || cfg.Chain.MaxOrphans == 0 {
		cfg.Chain.MaxOrphans = flags.Int(MaxOrphansFlag.Name)
	}
	cfg.Chain.LogForks = fileCfg.LogForks || flags.Bool(LogForksFlag.Name)
	if fileCfg.LogLevel != nil && !flags.IsSet(LogLevelFlag.Name) {
		cfg.LogLevel = *fileCfg.LogLevel
	}

	if cfg.Chain.Genesis, err = ReadGenesis(cfg.DataDir); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLog init the log with config
func SetupLog(cfg *NodeConfig) {
	if cfg.LogToFile {
		log.SetLogDir(filepath.Join(cfg.DataDir, LogDir))
	}
	log.Setup(log.LevelFromInt(cfg.LogLevel), cfg.LogToFile, cfg.LogLevel >= 5)
}

// ReadGenesis loads the genesis saved by init command. It returns nil if there is no such file
func ReadGenesis(dataDir string) (*chain.Genesis, error) {
	path := filepath.Join(dataDir, GenesisFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return chain.LoadGenesisFile(path)
}

func writeGenesis(dataDir string, genesis *chain.Genesis) error {
	content, err := json.MarshalIndent(genesis, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, os.ModePerm); err != nil {
		return err
	}
	return ioutil.WriteFile(filepath.Join(dataDir, GenesisFileName), content, 0644)
}

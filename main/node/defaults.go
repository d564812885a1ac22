package node

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
)

const (
	ChainDataDir    = "chaindata"
	GenesisFileName = "genesis.json"
	LogDir          = "log"
)

func DefaultDataDir() string {
	home := homeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "MiniChain")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "MiniChain")
		}
		return filepath.Join(home, ".minichain")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

package config

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/LemoFoundationLtd/lemochain-store/chain"
)

const JsonFileName = "config.json"

const ConfigGuideUrl = "Please visit https://github.com/LemoFoundationLtd/lemochain-store#configuration-file for detail"

// MaxOrphansLimit is the largest orphan pool size which can be configured
const MaxOrphansLimit = 100000

var (
	ErrConfig             = errors.New(`config file format error. ` + ConfigGuideUrl)
	ErrOrphanPolicyConfig = errors.New(`config file content error: orphanPolicy must be "buffer" or "reject"`)
	ErrMaxOrphansConfig   = errors.New("config file content error: maxOrphans must be in [0, 100000]")
	ErrLogLevelConfig     = errors.New("config file content error: logLevel must be in [0, 5]")
)

type ConfigFromFile struct {
	OrphanPolicy string `json:"orphanPolicy"`
	MaxOrphans   int    `json:"maxOrphans"`
	LogForks     bool   `json:"logForks"`
	LogLevel     *int   `json:"logLevel,omitempty"`
}

// FilePath returns the default config file path in data directory
func FilePath(dir string) string {
	return filepath.Join(dir, JsonFileName)
}

func WriteConfigFile(filePath string, cfg *ConfigFromFile) error {
	result, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return err
	}
	return ioutil.WriteFile(filePath, result, 0644)
}

// ReadConfigFile returns nil config without error if the file is not exist
func ReadConfigFile(filePath string) (*ConfigFromFile, error) {
	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New(err.Error() + "\r\n" + ConfigGuideUrl)
	}
	defer file.Close()

	var config ConfigFromFile
	if err = json.NewDecoder(file).Decode(&config); err != nil {
		return nil, ErrConfig
	}
	if err := config.Check(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *ConfigFromFile) Check() error {
	if _, err := chain.ParseOrphanPolicy(c.OrphanPolicy); err != nil {
		return ErrOrphanPolicyConfig
	}
	if c.MaxOrphans < 0 || c.MaxOrphans > MaxOrphansLimit {
		return ErrMaxOrphansConfig
	}
	if c.LogLevel != nil && (*c.LogLevel < 0 || *c.LogLevel > 5) {
		return ErrLogLevelConfig
	}
	return nil
}

package log

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWarn(t *testing.T) {
	Setup(LevelWarn, false, false)
	Debug("should be invisible")
	Info("should be invisible")
	Warn("汉字")
	Error("👽🚀")

	Setup(LevelDebug, false, false)
	Debug("debug level visible")
	Info("info level visible")

	Setup(LevelDebug, false, true)
	Debug("show code line")
	Info("show code line")

	Setup(LevelInfo, false, false)
}

func TestLevelFromInt(t *testing.T) {
	assert.Equal(t, LevelCrit, LevelFromInt(-3))
	assert.Equal(t, LevelCrit, LevelFromInt(0))
	assert.Equal(t, LevelCrit, LevelFromInt(1))
	assert.Equal(t, LevelError, LevelFromInt(2))
	assert.Equal(t, LevelInfo, LevelFromInt(4))
	assert.Equal(t, LevelDebug, LevelFromInt(5))
	assert.Equal(t, LevelDebug, LevelFromInt(9))
}

func TestRotateLogFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "logtest")
	assert.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, logFileName)
	assert.NoError(t, ioutil.WriteFile(path, []byte("latest"), 0644))
	assert.NoError(t, ioutil.WriteFile(filepath.Join(dir, fmt.Sprintf("%s_1.log", fPrefix)), []byte("older"), 0644))

	rotateLogFile(path)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	data, err := ioutil.ReadFile(filepath.Join(dir, fmt.Sprintf("%s_1.log", fPrefix)))
	assert.NoError(t, err)
	assert.Equal(t, "latest", string(data))
	data, err = ioutil.ReadFile(filepath.Join(dir, fmt.Sprintf("%s_2.log", fPrefix)))
	assert.NoError(t, err)
	assert.Equal(t, "older", string(data))
}

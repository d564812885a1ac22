package log

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/inconshreveable/log15"
)

const (
	logFileName   = "lemostore.log" // 最新日志存储文件
	fPrefix       = "lemostore"
	RotateLogSize = 64 * 1024 * 1024 // 64M
	BackUpCount   = 19               // 滚动日志文件数
)

var (
	logFilePath = filepath.Join("log", logFileName) // 日志文件路径
)

// SetLogDir changes the directory of log files. It takes effect on next Setup
func SetLogDir(dir string) {
	logFilePath = filepath.Join(dir, logFileName)
}

// openLogFile creates the log directory if it is not exist, then open the log file for appending
func openLogFile(logFilePath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(logFilePath), os.ModePerm); err != nil {
		return nil, err
	}
	return os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

// FileHandler 写入文件handler
func FileHandler(logFilePath string, fmtr log15.Format) log15.Handler {
	f, err := openLogFile(logFilePath)
	if err != nil {
		panic(err)
	}
	return WriteFileHandler(logFilePath, f, fmtr)
}

// listenAndRotateLog returns a new file handle if the current file is rotated
func listenAndRotateLog(logFilePath string, f *os.File) *os.File {
	if info, err := f.Stat(); err == nil {
		if info.Size() >= RotateLogSize {
			f.Close()
			rotateLogFile(logFilePath)
			// 重新打开log文件句柄
			f, err = openLogFile(logFilePath)
			if err != nil {
				panic(err)
			}
			return f
		}
	}
	return f
}

func WriteFileHandler(logFilePath string, f *os.File, fmtr log15.Format) log15.Handler {
	h := log15.FuncHandler(func(r *log15.Record) error {
		f = listenAndRotateLog(logFilePath, f)
		_, err := f.Write(fmtr.Format(r))
		return err
	})
	return log15.LazyHandler(log15.BufferedHandler(20480, h))
}

// rotateLogFile 滚动日志文件. lemostore.log -> lemostore_1.log -> ... -> lemostore_19.log
func rotateLogFile(logFilePath string) {
	logDir := filepath.Dir(logFilePath)
	for j := BackUpCount; j >= 1; j-- {
		curFileName := filepath.Join(logDir, fmt.Sprintf("%s_%d.log", fPrefix, j))
		k := j - 1
		preFileName := filepath.Join(logDir, fmt.Sprintf("%s_%d.log", fPrefix, k))

		if k == 0 {
			preFileName = logFilePath
		}
		if _, err := os.Stat(curFileName); err == nil {
			os.Remove(curFileName)
		}
		if _, err := os.Stat(preFileName); err == nil {
			os.Rename(preFileName, curFileName)
		}
	}
}

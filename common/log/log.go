package log

import (
	"fmt"
	"io"
	"os"

	"github.com/inconshreveable/log15"
	"github.com/inconshreveable/log15/term"
	"github.com/mattn/go-colorable"
)

var srvLog = log15.New()

const (
	LevelCrit  = log15.LvlCrit
	LevelError = log15.LvlError
	LevelWarn  = log15.LvlWarn
	LevelInfo  = log15.LvlInfo
	LevelDebug = log15.LvlDebug
)

func init() {
	Setup(LevelInfo, false, false)
}

// Setup change the log config immediately
// The lv is higher the more logs would be visible
func Setup(lv log15.Lvl, toFile bool, showCodeLine bool) {
	useColor := term.IsTty(os.Stdout.Fd()) && os.Getenv("TERM") != "dumb"
	output := io.Writer(os.Stderr)
	if useColor {
		output = colorable.NewColorableStderr()
	}
	handler := log15.StreamHandler(output, log15.TerminalFormat())
	if toFile {
		handler = log15.MultiHandler(
			handler,
			FileHandler(logFilePath, log15.JsonFormat()),
		)
	}
	if showCodeLine {
		handler = log15.CallerFileHandler(handler)
	}
	srvLog.SetHandler(log15.LvlFilterHandler(lv, handler))
}

// LevelFromInt converts the command line verbosity to log level. 0 means silent except critical logs, 5 means debug
func LevelFromInt(verbosity int) log15.Lvl {
	lv := log15.Lvl(verbosity - 1)
	if lv < LevelCrit {
		return LevelCrit
	}
	if lv > LevelDebug {
		return LevelDebug
	}
	return lv
}

func Debug(msg string, ctx ...interface{}) {
	srvLog.Debug(msg, ctx...)
}

func Info(msg string, ctx ...interface{}) {
	srvLog.Info(msg, ctx...)
}

func Infof(format string, values ...interface{}) {
	msg := fmt.Sprintf(format, values...)
	srvLog.Info(msg)
}

func Warn(msg string, ctx ...interface{}) {
	srvLog.Warn(msg, ctx...)
}

func Warnf(format string, values ...interface{}) {
	msg := fmt.Sprintf(format, values...)
	srvLog.Warn(msg)
}

func Error(msg string, ctx ...interface{}) {
	srvLog.Error(msg, ctx...)
}

func Errorf(format string, values ...interface{}) {
	msg := fmt.Sprintf(format, values...)
	srvLog.Error(msg)
}

func Crit(msg string, ctx ...interface{}) {
	srvLog.Crit(msg, ctx...)
	os.Exit(1)
}

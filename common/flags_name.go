package common

const (
	DataDir      = "datadir"
	ConfigFile   = "config"
	LogLevel     = "loglevel"
	LogFile      = "logfile"
	Metrics      = "metrics"
	OrphanPolicy = "orphanpolicy"
	MaxOrphans   = "maxorphans"
	LogForks     = "logforks"
)

// Package metrics provides general system and process level metrics collection.
package metrics

import (
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/LemoFoundationLtd/lemochain-store/common/log"
	"github.com/rcrowley/go-metrics"
)

// MetricsEnabledFlag is the CLI flag name to use to enable metrics collections.
var MetricsEnabledFlag = "metrics"

// Enabled is the flag specifying if metrics are enable or not.
var Enabled = false

// Init enables or disables the metrics system. Since we need this to run before
// any other code gets to create meters and timers, we'll actually do an ugly hack
// and peek into the command line args for the metrics flag.
func init() {
	for _, arg := range os.Args {
		if strings.TrimLeft(arg, "-") == MetricsEnabledFlag {
			log.Info("Enabling metrics collection")
			Enabled = true
		}
	}
}

// NewGauge create a new metrics Gauge, either a real one of a NOP stub depending
// on the metrics flag.
func NewGauge(name string) metrics.Gauge {
	if !Enabled {
		return new(metrics.NilGauge)
	}
	return metrics.GetOrRegisterGauge(name, metrics.DefaultRegistry)
}

// NewCounter create a new metrics Counter, either a real one of a NOP stub depending
// on the metrics flag.
func NewCounter(name string) metrics.Counter {
	if !Enabled {
		return new(metrics.NilCounter)
	}
	return metrics.GetOrRegisterCounter(name, metrics.DefaultRegistry)
}

// NewMeter create a new metrics Meter, either a real one of a NOP stub depending
// on the metrics flag.
func NewMeter(name string) metrics.Meter {
	if !Enabled {
		return new(metrics.NilMeter)
	}
	return metrics.GetOrRegisterMeter(name, metrics.DefaultRegistry)
}

// NewTimer create a new metrics Timer, either a real one of a NOP stub depending
// on the metrics flag.
func NewTimer(name string) metrics.Timer {
	if !Enabled {
		return new(metrics.NilTimer)
	}
	return metrics.GetOrRegisterTimer(name, metrics.DefaultRegistry)
}

// CollectProcessMetrics periodically collects memory metrics about the running
// process until the quit channel is closed.
func CollectProcessMetrics(refresh time.Duration, quit <-chan struct{}) {
	// Short circuit if the metrics system is disabled
	if !Enabled {
		return
	}
	memstats := make([]*runtime.MemStats, 2)
	for i := 0; i < len(memstats); i++ {
		memstats[i] = new(runtime.MemStats)
	}
	memAllocs := metrics.GetOrRegisterMeter(System_memory_allocs, metrics.DefaultRegistry)
	memFrees := metrics.GetOrRegisterMeter(System_memory_frees, metrics.DefaultRegistry)
	memInuse := metrics.GetOrRegisterMeter(System_memory_inuse, metrics.DefaultRegistry)
	memPauses := metrics.GetOrRegisterMeter(System_memory_pauses, metrics.DefaultRegistry)

	ticker := time.NewTicker(refresh)
	defer ticker.Stop()
	runtime.ReadMemStats(memstats[0])
	for i := 1; ; i++ {
		select {
		case <-quit:
			return
		case <-ticker.C:
		}
		runtime.ReadMemStats(memstats[i%2])
		memAllocs.Mark(int64(memstats[i%2].Mallocs - memstats[(i-1)%2].Mallocs))
		memFrees.Mark(int64(memstats[i%2].Frees - memstats[(i-1)%2].Frees))
		memInuse.Mark(int64(memstats[i%2].Alloc) - int64(memstats[(i-1)%2].Alloc))
		memPauses.Mark(int64(memstats[i%2].PauseTotalNs - memstats[(i-1)%2].PauseTotalNs))
	}
}

// LogModuleMetrics 将指定模块的统计数据写入日志
func LogModuleMetrics(moduleName string) {
	du := float64(time.Millisecond)
	m := GetModuleMetrics(moduleName)
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		switch metric := m[name].(type) {
		case metrics.Gauge:
			log.Info("gauge", "name", name, "value", metric.Value())
		case metrics.Counter:
			log.Info("counter", "name", name, "count", metric.Count())
		case metrics.Meter:
			s := metric.Snapshot()
			log.Info("meter", "name", name, "count", s.Count(), "meanRate", s.RateMean())
		case metrics.Timer:
			s := metric.Snapshot()
			log.Info("timer", "name", name, "count", s.Count(), "meanMs", s.Mean()/du, "maxMs", float64(s.Max())/du, "p99Ms", s.Percentile(0.99)/du)
		}
	}
}

// GetModuleMetrics 返回指定模块的的metrics
func GetModuleMetrics(moduleName string) map[string]interface{} {
	m := make(map[string]interface{})
	metrics.DefaultRegistry.Each(func(name string, i interface{}) {
		if strings.HasPrefix(name, moduleName) {
			m[name] = i
		}
	})
	return m
}

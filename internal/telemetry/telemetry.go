// Package telemetry exposes fire-and-forget operation counters through the
// standard expvar surface at /debug/vars.
package telemetry

import (
	"expvar"
	"sync"
)

var (
	once     sync.Once
	counters *expvar.Map
)

// Increment bumps a named counter by one. Safe for concurrent use; never
// blocks the caller on anything.
func Increment(name string) {
	once.Do(func() {
		counters = expvar.NewMap("draftforge_counters")
	})
	counters.Add(name, 1)
}

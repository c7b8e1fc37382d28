package health

import "sync/atomic"

var ready atomic.Bool

func init() {
	ready.Store(true)
}

// SetReady flips the process-level readiness gate. Graceful shutdown sets
// it to false so load balancers drain the instance before connections
// close.
func SetReady(v bool) {
	ready.Store(v)
}

// IsReady reports the process-level readiness gate.
func IsReady() bool {
	return ready.Load()
}

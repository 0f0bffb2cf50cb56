package otel

import (
	"os"
	"sync/atomic"
)

// traceEnabled gates per-input UI events, which are too chatty for normal runs.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("SHORTFEED_TRACE") != "")
}

// TraceEnabled reports whether SHORTFEED_TRACE is set.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// SetTraceEnabled overrides the trace flag (the --trace CLI flag).
func SetTraceEnabled(v bool) {
	traceEnabled.Store(v)
}

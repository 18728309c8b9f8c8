// Package alloctrack reports array buffer allocations and releases for
// diagnostics.
//
// The tracker is advisory: it never affects computed values and is disabled
// by default, in which case every call is a no-op costing a single atomic
// load. Records are emitted at Debug severity, the lowest level the logger
// offers.
package alloctrack

import (
	"log/slog"
	"sync/atomic"
)

var (
	seq    atomic.Uint64
	logger atomic.Pointer[slog.Logger]
)

// Enable routes allocation records to l.
func Enable(l *slog.Logger) {
	logger.Store(l)
}

// Disable turns tracking back off.
func Disable() {
	logger.Store(nil)
}

// Enabled reports whether a sink is installed.
func Enabled() bool {
	return logger.Load() != nil
}

// Alloc records a buffer allocation of size elements and returns the record's
// sequence id. Returns 0 when tracking is disabled.
func Alloc(size int) uint64 {
	l := logger.Load()
	if l == nil {
		return 0
	}
	id := seq.Add(1)
	l.Debug("alloc", "seq", id, "size", size)
	return id
}

// Free records the release of a buffer previously reported by Alloc.
// allocSeq is the id Alloc returned; a zero id (allocated while tracking was
// off) is ignored.
func Free(allocSeq uint64, size int) {
	l := logger.Load()
	if l == nil || allocSeq == 0 {
		return
	}
	id := seq.Add(1)
	l.Debug("dealloc", "seq", id, "buf", allocSeq, "size", size)
}

package buffer

import (
	"sync/atomic"

	"github.com/golang/snappy"
)

// logRecorder is the minimal stand-in for spec.md's "log manager": it is
// accepted as a dependency and given every page's bytes as the page is
// flushed, before they are written to disk, exactly like the teacher's wal.LogManager.AppendLog
// + Flush two-step, but it never replays anything — there is no WAL
// semantics or crash recovery in this core (see spec.md Non-goals). Its
// only job here is to compress the page image with snappy, the same
// library the teacher's own WAL already depends on, and hand back a
// monotonically increasing sequence number.
type logRecorder struct {
	seq int64
}

func newLogRecorder() *logRecorder {
	return &logRecorder{}
}

// record compresses data and returns the next log sequence number. The
// compressed bytes are discarded — there is nothing to replay them into —
// but compressing is what exercises the dependency and mirrors the
// teacher's real WAL record codec (disk/wal/bwal_log_serde.go).
func (l *logRecorder) record(data []byte) int64 {
	_ = snappy.Encode(nil, data)
	return atomic.AddInt64(&l.seq, 1)
}

// flushed returns the last sequence number recorded, analogous to the
// teacher's LogManager.GetFlushedLSN.
func (l *logRecorder) flushed() int64 {
	return atomic.LoadInt64(&l.seq)
}

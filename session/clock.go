package session

import "time"

// Clock supplies monotonic wall-clock microseconds for receive/execute
// timestamps. Purely informational: the engine never branches on time.
type Clock interface {
	NowMicros() int64
}

// SystemClock is the default Clock, backed by time.Now.
type SystemClock struct{}

// NowMicros returns the current wall-clock time in microseconds.
func (SystemClock) NowMicros() int64 { return time.Now().UnixMicro() }

package node

import "time"

// now is overridable in tests for deterministic hardware chart timestamps.
var now = func() time.Time { return time.Now() }

func timeNowMillis() int64 {
	return now().UnixMilli()
}

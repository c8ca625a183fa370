package aggregator

import "errors"

// ErrShardGone is returned when a request cannot be delivered because the
// shard's event loop has already terminated.
var ErrShardGone = errors.New("aggregator shard is gone")

// ErrSinkClosed is returned by a feed or fan-out send once its destination
// has stopped accepting messages.
var ErrSinkClosed = errors.New("sink closed")

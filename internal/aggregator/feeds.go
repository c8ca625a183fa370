package aggregator

import (
	"context"

	"github.com/availproject/substrate-telemetry-core/internal/node"
	"github.com/availproject/substrate-telemetry-core/internal/telemetrymsg"
)

// feedCommandBuffer bounds the per-feed inbound command channel returned by
// SubscribeFeed.
const feedCommandBuffer = 16

// SubscribeFeed registers a feed with the shard. output receives diffs for
// whatever chains the feed subscribes to via the returned command channel.
//
// This mirrors the original's subscribe_feed, whose returned sink is for the
// caller to push incoming FromFeedWebsocket commands into — not an outbound
// diff channel. The outbound side here is the caller-supplied FeedSink
// (output); a per-subscription adapter goroutine drains the returned command
// channel and forwards each command into the shard's single-writer loop, so
// subscribe/unsubscribe/ping are all applied without any lock in Shard's
// state.
func (s *Shard) SubscribeFeed(ctx context.Context, output FeedSink) (uint64, chan<- telemetrymsg.FromFeed, error) {
	resp := make(chan subscribeFeedResponse, 1)
	select {
	case s.subFeedReq <- subscribeFeedRequest{output: output, resp: resp}:
	case <-s.done:
		return 0, nil, ErrShardGone
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}

	select {
	case r := <-resp:
		return r.id, r.input, nil
	case <-s.done:
		return 0, nil, ErrShardGone
	}
}

// UnsubscribeFeed tears down a feed's registration. Safe to call more than
// once; safe to call after the shard has already stopped.
func (s *Shard) UnsubscribeFeed(id uint64) {
	select {
	case s.unregFeed <- unregisterFeedRequest{id: id}:
	case <-s.done:
	}
}

func (s *Shard) handleSubscribeFeed(output FeedSink) subscribeFeedResponse {
	s.nextFeedID++
	id := s.nextFeedID

	sub := &feedSubscription{output: output, chains: make(map[node.GenesisHash]bool)}
	s.feeds[id] = sub

	cmd := make(chan telemetrymsg.FromFeed, feedCommandBuffer)
	go s.adaptFeedCommands(id, cmd)

	return subscribeFeedResponse{id: id, input: cmd}
}

// adaptFeedCommands forwards commands a feed sends on cmd into the shard's
// feedEvents channel, tagged with the feed's id, until cmd is closed or the
// shard stops. Runs outside the single-writer loop; only the loop itself
// touches Shard.feeds.
func (s *Shard) adaptFeedCommands(id uint64, cmd <-chan telemetrymsg.FromFeed) {
	for {
		select {
		case msg, ok := <-cmd:
			if !ok {
				s.UnsubscribeFeed(id)
				return
			}
			select {
			case s.feedEvents <- feedEvent{id: id, msg: msg}:
			case <-s.done:
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *Shard) handleFeedEvent(ev feedEvent) {
	sub, ok := s.feeds[ev.id]
	if !ok {
		return
	}

	switch m := ev.msg.(type) {
	case telemetrymsg.SubscribeToChain:
		sub.chains[m.GenesisHash] = true
	case telemetrymsg.UnsubscribeFromChain:
		delete(sub.chains, m.GenesisHash)
	case telemetrymsg.Ping:
		// Liveness only; no state change.
	}
}

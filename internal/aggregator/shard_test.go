package aggregator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/availproject/substrate-telemetry-core/internal/node"
	"github.com/availproject/substrate-telemetry-core/internal/telemetrymsg"
)

type recordingSink struct {
	mu    sync.Mutex
	diffs []telemetrymsg.ToFeed
}

func (s *recordingSink) Send(msg telemetrymsg.ToFeed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diffs = append(s.diffs, msg)
	return nil
}

func (s *recordingSink) snapshot() []telemetrymsg.ToFeed {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]telemetrymsg.ToFeed, len(s.diffs))
	copy(out, s.diffs)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestShardAddNodeEmitsDiffToSubscribedFeed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shard := Spawn(ctx, Opts{})
	sink := &recordingSink{}

	_, input, err := shard.SubscribeFeed(ctx, sink)
	require.NoError(t, err)

	gh := node.GenesisHash{0x1}
	input <- telemetrymsg.SubscribeToChain{GenesisHash: gh}
	time.Sleep(20 * time.Millisecond) // let the subscription land before the diff is emitted

	identity := node.UniqueNodeIdentity{NodeName: "a", NetworkID: "net"}
	require.True(t, shard.TrySend(telemetrymsg.AddNode{GenesisHash: gh, Identity: identity, Details: node.NodeDetails{Version: "1.0.0"}}))

	waitFor(t, func() bool { return len(sink.snapshot()) == 1 })
	diff, ok := sink.snapshot()[0].(telemetrymsg.NodeAdded)
	require.True(t, ok)
	require.Equal(t, identity, diff.Identity)
	require.Equal(t, 1, diff.NodeCount)
}

func TestShardDoesNotBroadcastToUnsubscribedChain(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shard := Spawn(ctx, Opts{})
	sink := &recordingSink{}
	_, input, err := shard.SubscribeFeed(ctx, sink)
	require.NoError(t, err)

	subscribed := node.GenesisHash{0x1}
	other := node.GenesisHash{0x2}
	input <- telemetrymsg.SubscribeToChain{GenesisHash: subscribed}

	identity := node.UniqueNodeIdentity{NodeName: "a", NetworkID: "net"}
	ok := shard.TrySend(telemetrymsg.AddNode{GenesisHash: other, Identity: identity})
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	require.Empty(t, sink.snapshot())
}

func TestShardSnapshotRequestReflectsIngress(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shard := Spawn(ctx, Opts{})
	gh := node.GenesisHash{0x1}
	identity := node.UniqueNodeIdentity{NodeName: "a", NetworkID: "net"}

	waitFor(t, func() bool {
		return shard.TrySend(telemetrymsg.AddNode{GenesisHash: gh, Identity: identity, Details: node.NodeDetails{Version: "1.0.0"}})
	})
	waitFor(t, func() bool {
		return shard.TrySend(telemetrymsg.UpdateBestBlock{GenesisHash: gh, Identity: identity, Block: node.Block{Height: 5, Hash: node.BlockHash{0x5}}, Timestamp: 1000})
	})

	waitFor(t, func() bool {
		ov, err := shard.Overview(ctx)
		if err != nil {
			return false
		}
		c, ok := ov[gh]
		return ok && c.BestBlock.Height == 5
	})
}

func TestShardUnsubscribeFeedStopsDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shard := Spawn(ctx, Opts{})
	sink := &recordingSink{}
	id, input, err := shard.SubscribeFeed(ctx, sink)
	require.NoError(t, err)

	gh := node.GenesisHash{0x1}
	input <- telemetrymsg.SubscribeToChain{GenesisHash: gh}
	shard.UnsubscribeFeed(id)

	time.Sleep(50 * time.Millisecond)
	identity := node.UniqueNodeIdentity{NodeName: "a", NetworkID: "net"}
	shard.TrySend(telemetrymsg.AddNode{GenesisHash: gh, Identity: identity})

	time.Sleep(50 * time.Millisecond)
	require.Empty(t, sink.snapshot())
}

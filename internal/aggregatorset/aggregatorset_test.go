package aggregatorset

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/availproject/substrate-telemetry-core/internal/aggregator"
	"github.com/availproject/substrate-telemetry-core/internal/node"
	"github.com/availproject/substrate-telemetry-core/internal/telemetrymsg"
)

type nullSink struct{ mu sync.Mutex }

func (s *nullSink) Send(msg telemetrymsg.ToFeed) error { return nil }

func TestSubscribeFeedRoundRobinsAcrossShards(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	set, err := New(ctx, 3, aggregator.Opts{}, time.Hour, nil)
	require.NoError(t, err)
	sink := &nullSink{}

	want := []int{1, 2, 0, 1, 2, 0}
	for _, w := range want {
		idx, _, _, err := set.SubscribeFeed(ctx, sink)
		require.NoError(t, err)
		require.Equal(t, w, idx, "assignment follows (counter+1) mod N")
	}
}

func TestIngressSingleShardIsDirectFastPath(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	set, err := New(ctx, 1, aggregator.Opts{}, time.Hour, nil)
	require.NoError(t, err)
	require.Equal(t, set.shards[0].Ingress(), set.Ingress(), "N=1 returns the shard's own channel")
}

func TestIngressFanOutReachesEveryShard(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	set, err := New(ctx, 3, aggregator.Opts{}, time.Hour, nil)
	require.NoError(t, err)
	gh := node.GenesisHash{0x1}
	identity := node.UniqueNodeIdentity{NodeName: "a", NetworkID: "net"}

	set.Ingress() <- telemetrymsg.AddNode{GenesisHash: gh, Identity: identity, Details: node.NodeDetails{Version: "1.0.0"}}

	deadline := time.Now().Add(2 * time.Second)
	for _, shard := range set.shards {
		for {
			ov, err := shard.Overview(ctx)
			if err == nil {
				if _, ok := ov[gh]; ok {
					break
				}
			}
			if time.Now().After(deadline) {
				t.Fatalf("shard never observed fanned-out message")
			}
			time.Sleep(time.Millisecond)
		}
	}
}

func TestEndpointsFanAcrossSlotsAndMissReturnsErrNoGenesisHash(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	set, err := New(ctx, 3, aggregator.Opts{}, 20*time.Millisecond, nil)
	require.NoError(t, err)
	gh := node.GenesisHash{0x1}
	identity := node.UniqueNodeIdentity{NodeName: "a", NetworkID: "net"}

	set.Ingress() <- telemetrymsg.AddNode{GenesisHash: gh, Identity: identity, Details: node.NodeDetails{Version: "1.0.0"}}

	deadline := time.Now().Add(2 * time.Second)
	for {
		ov, err := set.OverviewEndpoint(gh)
		if err == nil {
			require.Len(t, ov.Implementations, 1)
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("overview never became available through any slot")
		}
		time.Sleep(5 * time.Millisecond)
	}

	_, err = set.OverviewEndpoint(node.GenesisHash{0xFF})
	require.ErrorIs(t, err, ErrNoGenesisHash)
}

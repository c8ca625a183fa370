package findlocation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/availproject/substrate-telemetry-core/internal/node"
)

type countingResolver struct {
	calls int
	loc   *node.NodeLocation
}

func (r *countingResolver) Resolve(ctx context.Context, address string) (*node.NodeLocation, error) {
	r.calls++
	return r.loc, nil
}

func TestCacheResolvesInnerOnceForRepeatedAddress(t *testing.T) {
	inner := &countingResolver{loc: &node.NodeLocation{Latitude: 1, Longitude: 2}}
	c := NewCache(inner)

	loc1, err := c.Resolve(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	loc2, err := c.Resolve(context.Background(), "1.2.3.4")
	require.NoError(t, err)

	require.Equal(t, 1, inner.calls, "second call for the same address is served from cache")
	require.Same(t, loc1, loc2)
}

func TestCacheTracksDistinctAddressesSeparately(t *testing.T) {
	inner := &countingResolver{loc: &node.NodeLocation{Latitude: 1, Longitude: 2}}
	c := NewCache(inner)

	_, err := c.Resolve(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	_, err = c.Resolve(context.Background(), "5.6.7.8")
	require.NoError(t, err)

	require.Equal(t, 2, inner.calls)
}

func TestNullResolverAlwaysReturnsNoLocation(t *testing.T) {
	var n Null
	loc, err := n.Resolve(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	require.Nil(t, loc)
}

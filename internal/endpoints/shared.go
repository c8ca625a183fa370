// Package endpoints implements the three pure snapshot-builder transforms:
// ChainOverview, BlockHistory, and NodeList, plus their shared
// JSON-serializable value types.
package endpoints

import (
	"time"

	"github.com/availproject/substrate-telemetry-core/internal/node"
)

// SUniqueNodeIdentity is the JSON shape of a node identity.
type SUniqueNodeIdentity struct {
	NodeName  string `json:"node_name"`
	NetworkID string `json:"network_id"`
}

func identityToS(id node.UniqueNodeIdentity) SUniqueNodeIdentity {
	return SUniqueNodeIdentity{NodeName: id.NodeName, NetworkID: id.NetworkID}
}

// SDateTime is the JSON shape of a millisecond timestamp: the raw millis
// plus an RFC-3339-like rendering. Invalid (unrepresentable) millis default
// to the epoch.
type SDateTime struct {
	Timestamp int64  `json:"timestamp"`
	Date      string `json:"date"`
}

func newSDateTime(millis node.Timestamp) SDateTime {
	t := time.UnixMilli(int64(millis)).UTC()
	if t.Year() < 0 || t.Year() > 9999 {
		t = time.UnixMilli(0).UTC()
	}
	return SDateTime{
		Timestamp: t.UnixMilli(),
		Date:      t.Format("2006-01-02 15:04:05.999999999 -0700 MST"),
	}
}

// BlockProducer identifies the node that produced a block, with its
// proposal interval's start/end timestamps.
type BlockProducer struct {
	Identity SUniqueNodeIdentity `json:"identity"`
	Start    SDateTime           `json:"start"`
	End      SDateTime           `json:"end"`
}

func intervalToProducer(identity node.UniqueNodeIdentity, interval node.Interval) BlockProducer {
	return BlockProducer{
		Identity: identityToS(identity),
		Start:    newSDateTime(interval.StartTimestamp),
		End:      newSDateTime(interval.EndTimestamp),
	}
}

package tps_pack

import (
	"context"

	"github.com/modulrcloud/modulr-api/structures"
)

type HistoricalBlockSource interface {
	// LatestBlocks returns up to limit records, most recent first.
	LatestBlocks(ctx context.Context, limit int) ([]structures.BlockRecord, error)

	CountRecords(ctx context.Context, kind string) (int64, error)
}

type ShardTopology interface {
	ShardCount(ctx context.Context) (int, error)
	MetaShardId() int
}

// StaticTopology is the configured shard layout.
type StaticTopology struct {
	Shards    int
	MetaShard int
}

func (t StaticTopology) ShardCount(context.Context) (int, error) { return t.Shards, nil }
func (t StaticTopology) MetaShardId() int                        { return t.MetaShard }

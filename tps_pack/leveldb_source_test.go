package tps_pack

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/modulrcloud/modulr-api/constants"
	"github.com/modulrcloud/modulr-api/structures"

	"github.com/syndtr/goleveldb/leveldb"
)

func openTempDb(t *testing.T) *leveldb.DB {
	t.Helper()

	db, err := leveldb.OpenFile(filepath.Join(t.TempDir(), "BLOCKS_INDEX"), nil)
	if err != nil {
		t.Fatalf("open leveldb: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func blockAt(seconds int64, shard int, txs ...string) *structures.Block {
	block := &structures.Block{Creator: "creator", Time: seconds * 1000, Epoch: "0", ShardId: shard}
	for _, to := range txs {
		block.Transactions = append(block.Transactions, structures.Transaction{V: 1, To: to, Nonce: uint64(len(block.Transactions))})
	}
	return block
}

func TestLevelDBSourceReturnsMostRecentFirst(t *testing.T) {
	source := NewLevelDBBlockSource(openTempDb(t))
	ctx := context.Background()

	for _, block := range []*structures.Block{
		blockAt(200, 0, "a", "b"),
		blockAt(100, 1, "c"),
		blockAt(300, 0),
	} {
		stored, err := source.StoreBlock(block)
		if err != nil || !stored {
			t.Fatalf("store block at %d: stored=%v err=%v", block.Time, stored, err)
		}
	}

	records, err := source.LatestBlocks(ctx, 2)
	if err != nil {
		t.Fatalf("LatestBlocks: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Timestamp != 300 || records[1].Timestamp != 200 {
		t.Fatalf("unexpected order: %+v", records)
	}
	if records[1].TxCount != 2 {
		t.Fatalf("expected tx count 2, got %d", records[1].TxCount)
	}

	all, err := source.LatestBlocks(ctx, 100)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 records, got %d (%v)", len(all), err)
	}
}

func TestLevelDBSourceCountsAreIdempotent(t *testing.T) {
	source := NewLevelDBBlockSource(openTempDb(t))
	ctx := context.Background()

	block := blockAt(100, 0, "a", "b", "c")

	if _, err := source.StoreBlock(block); err != nil {
		t.Fatalf("store: %v", err)
	}
	stored, err := source.StoreBlock(block)
	if err != nil {
		t.Fatalf("store again: %v", err)
	}
	if stored {
		t.Fatalf("second store of the same block must be a no-op")
	}

	operations, err := source.CountRecords(ctx, constants.OperationsRecordKind)
	if err != nil || operations != 3 {
		t.Fatalf("expected 3 operations, got %d (%v)", operations, err)
	}

	blocks, err := source.CountRecords(ctx, constants.BlocksRecordKind)
	if err != nil || blocks != 1 {
		t.Fatalf("expected 1 block, got %d (%v)", blocks, err)
	}
}

func TestLevelDBSourceEmpty(t *testing.T) {
	source := NewLevelDBBlockSource(openTempDb(t))

	records, err := source.LatestBlocks(context.Background(), 10)
	if err != nil || len(records) != 0 {
		t.Fatalf("expected no records, got %d (%v)", len(records), err)
	}

	count, err := source.CountRecords(context.Background(), constants.OperationsRecordKind)
	if err != nil || count != 0 {
		t.Fatalf("expected zero count, got %d (%v)", count, err)
	}
}

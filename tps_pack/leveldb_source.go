package tps_pack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/modulrcloud/modulr-api/constants"
	"github.com/modulrcloud/modulr-api/structures"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const recordCountKeyPrefix = "RECORD_COUNT:"

// LevelDBBlockSource serves block records written by the indexer.
//
// Layout:
//
//	BLOCK_RECORD:<timestamp %020d>:<hash> -> BlockRecord JSON (lexicographic order == time order)
//	OPERATION:<txHash>                    -> block hash
//	RECORD_COUNT:<kind>                   -> decimal count
type LevelDBBlockSource struct {
	db *leveldb.DB
}

func NewLevelDBBlockSource(db *leveldb.DB) *LevelDBBlockSource {
	return &LevelDBBlockSource{db: db}
}

func blockRecordKey(record structures.BlockRecord) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", constants.DBKeyPrefixBlockRecord, record.Timestamp, record.Hash))
}

func (s *LevelDBBlockSource) LatestBlocks(ctx context.Context, limit int) ([]structures.BlockRecord, error) {

	if limit <= 0 {
		return []structures.BlockRecord{}, nil
	}

	it := s.db.NewIterator(util.BytesPrefix([]byte(constants.DBKeyPrefixBlockRecord)), nil)
	defer it.Release()

	records := make([]structures.BlockRecord, 0, min(limit, 1024))

	for ok := it.Last(); ok && len(records) < limit; ok = it.Prev() {

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var record structures.BlockRecord
		if err := json.Unmarshal(it.Value(), &record); err != nil {
			return nil, fmt.Errorf("decode %s: %w", it.Key(), err)
		}
		records = append(records, record)
	}

	if err := it.Error(); err != nil {
		return nil, err
	}

	return records, nil
}

func (s *LevelDBBlockSource) CountRecords(ctx context.Context, kind string) (int64, error) {

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	raw, err := s.db.Get([]byte(recordCountKeyPrefix+kind), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return strconv.ParseInt(string(raw), 10, 64)
}

// StoreBlock writes the block record and one operation key per transaction in a single batch.
// Already stored blocks and operations are not counted twice. It reports whether the block was new.
func (s *LevelDBBlockSource) StoreBlock(block *structures.Block) (bool, error) {

	record := block.Record()
	recordKey := blockRecordKey(record)

	exists, err := s.db.Has(recordKey, nil)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		return false, err
	}

	batch := new(leveldb.Batch)
	batch.Put(recordKey, encoded)

	var newOperations int64
	for i := range block.Transactions {
		opKey := []byte(constants.DBKeyPrefixOperation + block.Transactions[i].Hash())
		seen, err := s.db.Has(opKey, nil)
		if err != nil {
			return false, err
		}
		if seen {
			continue
		}
		batch.Put(opKey, []byte(record.Hash))
		newOperations++
	}

	if err := s.addCountToBatch(batch, constants.BlocksRecordKind, 1); err != nil {
		return false, err
	}
	if err := s.addCountToBatch(batch, constants.OperationsRecordKind, newOperations); err != nil {
		return false, err
	}

	if err := s.db.Write(batch, nil); err != nil {
		return false, err
	}

	return true, nil
}

func (s *LevelDBBlockSource) addCountToBatch(batch *leveldb.Batch, kind string, delta int64) error {
	if delta == 0 {
		return nil
	}
	current, err := s.CountRecords(context.Background(), kind)
	if err != nil {
		return err
	}
	batch.Put([]byte(recordCountKeyPrefix+kind), []byte(strconv.FormatInt(current+delta, 10)))
	return nil
}

package databases

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
)

// BLOCKS_INDEX keeps time-ordered block records and operation keys written by the indexer.
var BLOCKS_INDEX *leveldb.DB

// STATE keeps indexer progress.
var STATE *leveldb.DB

func CloseAll() error {

	var errs []error

	for _, db := range []*leveldb.DB{BLOCKS_INDEX, STATE} {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

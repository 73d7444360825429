package utils

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/modulrcloud/modulr-api/globals"

	"github.com/syndtr/goleveldb/leveldb"
)

func OpenDb(dbName string) (*leveldb.DB, error) {

	db, err := leveldb.OpenFile(filepath.Join(globals.CHAINDATA_PATH, "DATABASES", dbName), nil)
	if err != nil {
		return nil, fmt.Errorf("impossible to open db %s: %w", dbName, err)
	}
	return db, nil
}

// GetJSONFromDb decodes the value under key into out. found is false on leveldb.ErrNotFound.
func GetJSONFromDb(db *leveldb.DB, key string, out any) (found bool, err error) {

	raw, err := db.Get([]byte(key), nil)

	if err == leveldb.ErrNotFound {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}

	return true, nil
}

func PutJSONToDb(db *leveldb.DB, key string, value any) error {

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return db.Put([]byte(key), raw, nil)
}

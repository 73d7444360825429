package structures

import (
	"encoding/hex"
	"strconv"
	"strings"

	"lukechampine.com/blake3"
)

// Block is the subset of a node block the indexer needs.
type Block struct {
	Creator      string        `json:"creator"`
	Time         int64         `json:"time"` // unix milliseconds
	Epoch        string        `json:"epoch"`
	Index        int           `json:"index"`
	ShardId      int           `json:"shardId"`
	PrevHash     string        `json:"prevHash"`
	Transactions []Transaction `json:"transactions"`
	Sig          string        `json:"sig"`
}

func (block *Block) GetHash() string {

	txHashes := make([]string, 0, len(block.Transactions))

	for i := range block.Transactions {
		txHashes = append(txHashes, block.Transactions[i].Hash())
	}

	preimage := strings.Join([]string{
		block.Creator,
		strconv.FormatInt(block.Time, 10),
		block.Epoch,
		strconv.Itoa(block.Index),
		strconv.Itoa(block.ShardId),
		block.PrevHash,
		strings.Join(txHashes, ","),
	}, ":")

	sum := blake3.Sum256([]byte(preimage))
	return hex.EncodeToString(sum[:])
}

// Record flattens the block into the row stored by the historical source.
func (block *Block) Record() BlockRecord {
	return BlockRecord{
		Hash:      block.GetHash(),
		ShardId:   block.ShardId,
		TxCount:   int64(len(block.Transactions)),
		Timestamp: block.Time / 1000,
	}
}

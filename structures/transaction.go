package structures

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"lukechampine.com/blake3"
)

type Transaction struct {
	V        uint           `json:"v"`
	From     string         `json:"from"`
	To       string         `json:"to"`
	Amount   uint64         `json:"amount"`
	Fee      uint64         `json:"fee"`
	GasLimit uint64         `json:"gasLimit"`
	ChainId  string         `json:"chainId"`
	Sig      string         `json:"sig"`
	Nonce    uint64         `json:"nonce"`
	Payload  map[string]any `json:"payload"`
}

// Hash is the blake3 digest of every field except the signature. It is also the signing payload.
func (t *Transaction) Hash() string {

	payload := t.Payload

	if payload == nil {
		payload = make(map[string]any)
	}

	payloadJSON, err := json.Marshal(payload)

	if err != nil {
		return ""
	}

	preimage := strings.Join([]string{
		strconv.FormatUint(uint64(t.V), 10),
		t.ChainId,
		t.From,
		t.To,
		strconv.FormatUint(t.Amount, 10),
		strconv.FormatUint(t.Fee, 10),
		strconv.FormatUint(t.GasLimit, 10),
		strconv.FormatUint(t.Nonce, 10),
		string(payloadJSON),
	}, ":")

	sum := blake3.Sum256([]byte(preimage))
	return hex.EncodeToString(sum[:])
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	type alias Transaction
	if t.Payload == nil {
		t.Payload = make(map[string]any)
	}
	return json.Marshal((alias)(t))
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	type alias Transaction
	var aux alias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Payload == nil {
		aux.Payload = make(map[string]any)
	}
	*t = Transaction(aux)
	return nil
}

type SubmissionReceipt struct {
	TxHash string `json:"txHash"`
}

type SubmissionRejection struct {
	Reason string `json:"reason"`
}

// SubmissionResult is either accepted or rejected, never both.
// Build it with SubmissionAccepted or SubmissionRejected.
type SubmissionResult struct {
	Accepted *SubmissionReceipt
	Rejected *SubmissionRejection
}

func SubmissionAccepted(txHash string) SubmissionResult {
	return SubmissionResult{Accepted: &SubmissionReceipt{TxHash: txHash}}
}

func SubmissionRejected(reason string) SubmissionResult {
	return SubmissionResult{Rejected: &SubmissionRejection{Reason: reason}}
}

func (r SubmissionResult) IsAccepted() bool {
	return r.Accepted != nil && r.Rejected == nil
}

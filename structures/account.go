package structures

// Account as returned by a LedgerAccountReader. Nonce is the next nonce a transaction from this
// account must carry.
type Account struct {
	Balance                         uint64 `json:"balance"`
	Nonce                           uint64 `json:"nonce"`
	InitiatedTransactions           uint64 `json:"initiatedTransactions"`
	SuccessfulInitiatedTransactions uint64 `json:"successfulInitiatedTransactions"`
}

package faucet_pack

import (
	"context"
	"errors"

	"github.com/modulrcloud/modulr-api/constants"
	"github.com/modulrcloud/modulr-api/cryptography"
	"github.com/modulrcloud/modulr-api/metrics"
	"github.com/modulrcloud/modulr-api/structures"
)

// Dispenser sends a fixed amount from the faucet wallet to a requesting address.
//
// No retries and no rollbacks: a submission that fails after a nonce was allocated leaves a gap
// in the faucet's nonce sequence.
type Dispenser struct {
	nonces    *NonceAllocator
	signer    Signer
	submitter Submitter
	chainId   string
	recorder  metrics.Recorder
}

func NewDispenser(nonces *NonceAllocator, signer Signer, submitter Submitter, chainId string, recorder metrics.Recorder) *Dispenser {
	if recorder == nil {
		recorder = metrics.NoOpRecorder{}
	}
	return &Dispenser{
		nonces:    nonces,
		signer:    signer,
		submitter: submitter,
		chainId:   chainId,
		recorder:  recorder,
	}
}

func (d *Dispenser) FaucetAddress() string {
	return d.signer.PublicKey()
}

// Dispense returns an accepted result, or ErrInvalidAddress, ErrUpstreamUnavailable or a
// *SubmissionRejectedError.
func (d *Dispenser) Dispense(ctx context.Context, address string) (structures.SubmissionResult, error) {

	result, err := d.dispense(ctx, address)

	d.recorder.Add(metrics.FaucetDispenses, 1, map[string]string{"outcome": outcomeOf(err)})

	return result, err
}

func (d *Dispenser) dispense(ctx context.Context, address string) (structures.SubmissionResult, error) {

	if !cryptography.IsValidPubKey(address) {
		return structures.SubmissionResult{}, ErrInvalidAddress
	}

	from := d.signer.PublicKey()

	nonce, err := d.nonces.Allocate(ctx, from)
	if err != nil {
		return structures.SubmissionResult{}, err
	}

	tx := structures.Transaction{
		V:        constants.TxVersion,
		From:     from,
		To:       address,
		Amount:   constants.FaucetAmount,
		GasLimit: constants.FaucetGasLimit,
		ChainId:  d.chainId,
		Nonce:    nonce,
		Payload:  map[string]any{},
	}

	signature, err := d.signer.Sign([]byte(tx.Hash()))
	if err != nil {
		return structures.SubmissionResult{}, err
	}
	tx.Sig = signature

	result, err := d.submitter.Submit(ctx, tx)
	if err != nil {
		return structures.SubmissionResult{}, upstream("submit transaction", err)
	}

	if result.Rejected != nil {
		return structures.SubmissionResult{}, &SubmissionRejectedError{Reason: result.Rejected.Reason}
	}
	if result.Accepted == nil {
		return structures.SubmissionResult{}, upstream("submit transaction", errors.New("empty submission result"))
	}

	return result, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, ErrSubmissionRejected):
		return "rejected"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	default:
		return "error"
	}
}

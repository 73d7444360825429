package faucet_pack

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/modulrcloud/modulr-api/cache_pack"
	"github.com/modulrcloud/modulr-api/constants"
	"github.com/modulrcloud/modulr-api/cryptography"
	"github.com/modulrcloud/modulr-api/structures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubmitter struct {
	mu     sync.Mutex
	txs    []structures.Transaction
	result structures.SubmissionResult
	err    error
}

func (s *recordingSubmitter) Submit(ctx context.Context, tx structures.Transaction) (structures.SubmissionResult, error) {
	s.mu.Lock()
	s.txs = append(s.txs, tx)
	s.mu.Unlock()
	if s.err != nil {
		return structures.SubmissionResult{}, s.err
	}
	if s.result.Accepted == nil && s.result.Rejected == nil {
		return structures.SubmissionAccepted(tx.Hash()), nil
	}
	return s.result, nil
}

type testFaucet struct {
	dispenser *Dispenser
	tier      *cache_pack.MemoryTier
	submitter *recordingSubmitter
	signer    *Ed25519Signer
	recipient string
}

func newTestFaucet(t *testing.T) *testFaucet {
	t.Helper()

	faucetBox, err := cryptography.GenerateKeyPair("", "", nil)
	require.NoError(t, err)
	recipientBox, err := cryptography.GenerateKeyPair("", "", nil)
	require.NoError(t, err)

	signer, err := NewEd25519Signer(faucetBox.Prv, faucetBox.Pub)
	require.NoError(t, err)

	tier := cache_pack.NewMemoryTier()
	submitter := &recordingSubmitter{}
	allocator := NewNonceAllocator(tier, &fakeLedger{nonce: 7}, nil)

	return &testFaucet{
		dispenser: NewDispenser(allocator, signer, submitter, "modulr-testnet", nil),
		tier:      tier,
		submitter: submitter,
		signer:    signer,
		recipient: recipientBox.Pub,
	}
}

func TestDispenseBuildsSignsAndSubmits(t *testing.T) {
	f := newTestFaucet(t)

	result, err := f.dispenser.Dispense(context.Background(), f.recipient)
	require.NoError(t, err)
	require.True(t, result.IsAccepted())

	require.Len(t, f.submitter.txs, 1)
	tx := f.submitter.txs[0]

	assert.Equal(t, f.signer.PublicKey(), tx.From)
	assert.Equal(t, f.recipient, tx.To)
	assert.Equal(t, uint64(5_000_000_000_000_000_000), tx.Amount)
	assert.Equal(t, constants.FaucetGasLimit, tx.GasLimit)
	assert.Equal(t, "modulr-testnet", tx.ChainId)
	assert.Equal(t, uint64(7), tx.Nonce)
	assert.Equal(t, tx.Hash(), result.Accepted.TxHash)
	assert.True(t, cryptography.VerifySignature([]byte(tx.Hash()), tx.From, tx.Sig))
}

func TestDispenseConcurrentRequestsUseDistinctNonces(t *testing.T) {
	f := newTestFaucet(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.dispenser.Dispense(context.Background(), f.recipient); err != nil {
				t.Errorf("dispense: %v", err)
			}
		}()
	}
	wg.Wait()

	seen := map[uint64]bool{}
	for _, tx := range f.submitter.txs {
		assert.False(t, seen[tx.Nonce], "nonce %d reused", tx.Nonce)
		seen[tx.Nonce] = true
	}
	assert.Len(t, seen, 20)
}

func TestDispenseInvalidAddressLeavesCounterUntouched(t *testing.T) {
	f := newTestFaucet(t)
	ctx := context.Background()

	// Seed the counter with one successful call.
	_, err := f.dispenser.Dispense(ctx, f.recipient)
	require.NoError(t, err)

	before, _, _ := f.tier.Get(ctx, NonceKey(f.signer.PublicKey()))

	for _, address := range []string{"", "not-an-address", "0x1234", "3yZe7d"} {
		_, err := f.dispenser.Dispense(ctx, address)
		require.ErrorIs(t, err, ErrInvalidAddress, address)
	}

	after, _, _ := f.tier.Get(ctx, NonceKey(f.signer.PublicKey()))
	assert.Equal(t, before, after)
	assert.Len(t, f.submitter.txs, 1)
}

func TestDispenseInvalidAddressOnColdCounterDoesNotSeed(t *testing.T) {
	f := newTestFaucet(t)

	_, err := f.dispenser.Dispense(context.Background(), "bad")
	require.ErrorIs(t, err, ErrInvalidAddress)

	_, found, _ := f.tier.Get(context.Background(), NonceKey(f.signer.PublicKey()))
	assert.False(t, found)
}

func TestDispenseRejectedSubmission(t *testing.T) {
	f := newTestFaucet(t)
	f.submitter.result = structures.SubmissionRejected("Mempool is fullfilled")

	_, err := f.dispenser.Dispense(context.Background(), f.recipient)

	var rejected *SubmissionRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "Mempool is fullfilled", rejected.Reason)
	assert.ErrorIs(t, err, ErrSubmissionRejected)
	assert.NotErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestDispenseSubmitterTransportFailure(t *testing.T) {
	f := newTestFaucet(t)
	f.submitter.err = errors.New("i/o timeout")

	_, err := f.dispenser.Dispense(context.Background(), f.recipient)
	require.ErrorIs(t, err, ErrUpstreamUnavailable)

	// No rollback: the next request skips the burnt nonce.
	f.submitter.err = nil
	_, err = f.dispenser.Dispense(context.Background(), f.recipient)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), f.submitter.txs[1].Nonce)
}

func TestNewEd25519SignerRejectsMismatchedPublicKey(t *testing.T) {
	a, err := cryptography.GenerateKeyPair("", "", nil)
	require.NoError(t, err)
	b, err := cryptography.GenerateKeyPair("", "", nil)
	require.NoError(t, err)

	_, err = NewEd25519Signer(a.Prv, b.Pub)
	require.Error(t, err)
}

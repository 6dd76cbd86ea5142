package vault

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AlexZinkM/friend-vault/internal/lock"
	"github.com/AlexZinkM/friend-vault/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteOnce(t *testing.T) {
	f := newFixture(t, lock.NewLocal())
	ctx := context.Background()
	trip := f.tripVault(t, "20")
	r := f.approvedRequest(t, trip.ID)

	executed, err := f.execution.Execute(ctx, r.ID, "Bob")
	require.NoError(t, err)
	assert.Equal(t, model.StatusExecuted, executed.Status)
	assert.Equal(t, "bob", executed.ExecutedBy)
	assert.Equal(t, "sig-1", executed.TransactionHash)
	require.NotNil(t, executed.ExecutedAt)

	require.Equal(t, 1, f.ledger.transferCount())
	order := f.ledger.transfers[0]
	assert.Equal(t, trip.Address, order.From)
	assert.Equal(t, "addr-x", order.To)
	assert.Equal(t, "2", order.Amount)
	assert.Equal(t, model.NativeAssetCode, order.AssetRef)
	assert.Equal(t, "vault-withdrawal:"+r.ID, order.Memo)

	_, err = f.execution.Execute(ctx, r.ID, "alice")
	assert.ErrorIs(t, err, ErrState)
	assert.Equal(t, 1, f.ledger.transferCount())

	stored, err := f.store.GetWithdrawalRequest(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusExecuted, stored.Status)
	assert.Equal(t, "sig-1", stored.TransactionHash)

	records, err := f.registry.Transactions(ctx, trip.ID, "carol")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, r.ID, records[0].RequestID)
	assert.Equal(t, trip.Address, records[0].Sender)
	assert.Equal(t, "sig-1", records[0].TransactionHash)
}

func TestExecuteGuards(t *testing.T) {
	f := newFixture(t, lock.NewLocal())
	ctx := context.Background()
	trip := f.tripVault(t, "20")

	pending := f.request(t, trip.ID, "1")
	rejected := f.request(t, trip.ID, "1")
	_, err := f.voting.Vote(ctx, rejected.ID, "carol", model.DecisionReject)
	require.NoError(t, err)
	approved := f.approvedRequest(t, trip.ID)

	tests := []struct {
		name      string
		requestID string
		executor  string
		want      error
	}{
		{"unknown request", "missing", "alice", ErrNotFound},
		{"blank request", " ", "alice", ErrValidation},
		{"non-member", approved.ID, "dave", ErrAuthorization},
		{"pending", pending.ID, "alice", ErrState},
		{"rejected", rejected.ID, "alice", ErrState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.execution.Execute(ctx, tt.requestID, tt.executor)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, f.ledger.transferCount())
}

func TestExecuteLedgerFailureIsRetryable(t *testing.T) {
	f := newFixture(t, lock.NewLocal())
	ctx := context.Background()
	trip := f.tripVault(t, "20")
	r := f.approvedRequest(t, trip.ID)

	f.ledger.transferErr = errors.New("blockhash not found")
	_, err := f.execution.Execute(ctx, r.ID, "alice")
	assert.ErrorIs(t, err, ErrLedger)

	stored, err := f.store.GetWithdrawalRequest(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, stored.Status)
	assert.Empty(t, stored.TransactionHash)

	f.ledger.transferErr = nil
	executed, err := f.execution.Execute(ctx, r.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.StatusExecuted, executed.Status)
	assert.Equal(t, 1, f.ledger.transferCount())
	assert.Equal(t, 2, f.ledger.attempts)
}

func TestExecuteRecordFailureRequiresReconciliation(t *testing.T) {
	f := newFixture(t, lock.NewLocal())
	ctx := context.Background()
	trip := f.tripVault(t, "20")
	r := f.approvedRequest(t, trip.ID)

	broken := NewExecutionEngine(f.store, failingCompletion{f.store}, f.ledger, f.sealer, lock.NewLocal(), f.logger)
	_, err := broken.Execute(ctx, r.ID, "bob")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.ReconciliationRequired)
	assert.Contains(t, verr.Message, "sig-1")

	entries := f.logs.FilterMessage("payment submitted but execution was not recorded").All()
	require.Len(t, entries, 1)
	assert.Equal(t, true, entries[0].ContextMap()["reconciliation_required"])
	assert.Equal(t, "sig-1", entries[0].ContextMap()["transaction_hash"])

	// the claim stays in place, so nobody can pay a second time
	_, err = f.execution.Execute(ctx, r.ID, "carol")
	assert.ErrorIs(t, err, ErrState)
	assert.Equal(t, 1, f.ledger.transferCount())
}

func TestConcurrentExecutePaysOnce(t *testing.T) {
	for name, locks := range map[string]lock.Manager{
		"locked":   lock.NewLocal(),
		"unlocked": passthrough{},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, locks)
			trip := f.tripVault(t, "20")
			r := f.approvedRequest(t, trip.ID)
			f.ledger.delay = 20 * time.Millisecond

			const callers = 8
			var wg sync.WaitGroup
			var mu sync.Mutex
			var succeeded, stateErrors int
			for i := range callers {
				wg.Add(1)
				go func(executor string) {
					defer wg.Done()
					_, err := f.execution.Execute(context.Background(), r.ID, executor)
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						succeeded++
					case errors.Is(err, ErrState):
						stateErrors++
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}([]string{"alice", "bob", "carol"}[i%3])
			}
			wg.Wait()

			assert.Equal(t, 1, succeeded)
			assert.Equal(t, callers-1, stateErrors)
			assert.Equal(t, 1, f.ledger.transferCount())

			records, err := f.store.ListVaultTransactions(context.Background(), trip.ID)
			require.NoError(t, err)
			assert.Len(t, records, 1)
		})
	}
}

func TestExecuteTokenWithdrawal(t *testing.T) {
	f := newFixture(t, lock.NewLocal())
	ctx := context.Background()
	trip := f.tripVault(t, "0")

	r, err := f.requests.CreateRequest(ctx, model.CreateWithdrawalRequest{
		VaultID: trip.ID, Amount: "25", AssetRef: "mint-usdc", Recipient: "addr-y", RequestedBy: "bob",
	})
	require.NoError(t, err)
	for _, member := range []string{"alice", "carol"} {
		_, err = f.voting.Vote(ctx, r.ID, member, model.DecisionApprove)
		require.NoError(t, err)
	}

	_, err = f.execution.Execute(ctx, r.ID, "carol")
	require.NoError(t, err)
	require.Equal(t, 1, f.ledger.transferCount())
	assert.Equal(t, "mint-usdc", f.ledger.transfers[0].AssetRef)
	assert.Equal(t, "25", f.ledger.transfers[0].Amount)
}

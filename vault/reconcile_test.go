package vault

import (
	"context"
	"testing"
	"time"

	"github.com/AlexZinkM/friend-vault/internal/lock"
	"github.com/AlexZinkM/friend-vault/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) reconciler() *Reconciler {
	return NewReconciler(f.store, f.store, f.ledger, lock.NewLocal(), f.logger)
}

// abandonedClaim leaves an approved request claimed an hour ago, as a crashed
// execution would.
func (f *fixture) abandonedClaim(t *testing.T, vaultID string) model.WithdrawalRequest {
	t.Helper()
	r := f.approvedRequest(t, vaultID)
	require.NoError(t, f.store.ClaimExecution(context.Background(), r.ID, "lost-claim", time.Now().Add(-time.Hour)))
	return r
}

func TestStaleClaims(t *testing.T) {
	f := newFixture(t, lock.NewLocal())
	ctx := context.Background()
	trip := f.tripVault(t, "20")
	r := f.abandonedClaim(t, trip.ID)
	f.approvedRequest(t, trip.ID)

	claims, err := f.reconciler().StaleClaims(ctx, 15*time.Minute)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, r.ID, claims[0].RequestID)
	assert.Equal(t, "vault-withdrawal:"+r.ID, claims[0].Memo)
	assert.Equal(t, trip.Address, claims[0].Sender)
	assert.Equal(t, "addr-x", claims[0].Recipient)
	assert.Equal(t, "2", claims[0].Amount)
	assert.GreaterOrEqual(t, claims[0].Age, 59*time.Minute)

	claims, err = f.reconciler().StaleClaims(ctx, 2*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, claims)

	_, err = f.reconciler().StaleClaims(ctx, -time.Minute)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReleaseClaimAllowsRetry(t *testing.T) {
	f := newFixture(t, lock.NewLocal())
	ctx := context.Background()
	trip := f.tripVault(t, "20")
	r := f.abandonedClaim(t, trip.ID)

	_, err := f.execution.Execute(ctx, r.ID, "bob")
	assert.ErrorIs(t, err, ErrState)

	require.NoError(t, f.reconciler().ReleaseClaim(ctx, r.ID))
	assert.Equal(t, 1, f.logs.FilterMessage("execution claim released by operator").Len())

	executed, err := f.execution.Execute(ctx, r.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, model.StatusExecuted, executed.Status)
	assert.Equal(t, 1, f.ledger.transferCount())

	// nothing left to release
	assert.ErrorIs(t, f.reconciler().ReleaseClaim(ctx, r.ID), ErrState)
	assert.ErrorIs(t, f.reconciler().ReleaseClaim(ctx, " "), ErrValidation)
}

func TestRecordPaymentAfterLostCompletion(t *testing.T) {
	f := newFixture(t, lock.NewLocal())
	ctx := context.Background()
	trip := f.tripVault(t, "20")
	r := f.approvedRequest(t, trip.ID)

	broken := NewExecutionEngine(f.store, failingCompletion{f.store}, f.ledger, f.sealer, lock.NewLocal(), f.logger)
	_, err := broken.Execute(ctx, r.ID, "bob")
	require.ErrorIs(t, err, ErrPersistence)

	// the payment is on the ledger under the request's memo
	f.ledger.deposit("sig-1", trip.Address, "addr-x", "SOL", "2")

	rec := f.reconciler()
	rec.now = func() time.Time { return time.Now().Add(time.Minute) }
	claims, err := rec.StaleClaims(ctx, 0)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, MemoPrefix+r.ID, claims[0].Memo)

	executed, err := rec.RecordPayment(ctx, r.ID, "sig-1", "Bob")
	require.NoError(t, err)
	assert.Equal(t, model.StatusExecuted, executed.Status)
	assert.Equal(t, "bob", executed.ExecutedBy)
	assert.Equal(t, "sig-1", executed.TransactionHash)

	stored, err := f.store.GetWithdrawalRequest(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusExecuted, stored.Status)
	assert.Equal(t, executed.Version, stored.Version)

	records, err := f.registry.Transactions(ctx, trip.ID, "alice")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, r.ID, records[0].RequestID)
	assert.Equal(t, "bob", records[0].RecordedBy)

	// no second payment and no second record
	_, err = f.execution.Execute(ctx, r.ID, "carol")
	assert.ErrorIs(t, err, ErrState)
	_, err = rec.RecordPayment(ctx, r.ID, "sig-1", "bob")
	assert.ErrorIs(t, err, ErrState)
	assert.Equal(t, 1, f.ledger.transferCount())
}

func TestRecordPaymentChecksLedger(t *testing.T) {
	f := newFixture(t, lock.NewLocal())
	ctx := context.Background()
	trip := f.tripVault(t, "20")
	r := f.abandonedClaim(t, trip.ID)
	f.ledger.deposit("short", trip.Address, "addr-x", "SOL", "1.5")
	f.ledger.deposit("elsewhere", trip.Address, "addr-y", "SOL", "2")
	f.ledger.deposit("foreign", "someone-else", "addr-x", "SOL", "2")
	f.ledger.deposit("ok", trip.Address, "addr-x", "SOL", "2")

	tests := []struct {
		name     string
		hash     string
		executor string
		want     error
	}{
		{"missing hash", "", "bob", ErrValidation},
		{"missing executor", "ok", "", ErrValidation},
		{"non member", "ok", "dave", ErrAuthorization},
		{"unconfirmed", "nope", "bob", ErrNotFound},
		{"underpaid", "short", "bob", ErrValidation},
		{"other recipient", "elsewhere", "bob", ErrValidation},
		{"other sender", "foreign", "bob", ErrValidation},
	}
	rec := f.reconciler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rec.RecordPayment(ctx, r.ID, tt.hash, tt.executor)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	claim, err := f.store.GetExecutionClaim(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "lost-claim", claim.Claim)

	_, err = rec.RecordPayment(ctx, r.ID, "ok", "carol")
	require.NoError(t, err)
}

func TestReconcileRequiresClaim(t *testing.T) {
	f := newFixture(t, lock.NewLocal())
	ctx := context.Background()
	trip := f.tripVault(t, "20")
	r := f.approvedRequest(t, trip.ID)
	f.ledger.deposit("ok", trip.Address, "addr-x", "SOL", "2")

	_, err := f.reconciler().RecordPayment(ctx, r.ID, "ok", "bob")
	assert.ErrorIs(t, err, ErrState)

	stored, err := f.store.GetWithdrawalRequest(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, stored.Status)
}

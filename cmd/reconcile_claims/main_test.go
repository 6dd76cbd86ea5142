package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/AlexZinkM/friend-vault/internal/model"
	"github.com/AlexZinkM/friend-vault/vault"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReconciler struct {
	claims    []vault.StaleClaim
	olderThan time.Duration
	released  string
	paid      []string
	err       error
}

func (s *stubReconciler) StaleClaims(_ context.Context, olderThan time.Duration) ([]vault.StaleClaim, error) {
	s.olderThan = olderThan
	return s.claims, s.err
}

func (s *stubReconciler) ReleaseClaim(_ context.Context, requestID string) error {
	s.released = requestID
	return s.err
}

func (s *stubReconciler) RecordPayment(_ context.Context, requestID, txHash, executor string) (model.WithdrawalRequest, error) {
	s.paid = []string{requestID, txHash, executor}
	if s.err != nil {
		return model.WithdrawalRequest{}, s.err
	}
	return model.WithdrawalRequest{ID: requestID, ExecutedBy: executor, TransactionHash: txHash, Status: model.StatusExecuted}, nil
}

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, opts.olderThan)

	opts, err = parseOptions([]string{"-paid", "r1", "-tx", "sig", "-executor", "bob"})
	require.NoError(t, err)
	assert.Equal(t, "r1", opts.paid)

	for _, args := range [][]string{
		{"-release", "r1", "-paid", "r2", "-tx", "sig", "-executor", "bob"},
		{"-paid", "r1"},
		{"-tx", "sig"},
		{"-older-than", "soon"},
		{"r1"},
	} {
		_, err := parseOptions(args)
		assert.Error(t, err, "%v", args)
	}
}

func TestReconcileListsClaimsWithMemo(t *testing.T) {
	stub := &stubReconciler{claims: []vault.StaleClaim{{
		ExecutionClaim: model.ExecutionClaim{
			RequestID: "r1",
			VaultID:   "v1",
			ClaimedAt: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
			Amount:    "2",
			AssetRef:  model.NativeAssetCode,
			Sender:    "vault-addr",
			Recipient: "dest",
		},
		Memo: vault.MemoPrefix + "r1",
	}}}
	var out bytes.Buffer

	require.NoError(t, reconcile(context.Background(), stub, options{olderThan: time.Hour}, &out))
	assert.Equal(t, time.Hour, stub.olderThan)
	assert.Contains(t, out.String(), "vault-withdrawal:r1")
	assert.Contains(t, out.String(), "vault-addr")
	assert.Contains(t, out.String(), "2026-05-01T09:00:00Z")
}

func TestReconcileNoClaims(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, reconcile(context.Background(), &stubReconciler{}, options{olderThan: time.Minute}, &out))
	assert.Contains(t, out.String(), "no execution claims")
}

func TestReconcileReleaseAndPaid(t *testing.T) {
	stub := &stubReconciler{}
	var out bytes.Buffer

	require.NoError(t, reconcile(context.Background(), stub, options{release: "r1"}, &out))
	assert.Equal(t, "r1", stub.released)

	require.NoError(t, reconcile(context.Background(), stub, options{paid: "r2", tx: "sig", executor: "bob"}, &out))
	assert.Equal(t, []string{"r2", "sig", "bob"}, stub.paid)
	assert.Contains(t, out.String(), "recorded request r2 as executed by bob in sig")

	stub.err = &vault.Error{Kind: vault.KindState, Message: "request r3 holds no execution claim"}
	assert.ErrorIs(t, reconcile(context.Background(), stub, options{release: "r3"}, &out), vault.ErrState)
}

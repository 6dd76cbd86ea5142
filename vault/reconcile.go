package vault

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AlexZinkM/friend-vault/internal/common"
	"github.com/AlexZinkM/friend-vault/internal/lock"
	"github.com/AlexZinkM/friend-vault/internal/model"
	"github.com/AlexZinkM/friend-vault/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StaleClaim is an execution claim older than the reconciliation cutoff,
// with the memo its payment carries if it reached the ledger.
type StaleClaim struct {
	model.ExecutionClaim
	Memo string
	Age  time.Duration
}

// Reconciler resolves execution claims left behind when an execution died
// between claiming and recording. An operator checks the ledger for the
// request's memo and then either releases the claim or records the payment.
type Reconciler struct {
	vaults   storage.VaultStore
	requests storage.WithdrawalStore
	ledger   Ledger
	locks    lock.Manager
	logger   *zap.Logger
	now      func() time.Time
}

// NewReconciler creates a Reconciler.
func NewReconciler(vaults storage.VaultStore, requests storage.WithdrawalStore, ledger Ledger, locks lock.Manager, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		vaults:   vaults,
		requests: requests,
		ledger:   ledger,
		locks:    locks,
		logger:   logger,
		now:      time.Now,
	}
}

// StaleClaims lists claims taken more than olderThan ago, oldest first.
func (r *Reconciler) StaleClaims(ctx context.Context, olderThan time.Duration) ([]StaleClaim, error) {
	if olderThan < 0 {
		return nil, validationError("claim age must not be negative")
	}
	now := r.now().UTC()
	claims, err := r.requests.ListExecutionClaims(ctx, now.Add(-olderThan))
	if err != nil {
		return nil, persistenceError(err, "failed to list execution claims")
	}
	out := make([]StaleClaim, 0, len(claims))
	for _, c := range claims {
		out = append(out, StaleClaim{
			ExecutionClaim: c,
			Memo:           MemoPrefix + c.RequestID,
			Age:            now.Sub(c.ClaimedAt),
		})
	}
	return out, nil
}

// ReleaseClaim drops the claim on requestID so the request can be executed
// again. Only call it once the ledger shows no payment with the request's memo.
func (r *Reconciler) ReleaseClaim(ctx context.Context, requestID string) error {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return validationError("request id is required")
	}
	return r.withClaim(ctx, requestID, func(ctx context.Context, c model.ExecutionClaim) error {
		if err := r.requests.ReleaseExecution(ctx, c.RequestID, c.Claim); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return stateError("claim on request %s changed while releasing", c.RequestID)
			}
			return persistenceError(err, "failed to release execution claim")
		}
		r.logger.Warn("execution claim released by operator",
			zap.String("vault_id", c.VaultID),
			zap.String("request_id", c.RequestID),
			zap.String("claim", c.Claim),
			zap.Time("claimed_at", c.ClaimedAt))
		return nil
	})
}

// RecordPayment completes a claimed request with a payment found on the
// ledger. The transaction must have succeeded and credited the request's
// recipient with at least the requested amount.
func (r *Reconciler) RecordPayment(ctx context.Context, requestID, txHash, executor string) (model.WithdrawalRequest, error) {
	requestID = strings.TrimSpace(requestID)
	txHash = strings.TrimSpace(txHash)
	executor = model.NormalizeIdentity(executor)
	if requestID == "" || txHash == "" {
		return model.WithdrawalRequest{}, validationError("request id and transaction hash are required")
	}
	if executor == "" {
		return model.WithdrawalRequest{}, validationError("executor identity is required")
	}

	var out model.WithdrawalRequest
	err := r.withClaim(ctx, requestID, func(ctx context.Context, c model.ExecutionClaim) error {
		req, v, err := loadRequest(ctx, r.vaults, r.requests, c.RequestID)
		if err != nil {
			return err
		}
		if !v.IsMember(executor) {
			return authorizationError("%q is not a member of vault %s", executor, v.ID)
		}
		if err := r.verifyPayment(ctx, c, txHash); err != nil {
			return err
		}

		now := r.now().UTC()
		execution := model.Execution{ExecutedAt: now, ExecutedBy: executor, TransactionHash: txHash}
		record := model.VaultTransaction{
			ID:              uuid.NewString(),
			VaultID:         c.VaultID,
			RequestID:       c.RequestID,
			RecordedBy:      executor,
			Type:            model.VaultTransactionWithdrawal,
			Amount:          c.Amount,
			AssetRef:        c.AssetRef,
			Sender:          c.Sender,
			Recipient:       c.Recipient,
			TransactionHash: txHash,
			CreatedAt:       now,
		}
		if err := r.requests.CompleteExecution(ctx, c.RequestID, c.Claim, execution, record); err != nil {
			if errors.Is(err, storage.ErrConflict) || errors.Is(err, storage.ErrAlreadyExists) {
				return stateError("request %s could not be completed: %v", c.RequestID, err)
			}
			return persistenceError(err, "failed to record payment")
		}

		r.logger.Warn("payment recorded by operator",
			zap.String("vault_id", c.VaultID),
			zap.String("request_id", c.RequestID),
			zap.String("executed_by", executor),
			zap.String("transaction_hash", txHash))

		out = req.Clone()
		out.Status = model.StatusExecuted
		out.ExecutedAt = &now
		out.ExecutedBy = executor
		out.TransactionHash = txHash
		out.Version = req.Version + 1
		return nil
	})
	if err != nil {
		return model.WithdrawalRequest{}, err
	}
	return out, nil
}

func (r *Reconciler) verifyPayment(ctx context.Context, c model.ExecutionClaim, txHash string) error {
	observed, err := r.ledger.ObserveTransfer(ctx, txHash, c.Recipient, c.AssetRef)
	if err != nil {
		if errors.Is(err, model.ErrTransferNotFound) {
			return notFoundError("transaction %s is not confirmed on the ledger", txHash)
		}
		return ledgerError(err, "failed to look up transaction %s", txHash)
	}
	if !observed.Succeeded {
		return validationError("transaction %s failed on the ledger", txHash)
	}
	if observed.Sender != "" && observed.Sender != c.Sender {
		return validationError("transaction %s was not paid from vault %s", txHash, c.VaultID)
	}
	paid, err := common.ParseAmount(observed.Amount)
	if err != nil {
		return ledgerError(err, "ledger reported an unreadable amount for %s", txHash)
	}
	want, err := common.ParseAmount(c.Amount)
	if err != nil {
		return persistenceError(err, "stored amount of request %s is unreadable", c.RequestID)
	}
	if paid.LessThan(want) {
		return validationError("transaction %s paid %s of %s requested by %s",
			txHash, common.FormatAmount(paid), c.Amount, c.RequestID)
	}
	return nil
}

// withClaim runs fn on the current claim of requestID under the request lock,
// so a live execution and the operator never act on the same claim.
func (r *Reconciler) withClaim(ctx context.Context, requestID string, fn func(context.Context, model.ExecutionClaim) error) error {
	err := r.locks.WithLock(ctx, lock.WithdrawalKey(requestID), func(ctx context.Context) error {
		c, err := r.requests.GetExecutionClaim(ctx, requestID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return stateError("request %s holds no execution claim", requestID)
			}
			return persistenceError(err, "failed to load execution claim")
		}
		return fn(ctx, c)
	})
	if err != nil && KindOf(err) == "" {
		busy := stateError("request %s is busy, retry later", requestID)
		busy.Cause = err
		return busy
	}
	return err
}

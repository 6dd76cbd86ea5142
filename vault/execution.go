package vault

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AlexZinkM/friend-vault/internal/lock"
	"github.com/AlexZinkM/friend-vault/internal/model"
	"github.com/AlexZinkM/friend-vault/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemoPrefix tags every withdrawal payment with its request id on the ledger.
const MemoPrefix = "vault-withdrawal:"

// ExecutionEngine pays out approved requests exactly once.
type ExecutionEngine struct {
	vaults   storage.VaultStore
	requests storage.WithdrawalStore
	ledger   Ledger
	sealer   SecretSealer
	locks    lock.Manager
	logger   *zap.Logger
	now      func() time.Time
}

// NewExecutionEngine creates an ExecutionEngine. It is the only component
// that opens custodial secrets.
func NewExecutionEngine(vaults storage.VaultStore, requests storage.WithdrawalStore, ledger Ledger, sealer SecretSealer, locks lock.Manager, logger *zap.Logger) *ExecutionEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecutionEngine{
		vaults:   vaults,
		requests: requests,
		ledger:   ledger,
		sealer:   sealer,
		locks:    locks,
		logger:   logger,
		now:      time.Now,
	}
}

// Execute submits the payment of an approved request and records it. The
// request is claimed with a conditional write before the ledger is called, so
// concurrent callers cannot both pay. A ledger failure releases the claim and
// leaves the request approved for a retry.
func (e *ExecutionEngine) Execute(ctx context.Context, requestID, executor string) (model.WithdrawalRequest, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return model.WithdrawalRequest{}, validationError("request id is required")
	}
	executor = model.NormalizeIdentity(executor)

	var executed model.WithdrawalRequest
	err := e.locks.WithLock(ctx, lock.WithdrawalKey(requestID), func(ctx context.Context) error {
		var err error
		executed, err = e.execute(ctx, requestID, executor)
		return err
	})
	if err != nil {
		if KindOf(err) == "" {
			busy := stateError("request %s is busy, retry execution", requestID)
			busy.Cause = err
			return model.WithdrawalRequest{}, busy
		}
		return model.WithdrawalRequest{}, err
	}
	return executed, nil
}

func (e *ExecutionEngine) execute(ctx context.Context, requestID, executor string) (model.WithdrawalRequest, error) {
	r, v, err := loadRequest(ctx, e.vaults, e.requests, requestID)
	if err != nil {
		return model.WithdrawalRequest{}, err
	}
	if !v.IsMember(executor) {
		return model.WithdrawalRequest{}, authorizationError("%q is not a member of vault %s", executor, v.ID)
	}
	if r.Status != model.StatusApproved {
		return model.WithdrawalRequest{}, notExecutable(r)
	}

	claim := uuid.NewString()
	if err := e.requests.ClaimExecution(ctx, r.ID, claim, e.now().UTC()); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return model.WithdrawalRequest{}, e.claimLost(ctx, r.ID)
		}
		return model.WithdrawalRequest{}, persistenceError(err, "failed to claim request for execution")
	}

	hash, err := e.pay(ctx, r, v)
	if err != nil {
		e.release(r.ID, claim)
		return model.WithdrawalRequest{}, err
	}

	// Money has moved: recording must not be abandoned because the caller went away.
	recordCtx := context.WithoutCancel(ctx)
	now := e.now().UTC()
	execution := model.Execution{ExecutedAt: now, ExecutedBy: executor, TransactionHash: hash}
	record := model.VaultTransaction{
		ID:              uuid.NewString(),
		VaultID:         v.ID,
		RequestID:       r.ID,
		RecordedBy:      executor,
		Type:            model.VaultTransactionWithdrawal,
		Amount:          r.Amount,
		AssetRef:        r.AssetRef,
		Sender:          v.CustodialAddress,
		Recipient:       r.Recipient,
		TransactionHash: hash,
		CreatedAt:       now,
	}
	if err := e.requests.CompleteExecution(recordCtx, r.ID, claim, execution, record); err != nil {
		e.logger.Error("payment submitted but execution was not recorded",
			zap.Bool("reconciliation_required", true),
			zap.String("vault_id", v.ID),
			zap.String("request_id", r.ID),
			zap.String("transaction_hash", hash),
			zap.String("amount", r.Amount),
			zap.String("asset", r.AssetRef),
			zap.String("recipient", r.Recipient),
			zap.Error(err))
		perr := persistenceError(err, "payment %s was submitted for request %s but could not be recorded", hash, r.ID)
		perr.ReconciliationRequired = true
		return model.WithdrawalRequest{}, perr
	}

	e.logger.Info("withdrawal executed",
		zap.String("vault_id", v.ID),
		zap.String("request_id", r.ID),
		zap.String("executed_by", executor),
		zap.String("transaction_hash", hash))

	out := r.Clone()
	out.Status = model.StatusExecuted
	out.ExecutedAt = &now
	out.ExecutedBy = executor
	out.TransactionHash = hash
	// claim and completion each bump the version
	out.Version = r.Version + 2
	return out, nil
}

// pay opens the custodial secret for the duration of one transfer.
func (e *ExecutionEngine) pay(ctx context.Context, r model.WithdrawalRequest, v model.Vault) (string, error) {
	privateKey, err := e.sealer.OpenPrivateKey(v.SealedSecret)
	if err != nil {
		return "", persistenceError(err, "failed to open custodial secret of vault %s", v.ID)
	}
	defer clear(privateKey)

	hash, err := e.ledger.Transfer(ctx, model.TransferOrder{
		From:       v.CustodialAddress,
		PrivateKey: privateKey,
		To:         r.Recipient,
		Amount:     r.Amount,
		AssetRef:   r.AssetRef,
		Memo:       MemoPrefix + r.ID,
	})
	if err != nil {
		e.logger.Warn("ledger transfer failed",
			zap.String("vault_id", v.ID),
			zap.String("request_id", r.ID),
			zap.Error(err))
		return "", ledgerError(err, "ledger transfer failed")
	}
	if hash == "" {
		return "", ledgerError(nil, "ledger returned no transaction hash")
	}
	return hash, nil
}

func (e *ExecutionEngine) release(requestID, claim string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.requests.ReleaseExecution(ctx, requestID, claim); err != nil {
		e.logger.Error("failed to release execution claim",
			zap.String("request_id", requestID),
			zap.String("claim", claim),
			zap.String("memo", MemoPrefix+requestID),
			zap.Error(err))
	}
}

// claimLost explains why a claim on an approved request did not succeed.
func (e *ExecutionEngine) claimLost(ctx context.Context, requestID string) error {
	r, err := e.requests.GetWithdrawalRequest(ctx, requestID)
	if err != nil {
		return stateError("request %s can no longer be executed", requestID)
	}
	if r.Status == model.StatusApproved {
		return stateError("execution of request %s is already in progress", requestID)
	}
	return notExecutable(r)
}

func notExecutable(r model.WithdrawalRequest) error {
	switch r.Status {
	case model.StatusExecuted:
		return stateError("request %s was already executed in transaction %s", r.ID, r.TransactionHash)
	case model.StatusRejected:
		return stateError("request %s was rejected", r.ID)
	case model.StatusPending:
		return stateError("request %s is not approved yet", r.ID)
	case model.StatusApproved:
		return stateError("request %s is approved", r.ID)
	}
	return stateError("request %s has unknown status %q", r.ID, r.Status)
}

package vault

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AlexZinkM/friend-vault/internal/common"
	"github.com/AlexZinkM/friend-vault/internal/model"
	"github.com/AlexZinkM/friend-vault/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RequestStore is the persistence a RequestManager writes to.
type RequestStore interface {
	CreateWithdrawalRequest(ctx context.Context, request model.WithdrawalRequest) error
	ListWithdrawalRequests(ctx context.Context, vaultID string) ([]model.WithdrawalRequest, error)
}

// RequestManager opens withdrawal requests against a vault.
type RequestManager struct {
	registry   *Registry
	store      RequestStore
	ledger     Ledger
	minReserve decimal.Decimal
	logger     *zap.Logger
	now        func() time.Time
}

// NewRequestManager creates a RequestManager. minReserve is the native balance
// a vault must still hold after any native withdrawal.
func NewRequestManager(registry *Registry, store RequestStore, ledger Ledger, minReserve decimal.Decimal, logger *zap.Logger) *RequestManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestManager{
		registry:   registry,
		store:      store,
		ledger:     ledger,
		minReserve: minReserve,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateRequest opens a pending withdrawal approved by its requester.
func (m *RequestManager) CreateRequest(ctx context.Context, in model.CreateWithdrawalRequest) (model.WithdrawalRequest, error) {
	v, err := m.registry.MemberVault(ctx, in.VaultID, in.RequestedBy)
	if err != nil {
		return model.WithdrawalRequest{}, err
	}

	amount, err := common.ParsePositiveAmount(in.Amount)
	if err != nil {
		return model.WithdrawalRequest{}, validationError("amount must be a positive number")
	}
	recipient := strings.TrimSpace(in.Recipient)
	if recipient == "" {
		return model.WithdrawalRequest{}, validationError("recipient is required")
	}
	if err := m.ledger.ValidateAddress(recipient); err != nil {
		return model.WithdrawalRequest{}, validationError("invalid recipient address: %v", err)
	}

	assetRef := model.NormalizeAssetRef(in.AssetRef)
	if model.IsNativeAsset(assetRef) {
		if _, err := common.ToBaseUnits(amount.String(), common.SOLDecimals); err != nil {
			return model.WithdrawalRequest{}, validationError("invalid amount: %v", err)
		}
		if err := m.checkReserve(ctx, v, amount); err != nil {
			return model.WithdrawalRequest{}, err
		}
	} else if err := m.ledger.ValidateAddress(assetRef); err != nil {
		return model.WithdrawalRequest{}, validationError("invalid asset reference: %v", err)
	}
	// Token balances are left to the ledger at execution time.

	requester := model.NormalizeIdentity(in.RequestedBy)
	req := model.WithdrawalRequest{
		ID:          uuid.NewString(),
		VaultID:     v.ID,
		Amount:      common.FormatAmount(amount),
		AssetRef:    assetRef,
		Recipient:   recipient,
		RequestedBy: requester,
		RequestedAt: m.now().UTC(),
		Status:      model.StatusPending,
		Approvals:   model.NewIdentitySet(requester),
		Version:     1,

		RequiredApprovals: v.Members.Len(),
	}
	// a vault whose only member is the requester is unanimous at once
	req.Status = nextStatus(req, v.Members.Len())
	if err := m.store.CreateWithdrawalRequest(ctx, req); err != nil {
		return model.WithdrawalRequest{}, persistenceError(err, "failed to save withdrawal request")
	}

	m.logger.Info("withdrawal requested",
		zap.String("request_id", req.ID),
		zap.String("vault_id", v.ID),
		zap.String("amount", req.Amount),
		zap.String("asset", req.AssetRef),
		zap.String("requested_by", requester),
		zap.String("status", string(req.Status)))
	return req, nil
}

func (m *RequestManager) checkReserve(ctx context.Context, v model.Vault, amount decimal.Decimal) error {
	balance, err := m.registry.NativeBalance(ctx, v)
	if err != nil {
		return ledgerError(err, "failed to fetch vault balance")
	}
	if balance.Sub(amount).LessThan(m.minReserve) {
		return newError(KindInsufficientFunds,
			"withdrawing %s %s would leave %s, below the %s reserve",
			common.FormatAmount(amount), model.NativeAssetCode,
			common.FormatAmount(balance.Sub(amount)), common.FormatAmount(m.minReserve))
	}
	return nil
}

// RequestsForVault returns every request of vaultID, newest first.
func (m *RequestManager) RequestsForVault(ctx context.Context, vaultID string) ([]model.WithdrawalRequest, error) {
	if _, err := m.registry.Vault(ctx, vaultID); err != nil {
		return nil, err
	}
	requests, err := m.store.ListWithdrawalRequests(ctx, strings.TrimSpace(vaultID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, notFoundError("vault %s not found", vaultID)
		}
		return nil, persistenceError(err, "failed to list withdrawal requests")
	}
	return requests, nil
}

// MemberRequests returns the requests of vaultID on behalf of requester, newest first.
func (m *RequestManager) MemberRequests(ctx context.Context, vaultID, requester string) ([]model.WithdrawalRequest, error) {
	if _, err := m.registry.MemberVault(ctx, vaultID, requester); err != nil {
		return nil, err
	}
	return m.RequestsForVault(ctx, vaultID)
}

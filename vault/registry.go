package vault

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AlexZinkM/friend-vault/internal/common"
	"github.com/AlexZinkM/friend-vault/internal/model"
	"github.com/AlexZinkM/friend-vault/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// RegistryStore is the persistence a Registry reads and writes.
type RegistryStore interface {
	storage.VaultStore
	ListWithdrawalRequests(ctx context.Context, vaultID string) ([]model.WithdrawalRequest, error)
	storage.TransactionStore
}

// Registry creates vaults and serves member-scoped views of them.
type Registry struct {
	store      RegistryStore
	identities IdentityChecker
	ledger     Ledger
	sealer     SecretSealer
	prices     PriceSource
	currency   string
	logger     *zap.Logger
	now        func() time.Time
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithFiatValuation values vault balances in currency using prices.
func WithFiatValuation(prices PriceSource, currency string) RegistryOption {
	return func(r *Registry) {
		r.prices = prices
		r.currency = strings.ToLower(strings.TrimSpace(currency))
	}
}

// NewRegistry creates a Registry.
func NewRegistry(store RegistryStore, identities IdentityChecker, ledger Ledger, sealer SecretSealer, logger *zap.Logger, opts ...RegistryOption) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		store:      store,
		identities: identities,
		ledger:     ledger,
		sealer:     sealer,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateVault validates every member with the identity directory, provisions a
// custodial account and stores the vault. Nothing is stored when any member is unknown.
func (r *Registry) CreateVault(ctx context.Context, req model.CreateVaultRequest) (model.VaultSummary, error) {
	name := strings.TrimSpace(req.Name)
	creator := model.NormalizeIdentity(req.CreatorIdentity)
	if name == "" {
		return model.VaultSummary{}, validationError("name is required")
	}
	if creator == "" {
		return model.VaultSummary{}, validationError("creatorIdentity is required")
	}

	members := model.NewIdentitySet(req.MemberIdentities...)
	members.Add(creator)

	var invalid []string
	for _, identity := range members.Slice() {
		ok, err := r.identities.Exists(ctx, identity)
		if err != nil {
			// an unreachable directory cannot vouch for anyone
			r.logger.Warn("identity check failed", zap.String("identity", identity), zap.Error(err))
			ok = false
		}
		if !ok {
			invalid = append(invalid, identity)
		}
	}
	if len(invalid) > 0 {
		return model.VaultSummary{}, &Error{
			Kind:           KindValidation,
			Message:        fmt.Sprintf("unknown member identities: %s", strings.Join(invalid, ", ")),
			InvalidMembers: invalid,
		}
	}

	address, privateKey, err := r.ledger.NewAccount()
	if err != nil {
		return model.VaultSummary{}, ledgerError(err, "failed to create custodial account")
	}
	defer clear(privateKey)

	sealed, err := r.sealer.SealPrivateKey(privateKey)
	if err != nil {
		return model.VaultSummary{}, persistenceError(err, "failed to seal custodial secret")
	}

	now := r.now().UTC()
	v := model.Vault{
		ID:               uuid.NewString(),
		Name:             name,
		Description:      strings.TrimSpace(req.Description),
		CustodialAddress: address,
		SealedSecret:     sealed,
		CreatedBy:        creator,
		Members:          members,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := r.store.CreateVault(ctx, v); err != nil {
		return model.VaultSummary{}, persistenceError(err, "failed to save vault")
	}

	r.logger.Info("vault created",
		zap.String("vault_id", v.ID),
		zap.String("address", v.CustodialAddress),
		zap.String("created_by", creator),
		zap.Int("members", members.Len()))

	summary := model.NewVaultSummary(v, creator)
	summary.BalanceAvailable = true
	return summary, nil
}

// VaultsForMember lists identity's vaults with live native balances. A vault
// whose balance cannot be fetched is listed with "0" and BalanceAvailable=false.
func (r *Registry) VaultsForMember(ctx context.Context, identity string) ([]model.VaultSummary, error) {
	identity = model.NormalizeIdentity(identity)
	if identity == "" {
		return nil, validationError("member is required")
	}

	vaults, err := r.store.ListVaultsForMember(ctx, identity)
	if err != nil {
		return nil, persistenceError(err, "failed to list vaults")
	}

	summaries := make([]model.VaultSummary, 0, len(vaults))
	for _, v := range vaults {
		summary, _ := r.summaryWithBalance(ctx, v, identity)
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// VaultDetails returns the vault with its live balance and withdrawal requests.
func (r *Registry) VaultDetails(ctx context.Context, vaultID, requester string) (model.VaultDetails, error) {
	v, err := r.MemberVault(ctx, vaultID, requester)
	if err != nil {
		return model.VaultDetails{}, err
	}

	summary, balance := r.summaryWithBalance(ctx, v, requester)

	requests, err := r.store.ListWithdrawalRequests(ctx, v.ID)
	if err != nil {
		return model.VaultDetails{}, persistenceError(err, "failed to list withdrawal requests")
	}

	details := model.VaultDetails{
		VaultSummary:       summary,
		PendingRequests:    make([]model.WithdrawalRequestResponse, 0),
		WithdrawalRequests: make([]model.WithdrawalRequestResponse, 0, len(requests)),
	}
	for _, req := range requests {
		resp := model.NewWithdrawalRequestResponse(req)
		details.WithdrawalRequests = append(details.WithdrawalRequests, resp)
		if req.Status == model.StatusPending {
			details.PendingRequests = append(details.PendingRequests, resp)
		}
	}

	if summary.BalanceAvailable {
		details.FiatValue = r.fiatValue(ctx, balance)
	}
	return details, nil
}

// DepositAddress returns the custodial address with a QR code for out-of-band deposits.
func (r *Registry) DepositAddress(ctx context.Context, vaultID, requester string) (model.DepositAddress, error) {
	v, err := r.MemberVault(ctx, vaultID, requester)
	if err != nil {
		return model.DepositAddress{}, err
	}

	qr, err := generateQRCode(v.CustodialAddress)
	if err != nil {
		return model.DepositAddress{}, internalError(err, "failed to generate QR code for vault %s", v.ID)
	}
	return model.DepositAddress{
		VaultID: v.ID,
		Address: v.CustodialAddress,
		Asset:   model.NativeAssetCode,
		QR:      qr,
	}, nil
}

// Transactions returns the recorded deposits and withdrawals of a vault, newest first.
func (r *Registry) Transactions(ctx context.Context, vaultID, requester string) ([]model.VaultTransaction, error) {
	v, err := r.MemberVault(ctx, vaultID, requester)
	if err != nil {
		return nil, err
	}
	records, err := r.store.ListVaultTransactions(ctx, v.ID)
	if err != nil {
		return nil, persistenceError(err, "failed to list vault transactions")
	}
	return records, nil
}

// RecordDeposit records a transfer into the vault that a member reports by
// transaction hash. The amount, sender and success are read from the ledger,
// never taken from the caller, and each transaction counts once per vault.
func (r *Registry) RecordDeposit(ctx context.Context, vaultID string, req model.RecordDepositRequest) (model.VaultTransaction, error) {
	depositor := model.NormalizeIdentity(req.DepositorIdentity)
	if depositor == "" {
		return model.VaultTransaction{}, validationError("depositorIdentity is required")
	}
	hash := strings.TrimSpace(req.TransactionHash)
	if hash == "" {
		return model.VaultTransaction{}, validationError("transactionHash is required")
	}
	v, err := r.MemberVault(ctx, vaultID, depositor)
	if err != nil {
		return model.VaultTransaction{}, err
	}
	assetRef := model.NormalizeAssetRef(req.AssetRef)

	observed, err := r.ledger.ObserveTransfer(ctx, hash, v.CustodialAddress, assetRef)
	if err != nil {
		if errors.Is(err, model.ErrTransferNotFound) {
			return model.VaultTransaction{}, notFoundError("transaction %s is not confirmed on the ledger", hash)
		}
		return model.VaultTransaction{}, ledgerError(err, "failed to look up transaction %s", hash)
	}
	if !observed.Succeeded {
		return model.VaultTransaction{}, validationError("transaction %s failed on the ledger", hash)
	}
	amount, err := common.ParseAmount(observed.Amount)
	if err != nil {
		return model.VaultTransaction{}, ledgerError(err, "ledger reported an unreadable amount for %s", hash)
	}
	if !amount.IsPositive() {
		return model.VaultTransaction{}, validationError("transaction %s credited no %s to vault %s", hash, assetRef, v.ID)
	}

	createdAt := observed.BlockTime
	if createdAt.IsZero() {
		createdAt = r.now().UTC()
	}
	record := model.VaultTransaction{
		ID:              uuid.NewString(),
		VaultID:         v.ID,
		RecordedBy:      depositor,
		Type:            model.VaultTransactionDeposit,
		Amount:          common.FormatAmount(amount),
		AssetRef:        assetRef,
		Sender:          observed.Sender,
		Recipient:       v.CustodialAddress,
		TransactionHash: observed.TransactionHash,
		CreatedAt:       createdAt,
	}
	if record.TransactionHash == "" {
		record.TransactionHash = hash
	}
	if err := r.store.RecordDeposit(ctx, record); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return model.VaultTransaction{}, stateError("transaction %s is already recorded for vault %s", hash, v.ID)
		}
		return model.VaultTransaction{}, persistenceError(err, "failed to record deposit")
	}

	r.logger.Info("deposit recorded",
		zap.String("vault_id", v.ID),
		zap.String("recorded_by", depositor),
		zap.String("transaction_hash", record.TransactionHash),
		zap.String("amount", record.Amount),
		zap.String("asset", assetRef))
	return record, nil
}

// MemberVault loads a vault on behalf of identity, failing when identity is not a member.
func (r *Registry) MemberVault(ctx context.Context, vaultID, identity string) (model.Vault, error) {
	v, err := r.Vault(ctx, vaultID)
	if err != nil {
		return model.Vault{}, err
	}
	if !v.IsMember(identity) {
		return model.Vault{}, authorizationError("%q is not a member of vault %s", identity, v.ID)
	}
	return v, nil
}

// Vault loads a vault by id.
func (r *Registry) Vault(ctx context.Context, vaultID string) (model.Vault, error) {
	vaultID = strings.TrimSpace(vaultID)
	if vaultID == "" {
		return model.Vault{}, validationError("vaultId is required")
	}
	v, err := r.store.GetVault(ctx, vaultID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Vault{}, notFoundError("vault %s not found", vaultID)
		}
		return model.Vault{}, persistenceError(err, "failed to load vault")
	}
	return v, nil
}

// NativeBalance fetches the live native balance of v.
func (r *Registry) NativeBalance(ctx context.Context, v model.Vault) (decimal.Decimal, error) {
	return r.ledger.Balance(ctx, v.CustodialAddress, model.NativeAssetCode)
}

func (r *Registry) summaryWithBalance(ctx context.Context, v model.Vault, viewer string) (model.VaultSummary, decimal.Decimal) {
	summary := model.NewVaultSummary(v, viewer)
	balance, err := r.NativeBalance(ctx, v)
	if err != nil {
		r.logger.Warn("failed to fetch vault balance",
			zap.String("vault_id", v.ID),
			zap.String("address", v.CustodialAddress),
			zap.Error(err))
		return summary, decimal.Zero
	}
	summary.Balance = common.FormatAmount(balance)
	summary.BalanceAvailable = true
	return summary, balance
}

func (r *Registry) fiatValue(ctx context.Context, balance decimal.Decimal) *model.FiatValue {
	if r.prices == nil || r.currency == "" {
		return nil
	}
	rate, err := r.prices.NativeRate(ctx, r.currency)
	if err != nil {
		r.logger.Warn("failed to fetch fiat rate", zap.String("currency", r.currency), zap.Error(err))
		return nil
	}
	return &model.FiatValue{
		Currency: strings.ToUpper(r.currency),
		Rate:     rate.String(),
		Amount:   balance.Mul(rate).Round(2).StringFixed(2),
	}
}

// generateQRCode generates QR code of address in base64
func generateQRCode(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}
	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

// Package storage defines persistence contracts for vaults, withdrawal requests,
// executed transfers and the identity directory.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/AlexZinkM/friend-vault/internal/model"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a unique key collision.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrConflict indicates a conditional update found the row in an unexpected state.
	ErrConflict = errors.New("record was modified concurrently")
)

// VaultStore persists vaults and their member sets.
type VaultStore interface {
	CreateVault(ctx context.Context, vault model.Vault) error
	GetVault(ctx context.Context, vaultID string) (model.Vault, error)
	ListVaultsForMember(ctx context.Context, identity string) ([]model.Vault, error)
	ListVaults(ctx context.Context) ([]model.Vault, error)
	UpdateVaultSecret(ctx context.Context, vaultID string, sealed model.SealedSecret, updatedAt time.Time) error
}

// WithdrawalStore persists withdrawal requests, their votes and their execution.
type WithdrawalStore interface {
	CreateWithdrawalRequest(ctx context.Context, request model.WithdrawalRequest) error
	GetWithdrawalRequest(ctx context.Context, requestID string) (model.WithdrawalRequest, error)
	ListWithdrawalRequests(ctx context.Context, vaultID string) ([]model.WithdrawalRequest, error)

	// RecordVote inserts the vote and moves the request to status in one
	// transaction, only if the request is still pending at expectedVersion.
	// Returns ErrConflict otherwise and ErrAlreadyExists on a duplicate voter.
	RecordVote(ctx context.Context, requestID string, vote model.Vote, status model.Status, expectedVersion int64) error

	// ClaimExecution marks an approved, unclaimed request as being executed by claim.
	// Returns ErrConflict when the request is not approved or already claimed.
	ClaimExecution(ctx context.Context, requestID, claim string, at time.Time) error
	// ReleaseExecution drops claim so a failed execution can be retried.
	ReleaseExecution(ctx context.Context, requestID, claim string) error
	// CompleteExecution moves a claimed request to executed and appends the
	// transfer record in one transaction.
	CompleteExecution(ctx context.Context, requestID, claim string, execution model.Execution, record model.VaultTransaction) error

	// ListExecutionClaims returns claims taken before claimedBefore, oldest first.
	ListExecutionClaims(ctx context.Context, claimedBefore time.Time) ([]model.ExecutionClaim, error)
	// GetExecutionClaim returns the open claim on a request, or ErrNotFound.
	GetExecutionClaim(ctx context.Context, requestID string) (model.ExecutionClaim, error)
}

// TransactionStore keeps the append-only record of transfers in and out of vaults.
type TransactionStore interface {
	ListVaultTransactions(ctx context.Context, vaultID string) ([]model.VaultTransaction, error)
	// RecordDeposit appends a deposit. Returns ErrAlreadyExists when the
	// transaction was already recorded for the vault.
	RecordDeposit(ctx context.Context, record model.VaultTransaction) error
}

// IdentityStore is the directory of identities known to the platform.
type IdentityStore interface {
	RegisterIdentity(ctx context.Context, identity string, at time.Time) error
	IdentityExists(ctx context.Context, identity string) (bool, error)
}

// Store is the full persistence surface.
type Store interface {
	VaultStore
	WithdrawalStore
	TransactionStore
	IdentityStore
	Close() error
}

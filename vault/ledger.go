// Package vault implements shared custodial vaults: membership, withdrawal
// requests, unanimity-with-veto voting and exactly-once execution.
package vault

import (
	"context"

	"github.com/AlexZinkM/friend-vault/internal/model"

	"github.com/shopspring/decimal"
)

// IdentityChecker confirms an identity is known to the platform.
type IdentityChecker interface {
	Exists(ctx context.Context, identity string) (bool, error)
}

// Ledger reads balances of and submits payments from custodial accounts.
type Ledger interface {
	// NewAccount returns a fresh address and its private key; the caller zeroes the key.
	NewAccount() (address string, privateKey []byte, err error)
	ValidateAddress(address string) error
	Balance(ctx context.Context, address, assetRef string) (decimal.Decimal, error)
	// Transfer submits a signed payment and returns the transaction hash.
	Transfer(ctx context.Context, order model.TransferOrder) (string, error)
	// ObserveTransfer reads a confirmed transaction and reports what it credited
	// to recipient in assetRef. Returns model.ErrTransferNotFound for an unknown hash.
	ObserveTransfer(ctx context.Context, txHash, recipient, assetRef string) (model.ObservedTransfer, error)
}

// SecretSealer keeps custodial keys sealed at rest.
type SecretSealer interface {
	SealPrivateKey(privateKey []byte) (model.SealedSecret, error)
	OpenPrivateKey(sealed model.SealedSecret) ([]byte, error)
}

// PriceSource values the native asset in a fiat currency.
type PriceSource interface {
	NativeRate(ctx context.Context, currency string) (decimal.Decimal, error)
}

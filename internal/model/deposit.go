package model

import (
	"errors"
	"time"
)

// ErrTransferNotFound reports that the ledger has no confirmed transaction for a hash.
var ErrTransferNotFound = errors.New("transaction not found on ledger")

// RecordDepositRequest represents request for POST /vaults/{vaultId}/deposits
type RecordDepositRequest struct {
	DepositorIdentity string `json:"depositorIdentity"`
	TransactionHash   string `json:"transactionHash"`
	AssetRef          string `json:"assetRef"`
}

// ObservedTransfer is what one confirmed ledger transaction credited to Recipient.
type ObservedTransfer struct {
	TransactionHash string
	// Sender is the account debited most in the asset; empty when none was.
	Sender    string
	Recipient string
	AssetRef  string
	// Amount is the net credit to Recipient, "0" when it received nothing.
	Amount    string
	Succeeded bool
	BlockTime time.Time
}

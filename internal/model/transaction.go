package model

import "time"

// VaultTransactionType transaction type
type VaultTransactionType string

const (
	VaultTransactionWithdrawal VaultTransactionType = "withdrawal"
	VaultTransactionDeposit    VaultTransactionType = "deposit"
)

// VaultTransaction is one recorded transfer. Withdrawals carry the request they
// settled; deposits carry the member who reported them.
type VaultTransaction struct {
	ID              string               `json:"id"`
	VaultID         string               `json:"vaultId"`
	RequestID       string               `json:"requestId,omitempty"`
	RecordedBy      string               `json:"recordedBy,omitempty"`
	Type            VaultTransactionType `json:"type"`
	Amount          string               `json:"amount"`
	AssetRef        string               `json:"assetRef"`
	Sender          string               `json:"sender"`
	Recipient       string               `json:"recipient"`
	TransactionHash string               `json:"transactionHash"`
	CreatedAt       time.Time            `json:"createdAt"`
}

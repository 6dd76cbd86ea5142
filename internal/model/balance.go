package model

import "time"

// VaultSummary represents one entry of GET /vaults
type VaultSummary struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Address          string    `json:"address"`
	CreatedBy        string    `json:"createdBy"`
	Members          []string  `json:"members"`
	IsCreator        bool      `json:"isCreator"`
	Balance          string    `json:"balance"`
	BalanceAvailable bool      `json:"balanceAvailable"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// VaultDetails represents response for GET /vaults/{vaultId}
type VaultDetails struct {
	VaultSummary
	FiatValue          *FiatValue                  `json:"fiatValue,omitempty"`
	PendingRequests    []WithdrawalRequestResponse `json:"pendingRequests"`
	WithdrawalRequests []WithdrawalRequestResponse `json:"withdrawalRequests"`
}

// FiatValue is the native balance valued in a fiat currency (display only)
type FiatValue struct {
	Currency string `json:"currency"`
	Rate     string `json:"rate"`
	Amount   string `json:"amount"`
}

// DepositAddress represents response for GET /vaults/{vaultId}/deposit-address
type DepositAddress struct {
	VaultID string `json:"vaultId"`
	Address string `json:"address"`
	Asset   string `json:"asset"`
	QR      string `json:"QR"` // base64 PNG
}

// NewVaultSummary builds the caller-facing view of a vault. The sealed secret is never copied.
func NewVaultSummary(v Vault, viewer string) VaultSummary {
	return VaultSummary{
		ID:          v.ID,
		Name:        v.Name,
		Description: v.Description,
		Address:     v.CustodialAddress,
		CreatedBy:   v.CreatedBy,
		Members:     v.Members.Slice(),
		IsCreator:   viewer != "" && NormalizeIdentity(viewer) == v.CreatedBy,
		Balance:     "0",
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

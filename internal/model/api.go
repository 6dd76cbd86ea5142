package model

import "time"

// CreateVaultRequest represents request for POST /vaults
type CreateVaultRequest struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	CreatorIdentity  string   `json:"creatorIdentity"`
	MemberIdentities []string `json:"memberIdentities"`
}

// CreateWithdrawalRequest represents request for POST /withdrawal-requests
type CreateWithdrawalRequest struct {
	VaultID     string `json:"vaultId"`
	Amount      string `json:"amount"`
	AssetRef    string `json:"assetRef"`
	Recipient   string `json:"recipient"`
	RequestedBy string `json:"requestedBy"`
}

// VoteRequest represents request for POST /withdrawal-requests/{id}/votes
type VoteRequest struct {
	VoterIdentity string `json:"voterIdentity"`
	Decision      string `json:"decision"`
}

// ExecuteRequest represents request for POST /withdrawal-requests/{id}/execute
type ExecuteRequest struct {
	ExecutorIdentity string `json:"executorIdentity"`
}

// ExecuteResponse represents response for POST /withdrawal-requests/{id}/execute
type ExecuteResponse struct {
	TransactionHash string                    `json:"transactionHash"`
	Request         WithdrawalRequestResponse `json:"request"`
}

// RegisterIdentityRequest represents request for POST /identities
type RegisterIdentityRequest struct {
	Identity string `json:"identity"`
}

// IdentityExistsResponse represents response for GET /identities/{identity}/exists
type IdentityExistsResponse struct {
	Exists bool `json:"exists"`
}

// WithdrawalRequestResponse is the wire form of a WithdrawalRequest.
type WithdrawalRequestResponse struct {
	ID                string     `json:"id"`
	VaultID           string     `json:"vaultId"`
	Amount            string     `json:"amount"`
	AssetRef          string     `json:"assetRef"`
	Recipient         string     `json:"recipient"`
	RequestedBy       string     `json:"requestedBy"`
	RequestedAt       time.Time  `json:"requestedAt"`
	Status            Status     `json:"status"`
	Approvals         []string   `json:"approvals"`
	Rejections        []string   `json:"rejections"`
	RequiredApprovals int        `json:"requiredApprovals"`
	CurrentApprovals  int        `json:"currentApprovals"`
	ExecutedAt        *time.Time `json:"executedAt,omitempty"`
	ExecutedBy        string     `json:"executedBy,omitempty"`
	TransactionHash   string     `json:"transactionHash,omitempty"`
}

// NewWithdrawalRequestResponse renders r for callers.
func NewWithdrawalRequestResponse(r WithdrawalRequest) WithdrawalRequestResponse {
	return WithdrawalRequestResponse{
		ID:                r.ID,
		VaultID:           r.VaultID,
		Amount:            r.Amount,
		AssetRef:          r.AssetRef,
		Recipient:         r.Recipient,
		RequestedBy:       r.RequestedBy,
		RequestedAt:       r.RequestedAt,
		Status:            r.Status,
		Approvals:         r.Approvals.Slice(),
		Rejections:        r.Rejections.Slice(),
		RequiredApprovals: r.RequiredApprovals,
		CurrentApprovals:  r.Approvals.Len(),
		ExecutedAt:        r.ExecutedAt,
		ExecutedBy:        r.ExecutedBy,
		TransactionHash:   r.TransactionHash,
	}
}

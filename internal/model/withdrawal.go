package model

import "time"

// WithdrawalRequest is a proposal to move funds out of a vault.
// Approvals and Rejections are disjoint; Version changes on every write.
type WithdrawalRequest struct {
	ID              string
	VaultID         string
	Amount          string
	AssetRef        string
	Recipient       string
	RequestedBy     string
	RequestedAt     time.Time
	Status          Status
	Approvals       IdentitySet
	Rejections      IdentitySet
	ExecutedAt      *time.Time
	ExecutedBy      string
	TransactionHash string
	Version         int64

	// RequiredApprovals is the member count of the owning vault, derived on load.
	RequiredApprovals int
}

// HasVoted reports whether identity already appears in either vote set.
func (r WithdrawalRequest) HasVoted(identity string) bool {
	return r.Approvals.Contains(identity) || r.Rejections.Contains(identity)
}

// Clone returns a copy whose vote sets can be modified independently.
func (r WithdrawalRequest) Clone() WithdrawalRequest {
	out := r
	out.Approvals = r.Approvals.Clone()
	out.Rejections = r.Rejections.Clone()
	if r.ExecutedAt != nil {
		t := *r.ExecutedAt
		out.ExecutedAt = &t
	}
	return out
}

// Vote is one recorded decision.
type Vote struct {
	Identity string
	Decision Decision
	CastAt   time.Time
}

// Execution carries the fields written when a request is executed.
type Execution struct {
	ExecutedAt      time.Time
	ExecutedBy      string
	TransactionHash string
}

// ExecutionClaim is an approved request held by an execution that has not
// completed. A claim outliving its execution needs an operator to compare the
// ledger against the request before it is released or recorded as paid.
type ExecutionClaim struct {
	RequestID string
	VaultID   string
	Claim     string
	ClaimedAt time.Time
	Amount    string
	AssetRef  string
	Recipient string
	Sender    string
}

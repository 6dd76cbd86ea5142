package model

import "time"

// Vault is a shared custodial account controlled by a fixed set of members.
type Vault struct {
	ID               string
	Name             string
	Description      string
	CustodialAddress string
	SealedSecret     SealedSecret
	CreatedBy        string
	Members          IdentitySet
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsMember reports whether identity belongs to the vault.
func (v Vault) IsMember(identity string) bool {
	return v.Members.Contains(identity)
}

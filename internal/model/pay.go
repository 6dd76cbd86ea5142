package model

// TransferOrder is a signed payment out of a custodial account.
// PrivateKey must be zeroed by the caller after the transfer.
type TransferOrder struct {
	From       string
	PrivateKey []byte
	To         string
	Amount     string
	AssetRef   string
	Memo       string
}

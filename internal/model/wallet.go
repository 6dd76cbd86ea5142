package model

// SealedSecret is the at-rest form of a custodial secret key.
// The plaintext never leaves the crypto package except to the execution path.
type SealedSecret struct {
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
}

// KeyMaterial is the decrypted payload inside a SealedSecret
type KeyMaterial struct {
	PrivateKey []byte `json:"privateKey"` // 64 bytes ed25519 key (stored as base64 in JSON)
	CreatedAt  string `json:"createdAt"`
}

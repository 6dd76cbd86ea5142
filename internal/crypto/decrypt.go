package crypto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AlexZinkM/friend-vault/internal/model"
)

// ErrInvalidPassword is returned when authentication of a sealed secret fails.
var ErrInvalidPassword = errors.New("invalid password")

// OpenPrivateKey decrypts a sealed private key.
// Caller must zero the returned slice after use.
func (s *Sealer) OpenPrivateKey(sealed model.SealedSecret) ([]byte, error) {
	if s == nil || s.password == nil {
		return nil, errors.New("sealer is not configured")
	}
	password, err := s.password()
	if err != nil {
		return nil, fmt.Errorf("failed to get master password: %w", err)
	}
	defer clear(password)

	material, err := OpenSecret(sealed, password, s.params)
	if err != nil {
		return nil, err
	}
	return material.PrivateKey, nil
}

// OpenSecret decrypts a sealed secret with password.
// password must be []byte for security (caller should zero it after use)
func OpenSecret(sealed model.SealedSecret, password []byte, params Params) (*model.KeyMaterial, error) {
	salt, err := base64.StdEncoding.DecodeString(sealed.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	nonce, err := base64.StdEncoding.DecodeString(sealed.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(sealed.CipherText)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	aesGCM, err := newGCM(password, salt, params)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aesGCM.NonceSize() {
		return nil, fmt.Errorf("invalid nonce length %d", len(nonce))
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidPassword
	}
	defer clear(plaintext) // wipe decrypted bytes from memory

	var material model.KeyMaterial
	if err := json.Unmarshal(plaintext, &material); err != nil {
		return nil, fmt.Errorf("failed to unmarshal key material: %w", err)
	}

	return &material, nil
}

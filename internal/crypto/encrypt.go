package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/AlexZinkM/friend-vault/internal/model"

	"golang.org/x/crypto/scrypt"
)

const (
	// scrypt parameters for custodial secrets
	// Security is prioritized over performance
	//
	// N=2^18 (~256MB RAM, 0.5-2s) is paid once per vault creation and once
	// per withdrawal execution, never on read paths.
	defaultCostLog2 = 18
	scryptR         = 8
	scryptP         = 1
	scryptKeyLen    = 32
	saltLen         = 32
	nonceLen        = 12
)

// Params are the scrypt cost parameters used to derive the sealing key.
type Params struct {
	N int
	R int
	P int
}

// DefaultParams returns the production scrypt parameters.
func DefaultParams() Params {
	return ParamsWithCost(defaultCostLog2)
}

// ParamsWithCost returns parameters with N = 2^costLog2.
func ParamsWithCost(costLog2 int) Params {
	if costLog2 < 1 {
		costLog2 = defaultCostLog2
	}
	return Params{N: 1 << costLog2, R: scryptR, P: scryptP}
}

// PasswordFunc returns a fresh copy of the master password.
// The sealer clears the returned slice after use.
type PasswordFunc func() ([]byte, error)

// Sealer seals and opens custodial private keys under the master password.
type Sealer struct {
	password PasswordFunc
	params   Params
}

// NewSealer creates a Sealer.
func NewSealer(password PasswordFunc, params Params) *Sealer {
	return &Sealer{password: password, params: params}
}

// SealPrivateKey encrypts a private key for storage.
func (s *Sealer) SealPrivateKey(privateKey []byte) (model.SealedSecret, error) {
	if s == nil || s.password == nil {
		return model.SealedSecret{}, errors.New("sealer is not configured")
	}
	password, err := s.password()
	if err != nil {
		return model.SealedSecret{}, fmt.Errorf("failed to get master password: %w", err)
	}
	defer clear(password)

	material := &model.KeyMaterial{
		PrivateKey: privateKey,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	return SealSecret(material, password, s.params)
}

// SealSecret encrypts key material with password.
// password must be []byte for security (caller should zero it after use)
func SealSecret(material *model.KeyMaterial, password []byte, params Params) (model.SealedSecret, error) {
	if material == nil || len(material.PrivateKey) == 0 {
		return model.SealedSecret{}, errors.New("private key is empty")
	}

	// Generate salt and nonce
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return model.SealedSecret{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return model.SealedSecret{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := newGCM(password, salt, params)
	if err != nil {
		return model.SealedSecret{}, err
	}

	plaintext, err := json.Marshal(material)
	if err != nil {
		return model.SealedSecret{}, fmt.Errorf("failed to marshal key material: %w", err)
	}
	defer clear(plaintext) // wipe plaintext bytes from memory

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	return model.SealedSecret{
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

// newGCM derives the key from password+salt and builds the AEAD.
func newGCM(password, salt []byte, params Params) (cipher.AEAD, error) {
	key, err := scrypt.Key(password, salt, params.N, params.R, params.P, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}

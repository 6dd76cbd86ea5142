// Package identity is the directory of platform identities that vault members
// are checked against.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/AlexZinkM/friend-vault/internal/model"
	"github.com/AlexZinkM/friend-vault/internal/storage"
)

const maxIdentityLength = 128

// ErrInvalidIdentity is returned for blank, oversized or whitespace-containing identities.
var ErrInvalidIdentity = errors.New("identity must be 1-128 characters without whitespace")

// Directory answers whether an identity is registered.
type Directory struct {
	store storage.IdentityStore
	now   func() time.Time
}

// NewDirectory creates a Directory over store.
func NewDirectory(store storage.IdentityStore) *Directory {
	return &Directory{store: store, now: time.Now}
}

// Exists reports whether identity is registered. Unregistrable identities never exist.
func (d *Directory) Exists(ctx context.Context, identity string) (bool, error) {
	identity, err := Normalize(identity)
	if err != nil {
		return false, nil
	}
	ok, err := d.store.IdentityExists(ctx, identity)
	if err != nil {
		return false, fmt.Errorf("failed to check identity: %w", err)
	}
	return ok, nil
}

// Register adds identity; created is false when it was already registered.
func (d *Directory) Register(ctx context.Context, identity string) (normalized string, created bool, err error) {
	normalized, err = Normalize(identity)
	if err != nil {
		return "", false, err
	}
	err = d.store.RegisterIdentity(ctx, normalized, d.now().UTC())
	if errors.Is(err, storage.ErrAlreadyExists) {
		return normalized, false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to register identity: %w", err)
	}
	return normalized, true, nil
}

// Normalize canonicalizes identity and checks its shape.
func Normalize(identity string) (string, error) {
	identity = model.NormalizeIdentity(identity)
	if identity == "" || len(identity) > maxIdentityLength {
		return "", ErrInvalidIdentity
	}
	for _, r := range identity {
		if unicode.IsSpace(r) {
			return "", ErrInvalidIdentity
		}
	}
	return identity, nil
}

// One-off: re-seal every vault's custodial secret under a new master password.
// All secrets are opened with the old password before any row is written.
// Usage: DATABASE_PATH=friend-vault.db go run ./cmd/reseal_secrets
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/AlexZinkM/friend-vault/internal/config"
	"github.com/AlexZinkM/friend-vault/internal/crypto"
	"github.com/AlexZinkM/friend-vault/internal/model"
	"github.com/AlexZinkM/friend-vault/internal/storage/sqlite"
)

type secretStore interface {
	ListVaults(ctx context.Context) ([]model.Vault, error)
	UpdateVaultSecret(ctx context.Context, vaultID string, sealed model.SealedSecret, updatedAt time.Time) error
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "reseal:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Init(); err != nil {
		return err
	}

	oldPassword, err := config.ReadPassword("Current master password: ")
	if err != nil {
		return err
	}
	defer clear(oldPassword)

	newPassword, err := config.ReadPassword("New master password: ")
	if err != nil {
		return err
	}
	defer clear(newPassword)

	confirm, err := config.ReadPassword("Repeat new master password: ")
	if err != nil {
		return err
	}
	defer clear(confirm)
	if !bytes.Equal(newPassword, confirm) {
		return errors.New("new passwords do not match")
	}

	store, err := sqlite.Open(config.GetDatabasePath())
	if err != nil {
		return err
	}
	defer store.Close()

	params := crypto.ParamsWithCost(config.GetScryptCostLog2())
	n, err := reseal(context.Background(), store, oldPassword, newPassword, params, time.Now().UTC())
	if err != nil {
		return err
	}
	fmt.Printf("re-sealed %d vault secrets\n", n)
	return nil
}

// reseal opens every secret with oldPassword, then seals each with newPassword.
// Nothing is written unless every secret opens.
func reseal(ctx context.Context, store secretStore, oldPassword, newPassword []byte, params crypto.Params, now time.Time) (int, error) {
	vaults, err := store.ListVaults(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list vaults: %w", err)
	}

	materials := make([]*model.KeyMaterial, len(vaults))
	defer func() {
		for _, m := range materials {
			if m != nil {
				clear(m.PrivateKey)
			}
		}
	}()
	for i, v := range vaults {
		m, err := crypto.OpenSecret(v.SealedSecret, oldPassword, params)
		if err != nil {
			return 0, fmt.Errorf("failed to open secret of vault %s: %w", v.ID, err)
		}
		materials[i] = m
	}

	for i, v := range vaults {
		sealed, err := crypto.SealSecret(materials[i], newPassword, params)
		if err != nil {
			return i, fmt.Errorf("failed to seal secret of vault %s: %w", v.ID, err)
		}
		if err := store.UpdateVaultSecret(ctx, v.ID, sealed, now); err != nil {
			return i, fmt.Errorf("failed to update vault %s: %w", v.ID, err)
		}
	}
	return len(vaults), nil
}

package vault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AlexZinkM/friend-vault/internal/crypto"
	"github.com/AlexZinkM/friend-vault/internal/lock"
	"github.com/AlexZinkM/friend-vault/internal/model"
	"github.com/AlexZinkM/friend-vault/internal/storage/sqlite"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeIdentities struct {
	known map[string]bool
	err   error
}

func newFakeIdentities(identities ...string) *fakeIdentities {
	f := &fakeIdentities{known: make(map[string]bool)}
	for _, id := range identities {
		f.known[model.NormalizeIdentity(id)] = true
	}
	return f
}

func (f *fakeIdentities) Exists(_ context.Context, identity string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.known[model.NormalizeIdentity(identity)], nil
}

type fakeLedger struct {
	mu            sync.Mutex
	accounts      int
	addressPrefix string
	balances      map[string]decimal.Decimal
	balanceErr    error
	transferErr   error
	delay         time.Duration
	attempts      int
	transfers     []model.TransferOrder
	keys          map[string][]byte
	observed      map[string]model.ObservedTransfer
	observeErr    error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		balances: make(map[string]decimal.Decimal),
		keys:     make(map[string][]byte),
		observed: make(map[string]model.ObservedTransfer),
	}
}

func (f *fakeLedger) NewAccount() (string, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts++
	prefix := f.addressPrefix
	if prefix == "" {
		prefix = "custody"
	}
	address := fmt.Sprintf("%s-%d", prefix, f.accounts)
	key := bytes.Repeat([]byte{byte(f.accounts)}, 64)
	f.keys[address] = bytes.Clone(key)
	return address, key, nil
}

func (f *fakeLedger) ValidateAddress(address string) error {
	if strings.TrimSpace(address) == "" || strings.Contains(address, "invalid") {
		return errors.New("not a ledger address")
	}
	return nil
}

func (f *fakeLedger) setBalance(address, assetRef, amount string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[address+"|"+model.NormalizeAssetRef(assetRef)] = decimal.RequireFromString(amount)
}

func (f *fakeLedger) Balance(_ context.Context, address, assetRef string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balanceErr != nil {
		return decimal.Zero, f.balanceErr
	}
	return f.balances[address+"|"+model.NormalizeAssetRef(assetRef)], nil
}

func (f *fakeLedger) Transfer(_ context.Context, order model.TransferOrder) (string, error) {
	f.mu.Lock()
	f.attempts++
	delay, transferErr := f.delay, f.transferErr
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if transferErr != nil {
		return "", transferErr
	}
	if !bytes.Equal(f.keys[order.From], order.PrivateKey) {
		return "", errors.New("signature verification failed")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	recorded := order
	recorded.PrivateKey = nil
	f.transfers = append(f.transfers, recorded)
	return fmt.Sprintf("sig-%d", len(f.transfers)), nil
}

// deposit makes hash a confirmed transfer of amount from sender to recipient.
func (f *fakeLedger) deposit(hash, sender, recipient, assetRef, amount string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observed[hash] = model.ObservedTransfer{
		TransactionHash: hash,
		Sender:          sender,
		Recipient:       recipient,
		AssetRef:        model.NormalizeAssetRef(assetRef),
		Amount:          amount,
		Succeeded:       true,
		BlockTime:       time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeLedger) ObserveTransfer(_ context.Context, txHash, recipient, assetRef string) (model.ObservedTransfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.observeErr != nil {
		return model.ObservedTransfer{}, f.observeErr
	}
	tx, ok := f.observed[txHash]
	if !ok {
		return model.ObservedTransfer{}, model.ErrTransferNotFound
	}
	if tx.Recipient != recipient || tx.AssetRef != model.NormalizeAssetRef(assetRef) {
		tx.Amount = "0"
	}
	tx.Recipient = recipient
	tx.AssetRef = model.NormalizeAssetRef(assetRef)
	return tx, nil
}

func (f *fakeLedger) transferCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transfers)
}

type fakePrices struct {
	rate decimal.Decimal
	err  error
}

func (f fakePrices) NativeRate(context.Context, string) (decimal.Decimal, error) {
	return f.rate, f.err
}

// passthrough runs fn without locking, leaving the conditional writes as the only guard.
type passthrough struct{}

func (passthrough) WithLock(ctx context.Context, _ string, fn func(context.Context) error) error {
	return fn(ctx)
}

// failingCompletion simulates the store failing right after a successful payment.
type failingCompletion struct {
	*sqlite.Store
}

func (f failingCompletion) CompleteExecution(context.Context, string, string, model.Execution, model.VaultTransaction) error {
	return errors.New("disk I/O error")
}

type fixture struct {
	store      *sqlite.Store
	ledger     *fakeLedger
	identities *fakeIdentities
	logs       *observer.ObservedLogs
	logger     *zap.Logger
	sealer     *crypto.Sealer
	registry   *Registry
	requests   *RequestManager
	voting     *VotingEngine
	execution  *ExecutionEngine
}

func newFixture(t *testing.T, locks lock.Manager, opts ...RegistryOption) *fixture {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	f := &fixture{
		store:      store,
		ledger:     newFakeLedger(),
		identities: newFakeIdentities("alice", "bob", "carol", "dave"),
		logs:       logs,
		logger:     logger,
		sealer: crypto.NewSealer(func() ([]byte, error) {
			return []byte("master"), nil
		}, crypto.ParamsWithCost(10)),
	}
	f.registry = NewRegistry(store, f.identities, f.ledger, f.sealer, logger, opts...)
	f.requests = NewRequestManager(f.registry, store, f.ledger, decimal.NewFromInt(1), logger)
	f.voting = NewVotingEngine(store, store, locks, logger)
	f.execution = NewExecutionEngine(store, store, f.ledger, f.sealer, locks, logger)
	return f
}

// tripVault creates alice's vault with bob and carol funded with balance SOL.
func (f *fixture) tripVault(t *testing.T, balance string) model.VaultSummary {
	t.Helper()
	summary, err := f.registry.CreateVault(context.Background(), model.CreateVaultRequest{
		Name:             "Lisbon trip",
		CreatorIdentity:  "alice",
		MemberIdentities: []string{"bob", "carol"},
	})
	require.NoError(t, err)
	f.ledger.setBalance(summary.Address, model.NativeAssetCode, balance)
	return summary
}

func (f *fixture) request(t *testing.T, vaultID, amount string) model.WithdrawalRequest {
	t.Helper()
	r, err := f.requests.CreateRequest(context.Background(), model.CreateWithdrawalRequest{
		VaultID:     vaultID,
		Amount:      amount,
		AssetRef:    "SOL",
		Recipient:   "addr-x",
		RequestedBy: "alice",
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) approvedRequest(t *testing.T, vaultID string) model.WithdrawalRequest {
	t.Helper()
	r := f.request(t, vaultID, "2")
	var err error
	for _, member := range []string{"bob", "carol"} {
		r, err = f.voting.Vote(context.Background(), r.ID, member, model.DecisionApprove)
		require.NoError(t, err)
	}
	require.Equal(t, model.StatusApproved, r.Status)
	return r
}

package vault

import (
	"context"
	"errors"
	"testing"

	"github.com/AlexZinkM/friend-vault/internal/lock"
	"github.com/AlexZinkM/friend-vault/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRequest(t *testing.T) {
	f := newFixture(t, lock.NewLocal())
	trip := f.tripVault(t, "20")

	r, err := f.requests.CreateRequest(context.Background(), model.CreateWithdrawalRequest{
		VaultID:     trip.ID,
		Amount:      "10.50",
		AssetRef:    "native",
		Recipient:   " addr-x ",
		RequestedBy: "Alice",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, r.Status)
	assert.Equal(t, "10.5", r.Amount)
	assert.Equal(t, model.NativeAssetCode, r.AssetRef)
	assert.Equal(t, "addr-x", r.Recipient)
	assert.Equal(t, []string{"alice"}, r.Approvals.Slice())
	assert.Zero(t, r.Rejections.Len())

	stored, err := f.store.GetWithdrawalRequest(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Approvals.Slice(), stored.Approvals.Slice())
	assert.Equal(t, model.StatusPending, stored.Status)
}

func TestCreateRequestErrors(t *testing.T) {
	f := newFixture(t, lock.NewLocal())
	trip := f.tripVault(t, "20")

	base := model.CreateWithdrawalRequest{
		VaultID: trip.ID, Amount: "1", AssetRef: "SOL", Recipient: "addr-x", RequestedBy: "bob",
	}
	tests := []struct {
		name   string
		mutate func(*model.CreateWithdrawalRequest)
		want   error
	}{
		{"non-member", func(r *model.CreateWithdrawalRequest) { r.RequestedBy = "dave" }, ErrAuthorization},
		{"unknown vault", func(r *model.CreateWithdrawalRequest) { r.VaultID = "missing" }, ErrNotFound},
		{"zero amount", func(r *model.CreateWithdrawalRequest) { r.Amount = "0" }, ErrValidation},
		{"negative amount", func(r *model.CreateWithdrawalRequest) { r.Amount = "-3" }, ErrValidation},
		{"garbage amount", func(r *model.CreateWithdrawalRequest) { r.Amount = "ten" }, ErrValidation},
		{"too precise", func(r *model.CreateWithdrawalRequest) { r.Amount = "0.0000000001" }, ErrValidation},
		{"empty recipient", func(r *model.CreateWithdrawalRequest) { r.Recipient = " " }, ErrValidation},
		{"bad recipient", func(r *model.CreateWithdrawalRequest) { r.Recipient = "invalid" }, ErrValidation},
		{"bad asset", func(r *model.CreateWithdrawalRequest) { r.AssetRef = "invalid-mint" }, ErrValidation},
		{"exponent amount on token", func(r *model.CreateWithdrawalRequest) {
			r.AssetRef = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
			r.Amount = "1e-20000000"
		}, ErrValidation},
		{"exponent amount", func(r *model.CreateWithdrawalRequest) { r.Amount = "1e2" }, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := f.requests.CreateRequest(context.Background(), in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	list, err := f.store.ListWithdrawalRequests(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateRequestEnforcesReserve(t *testing.T) {
	f := newFixture(t, lock.NewLocal())
	trip := f.tripVault(t, "5")

	_, err := f.requests.CreateRequest(context.Background(), model.CreateWithdrawalRequest{
		VaultID: trip.ID, Amount: "5", AssetRef: "SOL", Recipient: "addr-x", RequestedBy: "alice",
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// exactly the reserve left is fine
	_, err = f.requests.CreateRequest(context.Background(), model.CreateWithdrawalRequest{
		VaultID: trip.ID, Amount: "4", AssetRef: "SOL", Recipient: "addr-x", RequestedBy: "alice",
	})
	require.NoError(t, err)

	list, err := f.store.ListWithdrawalRequests(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateRequestTokenSkipsBalanceCheck(t *testing.T) {
	f := newFixture(t, lock.NewLocal())
	trip := f.tripVault(t, "0")

	r, err := f.requests.CreateRequest(context.Background(), model.CreateWithdrawalRequest{
		VaultID: trip.ID, Amount: "1000", AssetRef: "mint-usdc", Recipient: "addr-x", RequestedBy: "carol",
	})
	require.NoError(t, err)
	assert.Equal(t, "mint-usdc", r.AssetRef)
}

func TestCreateRequestBalanceFailureIsLedgerError(t *testing.T) {
	f := newFixture(t, lock.NewLocal())
	trip := f.tripVault(t, "10")
	f.ledger.balanceErr = errors.New("rpc down")

	_, err := f.requests.CreateRequest(context.Background(), model.CreateWithdrawalRequest{
		VaultID: trip.ID, Amount: "1", AssetRef: "SOL", Recipient: "addr-x", RequestedBy: "alice",
	})
	assert.ErrorIs(t, err, ErrLedger)
}

func TestRequestsForVault(t *testing.T) {
	f := newFixture(t, lock.NewLocal())
	trip := f.tripVault(t, "10")
	first := f.request(t, trip.ID, "1")
	second := f.request(t, trip.ID, "2")

	list, err := f.requests.RequestsForVault(context.Background(), trip.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	ids := []string{list[0].ID, list[1].ID}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)

	_, err = f.requests.RequestsForVault(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemberRequestsRequiresMembership(t *testing.T) {
	f := newFixture(t, lock.NewLocal())
	trip := f.tripVault(t, "10")
	f.request(t, trip.ID, "1")

	list, err := f.requests.MemberRequests(context.Background(), trip.ID, "bob")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.requests.MemberRequests(context.Background(), trip.ID, "mallory")
	assert.ErrorIs(t, err, ErrAuthorization)
}

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "github.com/AlexZinkM/friend-vault/docs"
	"github.com/AlexZinkM/friend-vault/internal/handler"
	"github.com/AlexZinkM/friend-vault/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubService struct{}

func (stubService) CreateVault(context.Context, model.CreateVaultRequest) (model.VaultSummary, error) {
	return model.VaultSummary{ID: "v1"}, nil
}

func (stubService) VaultsForMember(context.Context, string) ([]model.VaultSummary, error) {
	return []model.VaultSummary{}, nil
}

func (stubService) VaultDetails(_ context.Context, vaultID, _ string) (model.VaultDetails, error) {
	return model.VaultDetails{VaultSummary: model.VaultSummary{ID: vaultID}}, nil
}

func (stubService) DepositAddress(_ context.Context, vaultID, _ string) (model.DepositAddress, error) {
	return model.DepositAddress{VaultID: vaultID}, nil
}

func (stubService) Transactions(context.Context, string, string) ([]model.VaultTransaction, error) {
	return []model.VaultTransaction{}, nil
}

func (stubService) RecordDeposit(_ context.Context, vaultID string, req model.RecordDepositRequest) (model.VaultTransaction, error) {
	return model.VaultTransaction{VaultID: vaultID, Type: model.VaultTransactionDeposit, TransactionHash: req.TransactionHash}, nil
}

func (stubService) MemberRequests(context.Context, string, string) ([]model.WithdrawalRequest, error) {
	return nil, nil
}

func (stubService) CreateRequest(context.Context, model.CreateWithdrawalRequest) (model.WithdrawalRequest, error) {
	return model.WithdrawalRequest{ID: "r1", Status: model.StatusPending}, nil
}

func (stubService) Vote(_ context.Context, id, _ string, _ model.Decision) (model.WithdrawalRequest, error) {
	return model.WithdrawalRequest{ID: id, Status: model.StatusApproved}, nil
}

func (stubService) Execute(_ context.Context, id, _ string) (model.WithdrawalRequest, error) {
	return model.WithdrawalRequest{ID: id, Status: model.StatusExecuted, TransactionHash: "sig"}, nil
}

func (stubService) Exists(context.Context, string) (bool, error) {
	return true, nil
}

func (stubService) Register(_ context.Context, id string) (string, bool, error) {
	return id, true, nil
}

func newRouter(logger *zap.Logger) http.Handler {
	return newRouterWith(logger, true)
}

func newRouterWith(logger *zap.Logger, identityRegistration bool) http.Handler {
	s := stubService{}
	return SetupRouter(Handlers{
		Vaults:      handler.NewVaultHandler(s, s, logger),
		Withdrawals: handler.NewWithdrawalHandler(s, s, s, logger),
		Identities:  handler.NewIdentityHandler(s, logger),

		IdentityRegistration: identityRegistration,
	}, logger)
}

func TestRoutes(t *testing.T) {
	router := newRouter(nil)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodPost, "/vaults", `{"name":"Trip","creatorIdentity":"alice"}`, http.StatusCreated},
		{http.MethodGet, "/vaults?member=alice", "", http.StatusOK},
		{http.MethodGet, "/vaults/v1?requester=alice", "", http.StatusOK},
		{http.MethodGet, "/vaults/v1/withdrawal-requests?requester=alice", "", http.StatusOK},
		{http.MethodGet, "/vaults/v1/transactions?requester=alice", "", http.StatusOK},
		{http.MethodGet, "/vaults/v1/deposit-address?requester=alice", "", http.StatusOK},
		{http.MethodPost, "/vaults/v1/deposits", `{"depositorIdentity":"alice","transactionHash":"sig"}`, http.StatusCreated},
		{http.MethodGet, "/vaults/v1/deposits", "", http.StatusMethodNotAllowed},
		{http.MethodPost, "/withdrawal-requests", `{"vaultId":"v1","amount":"1"}`, http.StatusCreated},
		{http.MethodPost, "/withdrawal-requests/r1/votes", `{"voterIdentity":"bob","decision":"approve"}`, http.StatusOK},
		{http.MethodPost, "/withdrawal-requests/r1/execute", `{"executorIdentity":"bob"}`, http.StatusOK},
		{http.MethodPost, "/identities", `{"identity":"alice"}`, http.StatusCreated},
		{http.MethodGet, "/identities/alice/exists", "", http.StatusOK},
		{http.MethodDelete, "/vaults/v1", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/withdrawal-requests/r1/execute", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/unknown", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestIdentityRegistrationDisabled(t *testing.T) {
	router := newRouterWith(nil, false)

	req := httptest.NewRequest(http.MethodPost, "/identities", strings.NewReader(`{"identity":"mallory"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/identities/alice/exists", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSwaggerDoc(t *testing.T) {
	router := newRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/withdrawal-requests/{id}/execute")
	assert.Contains(t, rec.Body.String(), "/vaults/{vaultId}/deposits")
}

func TestRequestLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	router := newRouter(zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/identities/alice/exists", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/identities/alice/exists", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}

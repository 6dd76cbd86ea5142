package handler

import (
	"context"
	"net/http"

	"github.com/AlexZinkM/friend-vault/internal/model"

	"go.uber.org/zap"
)

// VaultService is the vault registry as seen by the HTTP layer.
type VaultService interface {
	CreateVault(ctx context.Context, req model.CreateVaultRequest) (model.VaultSummary, error)
	VaultsForMember(ctx context.Context, identity string) ([]model.VaultSummary, error)
	VaultDetails(ctx context.Context, vaultID, requester string) (model.VaultDetails, error)
	DepositAddress(ctx context.Context, vaultID, requester string) (model.DepositAddress, error)
	Transactions(ctx context.Context, vaultID, requester string) ([]model.VaultTransaction, error)
	RecordDeposit(ctx context.Context, vaultID string, req model.RecordDepositRequest) (model.VaultTransaction, error)
}

// RequestLister lists a vault's withdrawal requests for one of its members.
type RequestLister interface {
	MemberRequests(ctx context.Context, vaultID, requester string) ([]model.WithdrawalRequest, error)
}

// VaultHandler serves the /vaults endpoints
type VaultHandler struct {
	vaults   VaultService
	requests RequestLister
	logger   *zap.Logger
}

// NewVaultHandler creates a new VaultHandler
func NewVaultHandler(vaults VaultService, requests RequestLister, logger *zap.Logger) *VaultHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VaultHandler{vaults: vaults, requests: requests, logger: logger}
}

// Create handles POST /vaults
// @Summary      Create vault
// @Description  Creates a shared vault with a fresh custodial account. Every member must be a known identity.
// @Tags         vaults
// @Accept       json
// @Produce      json
// @Param        request  body      model.CreateVaultRequest  true  "Vault data"
// @Success      201      {object}  model.Envelope{data=model.VaultSummary}
// @Failure      400      {object}  model.Envelope{details=model.InvalidMembersDetails}
// @Failure      502      {object}  model.Envelope
// @Router       /vaults [post]
func (h *VaultHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateVaultRequest
	if !decodeBody(w, r, &req) {
		return
	}

	summary, err := h.vaults.CreateVault(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

// List handles GET /vaults
// @Summary      List member vaults
// @Description  Lists the vaults of a member with live balances
// @Tags         vaults
// @Produce      json
// @Param        member  query     string  true  "Member identity"
// @Success      200     {object}  model.Envelope{data=[]model.VaultSummary}
// @Router       /vaults [get]
func (h *VaultHandler) List(w http.ResponseWriter, r *http.Request) {
	vaults, err := h.vaults.VaultsForMember(r.Context(), r.URL.Query().Get("member"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, vaults)
}

// Get handles GET /vaults/{vaultId}
// @Summary      Vault details
// @Description  Returns balance, members and withdrawal requests of a vault
// @Tags         vaults
// @Produce      json
// @Param        vaultId    path      string  true  "Vault ID"
// @Param        requester  query     string  true  "Requesting member"
// @Success      200        {object}  model.Envelope{data=model.VaultDetails}
// @Failure      403        {object}  model.Envelope
// @Failure      404        {object}  model.Envelope
// @Router       /vaults/{vaultId} [get]
func (h *VaultHandler) Get(w http.ResponseWriter, r *http.Request) {
	details, err := h.vaults.VaultDetails(r.Context(), r.PathValue("vaultId"), r.URL.Query().Get("requester"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// WithdrawalRequests handles GET /vaults/{vaultId}/withdrawal-requests
// @Summary      Vault withdrawal requests
// @Description  Lists withdrawal requests of a vault, newest first
// @Tags         vaults
// @Produce      json
// @Param        vaultId    path      string  true  "Vault ID"
// @Param        requester  query     string  true  "Requesting member"
// @Success      200        {object}  model.Envelope{data=[]model.WithdrawalRequestResponse}
// @Router       /vaults/{vaultId}/withdrawal-requests [get]
func (h *VaultHandler) WithdrawalRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.requests.MemberRequests(r.Context(), r.PathValue("vaultId"), r.URL.Query().Get("requester"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]model.WithdrawalRequestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, model.NewWithdrawalRequestResponse(req))
	}
	writeJSON(w, http.StatusOK, out)
}

// Transactions handles GET /vaults/{vaultId}/transactions
// @Summary      Vault transaction history
// @Description  Lists recorded deposits and executed withdrawals of a vault
// @Tags         vaults
// @Produce      json
// @Param        vaultId    path      string  true  "Vault ID"
// @Param        requester  query     string  true  "Requesting member"
// @Success      200        {object}  model.Envelope{data=[]model.VaultTransaction}
// @Router       /vaults/{vaultId}/transactions [get]
func (h *VaultHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	records, err := h.vaults.Transactions(r.Context(), r.PathValue("vaultId"), r.URL.Query().Get("requester"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if records == nil {
		records = []model.VaultTransaction{}
	}
	writeJSON(w, http.StatusOK, records)
}

// DepositAddress handles GET /vaults/{vaultId}/deposit-address
// @Summary      Deposit address
// @Description  Returns the custodial address of a vault with a QR code (base64 PNG)
// @Tags         vaults
// @Produce      json
// @Param        vaultId    path      string  true  "Vault ID"
// @Param        requester  query     string  true  "Requesting member"
// @Success      200        {object}  model.Envelope{data=model.DepositAddress}
// @Router       /vaults/{vaultId}/deposit-address [get]
func (h *VaultHandler) DepositAddress(w http.ResponseWriter, r *http.Request) {
	addr, err := h.vaults.DepositAddress(r.Context(), r.PathValue("vaultId"), r.URL.Query().Get("requester"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

// RecordDeposit handles POST /vaults/{vaultId}/deposits
// @Summary      Record deposit
// @Description  Records a confirmed ledger transfer into the vault, reported by a member. Amount and sender are read from the ledger.
// @Tags         vaults
// @Accept       json
// @Produce      json
// @Param        vaultId  path      string                      true  "Vault ID"
// @Param        request  body      model.RecordDepositRequest  true  "Deposit transaction"
// @Success      201      {object}  model.Envelope{data=model.VaultTransaction}
// @Failure      400      {object}  model.Envelope
// @Failure      403      {object}  model.Envelope
// @Failure      404      {object}  model.Envelope
// @Failure      409      {object}  model.Envelope
// @Failure      502      {object}  model.Envelope
// @Router       /vaults/{vaultId}/deposits [post]
func (h *VaultHandler) RecordDeposit(w http.ResponseWriter, r *http.Request) {
	var req model.RecordDepositRequest
	if !decodeBody(w, r, &req) {
		return
	}

	record, err := h.vaults.RecordDeposit(r.Context(), r.PathValue("vaultId"), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

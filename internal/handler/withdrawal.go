package handler

import (
	"context"
	"net/http"

	"github.com/AlexZinkM/friend-vault/internal/model"

	"go.uber.org/zap"
)

// RequestCreator opens withdrawal requests.
type RequestCreator interface {
	CreateRequest(ctx context.Context, in model.CreateWithdrawalRequest) (model.WithdrawalRequest, error)
}

// Voter records votes on withdrawal requests.
type Voter interface {
	Vote(ctx context.Context, requestID, voter string, decision model.Decision) (model.WithdrawalRequest, error)
}

// Executor pays out approved withdrawal requests.
type Executor interface {
	Execute(ctx context.Context, requestID, executor string) (model.WithdrawalRequest, error)
}

// WithdrawalHandler serves the /withdrawal-requests endpoints
type WithdrawalHandler struct {
	requests RequestCreator
	voting   Voter
	executor Executor
	logger   *zap.Logger
}

// NewWithdrawalHandler creates a new WithdrawalHandler
func NewWithdrawalHandler(requests RequestCreator, voting Voter, executor Executor, logger *zap.Logger) *WithdrawalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WithdrawalHandler{requests: requests, voting: voting, executor: executor, logger: logger}
}

// Create handles POST /withdrawal-requests
// @Summary      Request withdrawal
// @Description  Opens a withdrawal request; the requester's approval is recorded immediately
// @Tags         withdrawals
// @Accept       json
// @Produce      json
// @Param        request  body      model.CreateWithdrawalRequest  true  "Withdrawal data"
// @Success      201      {object}  model.Envelope{data=model.WithdrawalRequestResponse}
// @Failure      400      {object}  model.Envelope
// @Failure      403      {object}  model.Envelope
// @Failure      422      {object}  model.Envelope
// @Router       /withdrawal-requests [post]
func (h *WithdrawalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateWithdrawalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := h.requests.CreateRequest(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.NewWithdrawalRequestResponse(created))
}

// Vote handles POST /withdrawal-requests/{id}/votes
// @Summary      Vote on withdrawal
// @Description  Records approve or reject. Every member must approve; one rejection is final.
// @Tags         withdrawals
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "Withdrawal request ID"
// @Param        request  body      model.VoteRequest  true  "Vote"
// @Success      200      {object}  model.Envelope{data=model.WithdrawalRequestResponse}
// @Failure      409      {object}  model.Envelope
// @Router       /withdrawal-requests/{id}/votes [post]
func (h *WithdrawalHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req model.VoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	decision, err := model.ParseDecision(req.Decision)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	updated, err := h.voting.Vote(r.Context(), r.PathValue("id"), req.VoterIdentity, decision)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, model.NewWithdrawalRequestResponse(updated))
}

// Execute handles POST /withdrawal-requests/{id}/execute
// @Summary      Execute withdrawal
// @Description  Pays out an approved request exactly once
// @Tags         withdrawals
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Withdrawal request ID"
// @Param        request  body      model.ExecuteRequest  true  "Executor"
// @Success      200      {object}  model.Envelope{data=model.ExecuteResponse}
// @Failure      409      {object}  model.Envelope
// @Failure      502      {object}  model.Envelope
// @Router       /withdrawal-requests/{id}/execute [post]
func (h *WithdrawalHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req model.ExecuteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	executed, err := h.executor.Execute(r.Context(), r.PathValue("id"), req.ExecutorIdentity)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ExecuteResponse{
		TransactionHash: executed.TransactionHash,
		Request:         model.NewWithdrawalRequestResponse(executed),
	})
}

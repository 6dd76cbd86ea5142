package vault

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AlexZinkM/friend-vault/internal/lock"
	"github.com/AlexZinkM/friend-vault/internal/model"
	"github.com/AlexZinkM/friend-vault/internal/storage"

	"go.uber.org/zap"
)

// maxVoteAttempts bounds optimistic retries when another writer bumps the version.
const maxVoteAttempts = 3

// VotingEngine records votes and drives the request state machine:
// every member must approve, and a single rejection is final.
type VotingEngine struct {
	vaults   storage.VaultStore
	requests storage.WithdrawalStore
	locks    lock.Manager
	logger   *zap.Logger
	now      func() time.Time
}

// NewVotingEngine creates a VotingEngine.
func NewVotingEngine(vaults storage.VaultStore, requests storage.WithdrawalStore, locks lock.Manager, logger *zap.Logger) *VotingEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VotingEngine{
		vaults:   vaults,
		requests: requests,
		locks:    locks,
		logger:   logger,
		now:      time.Now,
	}
}

// Vote records voter's decision on a pending request and returns the updated request.
func (e *VotingEngine) Vote(ctx context.Context, requestID, voter string, decision model.Decision) (model.WithdrawalRequest, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return model.WithdrawalRequest{}, validationError("request id is required")
	}
	if decision != model.DecisionApprove && decision != model.DecisionReject {
		return model.WithdrawalRequest{}, validationError("decision must be approve or reject")
	}
	voter = model.NormalizeIdentity(voter)

	var updated model.WithdrawalRequest
	err := e.locks.WithLock(ctx, lock.WithdrawalKey(requestID), func(ctx context.Context) error {
		for attempt := 1; attempt <= maxVoteAttempts; attempt++ {
			r, done, err := e.tryVote(ctx, requestID, voter, decision)
			if err != nil {
				return err
			}
			if done {
				updated = r
				return nil
			}
			e.logger.Debug("vote lost a version race, retrying",
				zap.String("request_id", requestID), zap.Int("attempt", attempt))
		}
		return stateError("request %s is being modified concurrently, retry the vote", requestID)
	})
	if err != nil {
		if KindOf(err) == "" {
			busy := stateError("request %s is busy, retry the vote", requestID)
			busy.Cause = err
			return model.WithdrawalRequest{}, busy
		}
		return model.WithdrawalRequest{}, err
	}

	e.logger.Info("vote recorded",
		zap.String("request_id", updated.ID),
		zap.String("voter", voter),
		zap.String("decision", string(decision)),
		zap.String("status", string(updated.Status)))
	return updated, nil
}

// tryVote validates and applies one vote against the current stored version.
// done=false means the conditional write lost a race and the caller should reload.
func (e *VotingEngine) tryVote(ctx context.Context, requestID, voter string, decision model.Decision) (model.WithdrawalRequest, bool, error) {
	r, v, err := loadRequest(ctx, e.vaults, e.requests, requestID)
	if err != nil {
		return model.WithdrawalRequest{}, false, err
	}
	if r.Status != model.StatusPending {
		return model.WithdrawalRequest{}, false, stateError("request %s is already %s", r.ID, r.Status)
	}
	if !v.IsMember(voter) {
		return model.WithdrawalRequest{}, false, authorizationError("%q is not a member of vault %s", voter, v.ID)
	}
	if r.HasVoted(voter) {
		return model.WithdrawalRequest{}, false, stateError("duplicate vote: %q already voted on request %s", voter, r.ID)
	}

	next := r.Clone()
	switch decision {
	case model.DecisionApprove:
		next.Approvals.Add(voter)
	case model.DecisionReject:
		next.Rejections.Add(voter)
	}
	next.Status = nextStatus(next, v.Members.Len())

	vote := model.Vote{Identity: voter, Decision: decision, CastAt: e.now().UTC()}
	err = e.requests.RecordVote(ctx, r.ID, vote, next.Status, r.Version)
	switch {
	case err == nil:
		next.Version = r.Version + 1
		return next, true, nil
	case errors.Is(err, storage.ErrConflict):
		return model.WithdrawalRequest{}, false, nil
	case errors.Is(err, storage.ErrAlreadyExists):
		return model.WithdrawalRequest{}, false, stateError("duplicate vote: %q already voted on request %s", voter, r.ID)
	default:
		return model.WithdrawalRequest{}, false, persistenceError(err, "failed to record vote")
	}
}

// nextStatus applies veto precedence, then unanimity.
func nextStatus(r model.WithdrawalRequest, memberCount int) model.Status {
	switch {
	case r.Rejections.Len() > 0:
		return model.StatusRejected
	case r.Approvals.Len() >= memberCount:
		return model.StatusApproved
	default:
		return model.StatusPending
	}
}

// loadRequest loads a request and its owning vault.
func loadRequest(ctx context.Context, vaults storage.VaultStore, requests storage.WithdrawalStore, requestID string) (model.WithdrawalRequest, model.Vault, error) {
	r, err := requests.GetWithdrawalRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.WithdrawalRequest{}, model.Vault{}, notFoundError("withdrawal request %s not found", requestID)
		}
		return model.WithdrawalRequest{}, model.Vault{}, persistenceError(err, "failed to load withdrawal request")
	}
	v, err := vaults.GetVault(ctx, r.VaultID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.WithdrawalRequest{}, model.Vault{}, notFoundError("vault %s not found", r.VaultID)
		}
		return model.WithdrawalRequest{}, model.Vault{}, persistenceError(err, "failed to load vault")
	}
	return r, v, nil
}

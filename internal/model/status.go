package model

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a withdrawal request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExecuted Status = "executed"
)

// ParseStatus converts a stored value into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected, StatusExecuted:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown withdrawal status %q", s)
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusExecuted:
		return true
	case StatusPending, StatusApproved:
		return false
	}
	return false
}

// CanTransitionTo reports whether s -> next is a legal forward move:
// pending -> approved -> executed, or pending -> rejected.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusApproved || next == StatusRejected
	case StatusApproved:
		return next == StatusExecuted
	case StatusRejected, StatusExecuted:
		return false
	}
	return false
}

// Decision is a member's vote on a withdrawal request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision accepts "approve" or "reject" (case-insensitive).
func ParseDecision(s string) (Decision, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(s))) {
	case DecisionApprove:
		return DecisionApprove, nil
	case DecisionReject:
		return DecisionReject, nil
	}
	return "", fmt.Errorf("decision must be approve or reject")
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/friend-vault/internal/identity"
	"github.com/AlexZinkM/friend-vault/internal/model"
	"github.com/AlexZinkM/friend-vault/vault"

	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies; every request DTO is a handful of short strings.
const maxBodyBytes = 1 << 20

var kindStatus = map[vault.Kind]int{
	vault.KindValidation:        http.StatusBadRequest,
	vault.KindAuthorization:     http.StatusForbidden,
	vault.KindNotFound:          http.StatusNotFound,
	vault.KindState:             http.StatusConflict,
	vault.KindInsufficientFunds: http.StatusUnprocessableEntity,
	vault.KindLedger:            http.StatusBadGateway,
	vault.KindPersistence:       http.StatusInternalServerError,
	vault.KindInternal:          http.StatusInternalServerError,
}

// StatusFor returns the HTTP status reported for err.
func StatusFor(err error) int {
	if status, ok := kindStatus[vault.KindOf(err)]; ok {
		return status
	}
	if errors.Is(err, identity.ErrInvalidIdentity) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.Envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := StatusFor(err)
	env := model.Envelope{Error: string(vault.KindInternal), Message: "internal error"}

	var ve *vault.Error
	switch {
	case errors.As(err, &ve):
		env.Error = string(ve.Kind)
		env.Message = ve.Message
		if ve.Kind == vault.KindInternal {
			env.Message = "internal error"
		}
		if len(ve.InvalidMembers) > 0 {
			env.Details = model.InvalidMembersDetails{InvalidMembers: ve.InvalidMembers}
		}
		if ve.ReconciliationRequired {
			env.Details = map[string]bool{"reconciliationRequired": true}
		}
	case status == http.StatusBadRequest:
		env.Error = string(vault.KindValidation)
		env.Message = err.Error()
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

func badRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(model.Envelope{
		Error:   string(vault.KindValidation),
		Message: message,
	})
}

// decodeBody decodes a JSON request body into dst, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}

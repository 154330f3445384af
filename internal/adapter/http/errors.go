package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"slotdesk/internal/core/domain"
)

const (
	codeConflict          = "conflict"
	codeInvalidTransition = "invalid_transition"
	codeValidation        = "validation_error"
	codeNotFound          = "not_found"
	codeForbidden         = "forbidden"
	codeUnauthorized      = "unauthorized"
	codeInvalidBody       = "invalid_request_body"
	codeInternal          = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondDomainError translates the four domain error kinds into distinct,
// machine-checkable HTTP responses. Nothing is swallowed into a generic
// failure: a UI can tell "slot no longer available" from "not your step".
func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrWrongRole):
		writeError(w, http.StatusForbidden, codeForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusUnprocessableEntity, codeInvalidTransition, err.Error())
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
	default:
		h.logger.Error("internal error", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{Error: msg, Code: code})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

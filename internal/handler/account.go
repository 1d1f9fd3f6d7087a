package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"credit-card-account/internal/model"
	"credit-card-account/internal/service"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// GetAccount handles GET /v1/account
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	response := h.accountService.GetAccount(r.Context())

	etag := fmt.Sprintf(`"%s-%d"`, model.CardSuffix(response.CardNumber), response.Version)
	w.Header().Set("ETag", etag)

	if ifNoneMatch := r.Header.Get("If-None-Match"); ifNoneMatch == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, http.StatusOK, response)
}

// Deposit handles POST /v1/account/deposits
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req model.AmountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	response, err := h.accountService.Deposit(r.Context(), &req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// Spend handles POST /v1/account/spends
func (h *AccountHandler) Spend(w http.ResponseWriter, r *http.Request) {
	var req model.AmountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	response, err := h.accountService.Spend(r.Context(), &req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// ChangePin handles PUT /v1/account/pin
func (h *AccountHandler) ChangePin(w http.ResponseWriter, r *http.Request) {
	var req model.ChangePinRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	response, err := h.accountService.ChangePin(r.Context(), &req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// SetCreditLimit handles PUT /v1/account/credit-limit
func (h *AccountHandler) SetCreditLimit(w http.ResponseWriter, r *http.Request) {
	var req model.CreditLimitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	response, err := h.accountService.SetCreditLimit(r.Context(), &req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// decodeJSON writes an error response and returns false when the body cannot
// be decoded into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		writeErrorResponse(w, http.StatusBadRequest, ve.Message, model.ErrCodeValidation)
	case errors.Is(err, io.EOF):
		writeErrorResponse(w, http.StatusBadRequest, "Request body is required", model.ErrCodeInvalidInput)
	default:
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON", model.ErrCodeInvalidInput)
	}
	return false
}

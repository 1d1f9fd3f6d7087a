package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"credit-card-account/internal/config"
	"credit-card-account/internal/model"
	"credit-card-account/internal/service"
)

// ActivityHandler serves the notification journal
type ActivityHandler struct {
	accountService *service.AccountService
}

func NewActivityHandler(accountService *service.AccountService) *ActivityHandler {
	return &ActivityHandler{
		accountService: accountService,
	}
}

// ListActivity handles GET /v1/account/activity
func (h *ActivityHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parseQueryParams(r.URL.Query())
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), model.ErrCodeInvalidInput)
		return
	}

	page, err := h.accountService.ListActivity(r.Context(), limit, offset)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// GetActivity handles GET /v1/account/activity/{id}
func (h *ActivityHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid activity ID format", model.ErrCodeInvalidInput)
		return
	}

	entry, err := h.accountService.GetActivity(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// parseQueryParams extracts and validates query parameters. A zero limit
// means the service default.
func parseQueryParams(values url.Values) (limit, offset int, err error) {
	if limitStr := values.Get("limit"); limitStr != "" {
		if limit, err = strconv.Atoi(limitStr); err != nil || limit <= 0 || limit > config.MaxActivityPageSize {
			return 0, 0, fmt.Errorf("invalid limit parameter")
		}
	}

	if offsetStr := values.Get("offset"); offsetStr != "" {
		if offset, err = strconv.Atoi(offsetStr); err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter")
		}
	}

	return limit, offset, nil
}

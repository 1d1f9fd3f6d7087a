package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"credit-card-account/internal/logger"
	"credit-card-account/internal/model"
	"credit-card-account/internal/service"
)

type HealthHandler struct {
	accountService *service.AccountService
	version        string
}

func NewHealthHandler(accountService *service.AccountService, version string) *HealthHandler {
	return &HealthHandler{
		accountService: accountService,
		version:        version,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := model.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	}

	account, err := h.accountService.Health(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("health check failed", zap.Error(err))
		response.Status = "unhealthy"
		writeJSON(w, http.StatusServiceUnavailable, response)
		return
	}
	response.Account = *account

	writeJSON(w, http.StatusOK, response)
}

package handler

import (
	"net/http"

	"credit-card-account/internal/service"
)

// RegisterRoutes mounts the health check and the v1 account API on mux.
func RegisterRoutes(mux *http.ServeMux, accountService *service.AccountService, version string) {
	healthHandler := NewHealthHandler(accountService, version)
	accountHandler := NewAccountHandler(accountService)
	activityHandler := NewActivityHandler(accountService)

	mux.Handle("GET /healthz", healthHandler)

	mux.HandleFunc("GET /v1/account", accountHandler.GetAccount)
	mux.HandleFunc("POST /v1/account/deposits", accountHandler.Deposit)
	mux.HandleFunc("POST /v1/account/spends", accountHandler.Spend)
	mux.HandleFunc("PUT /v1/account/pin", accountHandler.ChangePin)
	mux.HandleFunc("PUT /v1/account/credit-limit", accountHandler.SetCreditLimit)

	mux.HandleFunc("GET /v1/account/activity", activityHandler.ListActivity)
	mux.HandleFunc("GET /v1/account/activity/{id}", activityHandler.GetActivity)
}

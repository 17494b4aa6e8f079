package handler

import (
	"net/http"

	"github.com/leadvault/leadvault/application/port/inbound"
	"github.com/leadvault/leadvault/infrastructure/http/middleware"
	"github.com/leadvault/leadvault/infrastructure/http/response"
)

type AuthHandler struct {
	auth inbound.AuthUseCase
}

func NewAuthHandler(auth inbound.AuthUseCase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req inbound.LoginRequest
	if err := decodeStrict(r, &req); err != nil {
		response.AppError(w, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "logged in", res)
}

// ProvisionUser runs behind the guarded router; during bootstrap the guard
// lets the request through without an actor.
func (h *AuthHandler) ProvisionUser(w http.ResponseWriter, r *http.Request) {
	var req inbound.ProvisionUserRequest
	if err := decodeStrict(r, &req); err != nil {
		response.AppError(w, err)
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	user, err := h.auth.ProvisionUser(r.Context(), actor, req)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "user created", user)
}

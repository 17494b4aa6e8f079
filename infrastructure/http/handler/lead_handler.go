package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/leadvault/leadvault/application/port/inbound"
	"github.com/leadvault/leadvault/infrastructure/http/middleware"
	"github.com/leadvault/leadvault/infrastructure/http/response"
	"github.com/leadvault/leadvault/pkg/apperror"
)

type LeadHandler struct {
	leads inbound.LeadUseCase
}

func NewLeadHandler(leads inbound.LeadUseCase) *LeadHandler {
	return &LeadHandler{leads: leads}
}

func (h *LeadHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/buyers", h.Create).Methods(http.MethodPost)
	router.HandleFunc("/buyers/{id:[0-9]+}", h.Get).Methods(http.MethodGet)
	router.HandleFunc("/buyers/{id:[0-9]+}", h.Update).Methods(http.MethodPut)
	router.HandleFunc("/buyers/{id:[0-9]+}", h.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/buyers/{id:[0-9]+}/status", h.SetStatus).Methods(http.MethodPut)
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if actor == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	var in inbound.LeadInput
	if err := decodeStrict(r, &in); err != nil {
		response.AppError(w, err)
		return
	}

	detail, err := h.leads.Create(r.Context(), *actor, in)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "lead created", detail)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		response.AppError(w, err)
		return
	}

	detail, err := h.leads.Get(r.Context(), id)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "lead", detail)
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if actor == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	id, err := leadID(r)
	if err != nil {
		response.AppError(w, err)
		return
	}

	var req inbound.UpdateLeadRequest
	if err := decodeStrict(r, &req); err != nil {
		response.AppError(w, err)
		return
	}
	if req.UpdatedAt == "" {
		response.AppError(w, apperror.NewInvalidInput("updatedAt version token is required"))
		return
	}

	detail, err := h.leads.Update(r.Context(), *actor, id, req)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "lead updated", detail)
}

func (h *LeadHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if actor == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	id, err := leadID(r)
	if err != nil {
		response.AppError(w, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeStrict(r, &req); err != nil {
		response.AppError(w, err)
		return
	}

	buyer, err := h.leads.SetStatus(r.Context(), *actor, id, req.Status)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "status updated", buyer)
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if actor == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	id, err := leadID(r)
	if err != nil {
		response.AppError(w, err)
		return
	}

	if err := h.leads.Delete(r.Context(), *actor, id); err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "lead deleted", nil)
}

func leadID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, apperror.NewInvalidInput("invalid lead id")
	}
	return id, nil
}

// decodeStrict rejects unknown fields: clients may only submit allow-listed
// mutable fields, never arbitrary keys merged into the record.
func decodeStrict(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return apperror.NewInvalidInput("malformed request body: " + err.Error())
	}
	return nil
}

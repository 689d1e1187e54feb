package handler

import (
	"encoding/json"
	"net/http"

	"gamehub/internal/app/service"
	"gamehub/internal/common"

	"github.com/go-chi/chi/v5"
)

type ServerHandler struct {
	serverListService *service.ServerListService
}

func NewServerHandler(serverListService *service.ServerListService) *ServerHandler {
	return &ServerHandler{serverListService: serverListService}
}

func (h *ServerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/heartbeat", h.heartbeat)
}

func (h *ServerHandler) list(w http.ResponseWriter, r *http.Request) {
	servers, err := h.serverListService.List(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, servers)
}

func (h *ServerHandler) heartbeat(w http.ResponseWriter, r *http.Request) {
	var req service.HeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	info, err := h.serverListService.Heartbeat(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, info)
}

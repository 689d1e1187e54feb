package handler

import (
	"encoding/json"
	"net/http"

	"gamehub/internal/app/service"
	"gamehub/internal/common"
	"gamehub/internal/domain/repository"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	settingsService *service.SettingsService
	userRepo        repository.UserRepository
}

func NewAdminHandler(settingsService *service.SettingsService, userRepo repository.UserRepository) *AdminHandler {
	return &AdminHandler{settingsService: settingsService, userRepo: userRepo}
}

// RegisterRoutes expects the admin middleware chain to be applied by the
// router; owner-only routes add their own gate there.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.listSettings)
	r.Get("/settings/{key}", h.getSetting)
	r.Put("/settings/{key}", h.putSetting)
}

func (h *AdminHandler) RegisterOwnerRoutes(r chi.Router) {
	r.Delete("/users/{id}", h.deleteUser)
	r.Post("/users/{id}/roles", h.setRoles)
}

func (h *AdminHandler) listSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.List(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, settings)
}

func (h *AdminHandler) getSetting(w http.ResponseWriter, r *http.Request) {
	setting, err := h.settingsService.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, setting)
}

func (h *AdminHandler) putSetting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	setting, err := h.settingsService.Set(r.Context(), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, setting)
}

// deleteUser is a hard delete, irreversible by design.
func (h *AdminHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.userRepo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "User deleted")
}

func (h *AdminHandler) setRoles(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsAdmin bool `json:"is_admin"`
		IsOwner bool `json:"is_owner"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if err := h.userRepo.SetRoles(r.Context(), chi.URLParam(r, "id"), req.IsAdmin, req.IsOwner); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Roles updated")
}

package handler

import (
	"encoding/json"
	"net/http"

	"gamehub/internal/app/service"
	"gamehub/internal/common"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService    *service.AuthService
	discordService *service.DiscordService
}

func NewAuthHandler(authService *service.AuthService, discordService *service.DiscordService) *AuthHandler {
	return &AuthHandler{authService: authService, discordService: discordService}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/signup", h.signup)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Get("/me", h.me)
	r.Get("/discord/callback", h.discordCallback)
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.authService.Signup(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	http.SetCookie(w, h.authService.SessionCookie(r, resp.Token))
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	http.SetCookie(w, h.authService.SessionCookie(r, resp.Token))
	common.RespondWithJSON(w, http.StatusOK, resp)
}

// logout clears the session cookie. Idempotent: succeeds with or without an
// active session.
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.authService.ClearSessionCookie(r))
	common.RespondWithMessage(w, http.StatusOK, "Logged out")
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	snap, err := h.authService.Require(r)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, snap)
}

func (h *AuthHandler) discordCallback(w http.ResponseWriter, r *http.Request) {
	resp, err := h.discordService.Callback(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	http.SetCookie(w, h.authService.SessionCookie(r, resp.Token))
	common.RespondWithJSON(w, http.StatusOK, resp)
}

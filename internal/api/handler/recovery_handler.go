package handler

import (
	"encoding/json"
	"net/http"

	"gamehub/internal/app/service"
	"gamehub/internal/common"

	"github.com/go-chi/chi/v5"
)

type RecoveryHandler struct {
	recoveryService *service.RecoveryService
}

func NewRecoveryHandler(recoveryService *service.RecoveryService) *RecoveryHandler {
	return &RecoveryHandler{recoveryService: recoveryService}
}

func (h *RecoveryHandler) RegisterRoutes(r chi.Router) {
	r.Post("/forgot-password", h.forgotPassword)
	r.Get("/validate-reset-token", h.validateResetToken)
	r.Post("/reset-password", h.resetPassword)
	r.Post("/resend-verification", h.resendVerification)
	r.Post("/verify-email", h.verifyEmail)
	r.Get("/verify-email", h.verifyEmail) // email clients open the link with GET
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

func (h *RecoveryHandler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	msg, err := h.recoveryService.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithMessage(w, http.StatusOK, msg)
}

func (h *RecoveryHandler) validateResetToken(w http.ResponseWriter, r *http.Request) {
	if err := h.recoveryService.ValidateResetToken(r.Context(), r.URL.Query().Get("token")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (h *RecoveryHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if err := h.recoveryService.CompletePasswordReset(r.Context(), req.Token, req.Password); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Password has been reset")
}

func (h *RecoveryHandler) resendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	msg, err := h.recoveryService.RequestEmailVerification(r.Context(), req.Email)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithMessage(w, http.StatusOK, msg)
}

func (h *RecoveryHandler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" && r.Method == http.MethodPost {
		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.Token
		}
	}
	if err := h.recoveryService.CompleteEmailVerification(r.Context(), token); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Email verified")
}

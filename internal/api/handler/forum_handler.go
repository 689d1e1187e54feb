package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gamehub/internal/api/middleware"
	"gamehub/internal/app/service"
	"gamehub/internal/common"

	"github.com/go-chi/chi/v5"
)

type ForumHandler struct {
	forumService *service.ForumService
}

func NewForumHandler(forumService *service.ForumService) *ForumHandler {
	return &ForumHandler{forumService: forumService}
}

func (h *ForumHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/threads", h.listThreads)
	r.Get("/threads/{slug}", h.getThread)
}

func (h *ForumHandler) RegisterAuthedRoutes(r chi.Router) {
	r.Post("/threads", h.createThread)
	r.Post("/threads/{slug}/posts", h.createPost)
}

func (h *ForumHandler) RegisterAdminRoutes(r chi.Router) {
	r.Delete("/threads/{slug}", h.deleteThread)
	r.Delete("/posts/{id}", h.deletePost)
}

func (h *ForumHandler) listThreads(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	threads, err := h.forumService.ListThreads(r.Context(), limit, offset)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, threads)
}

func (h *ForumHandler) getThread(w http.ResponseWriter, r *http.Request) {
	view, err := h.forumService.GetThread(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, view)
}

func (h *ForumHandler) createThread(w http.ResponseWriter, r *http.Request) {
	snap, ok := middleware.SnapshotFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, common.ErrUnauthorized.Error())
		return
	}
	var req service.CreateThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	thread, err := h.forumService.CreateThread(r.Context(), snap, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, thread)
}

func (h *ForumHandler) createPost(w http.ResponseWriter, r *http.Request) {
	snap, ok := middleware.SnapshotFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, common.ErrUnauthorized.Error())
		return
	}
	var req service.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	post, err := h.forumService.CreatePost(r.Context(), snap, chi.URLParam(r, "slug"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, post)
}

func (h *ForumHandler) deleteThread(w http.ResponseWriter, r *http.Request) {
	if err := h.forumService.DeleteThread(r.Context(), chi.URLParam(r, "slug")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Thread deleted")
}

func (h *ForumHandler) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.forumService.DeletePost(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Post deleted")
}

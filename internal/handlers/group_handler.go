package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chameleon/server/internal/middleware"
	"github.com/chameleon/server/internal/models"
	"github.com/chameleon/server/internal/services"
)

// GroupHandler handles group API endpoints
type GroupHandler struct {
	groupService *services.GroupService
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groupService *services.GroupService) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
	}
}

// ListGroups returns the caller's groups
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groups, err := h.groupService.GetGroupsForUser(r.Context(), user.ID)
	if err != nil {
		http.Error(w, "Failed to list groups", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.GroupListResponse{Groups: groups})
}

// CreateGroup creates a new group owned by the caller
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	group, err := h.groupService.CreateGroup(r.Context(), user.ID, req.Name)
	if err != nil {
		if errors.Is(err, models.ErrGroupNameRequired) {
			http.Error(w, "Group name required", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to create group", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(group)
}

// DeleteGroup removes a group
func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID := chi.URLParam(r, "id")
	if groupID == "" {
		http.Error(w, "Group ID required", http.StatusBadRequest)
		return
	}

	if err := h.groupService.DeleteGroup(r.Context(), groupID); err != nil {
		http.Error(w, "Failed to delete group", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddMember adds a user to a group
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID := chi.URLParam(r, "id")
	if groupID == "" {
		http.Error(w, "Group ID required", http.StatusBadRequest)
		return
	}

	var req models.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	group, err := h.groupService.AddMember(r.Context(), groupID, req.UserID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			http.Error(w, "User not found", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to add member", http.StatusInternalServerError)
		return
	}
	if group == nil {
		http.Error(w, models.ErrGroupNotFound.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(group)
}

// RemoveMember removes a user from a group
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "userId")
	if groupID == "" || memberID == "" {
		http.Error(w, "Group ID and user ID required", http.StatusBadRequest)
		return
	}

	group, err := h.groupService.RemoveMember(r.Context(), groupID, memberID)
	if err != nil {
		http.Error(w, "Failed to remove member", http.StatusInternalServerError)
		return
	}
	if group == nil {
		http.Error(w, models.ErrGroupNotFound.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(group)
}

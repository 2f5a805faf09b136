package handlers

import (
	"net/http"

	"github.com/CodingDyl/virtec-crm/httpx"
	"github.com/CodingDyl/virtec-crm/internal/services"
	"go.uber.org/zap"
)

// Invalidator drops cached authorization state after a grant changes.
type Invalidator interface {
	InvalidateUser(userID uint)
	InvalidateAll()
}

// AdminUserHandler lists users and assigns them to profiles.
type AdminUserHandler struct {
	users *services.UserService
	cache Invalidator
	log   *zap.Logger
}

func NewAdminUserHandler(users *services.UserService, cache Invalidator, log *zap.Logger) *AdminUserHandler {
	return &AdminUserHandler{users: users, cache: cache, log: log}
}

// List returns every user along with the profiles they can be given.
func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	profiles, err := h.users.Profiles(r.Context())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": users, "profiles": profiles})
}

func (h *AdminUserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.NewUser
	if !decode(w, r, &in) {
		return
	}
	u, err := h.users.Create(r.Context(), in)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

type assignRequest struct {
	ProfileID *uint `json:"profile_id"`
}

// AssignProfile sets or clears (profile_id null) a user's profile.
func (h *AdminUserHandler) AssignProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req assignRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.users.AssignProfile(r.Context(), id, req.ProfileID)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	h.cache.InvalidateUser(id)
	httpx.JSON(w, http.StatusOK, u)
}

package handlers

import (
	"net/http"

	"github.com/CodingDyl/virtec-crm/httpx"
	"github.com/CodingDyl/virtec-crm/internal/services"
	"go.uber.org/zap"
)

type AdminProfileHandler struct {
	users *services.UserService
	cache Invalidator
	log   *zap.Logger
}

func NewAdminProfileHandler(users *services.UserService, cache Invalidator, log *zap.Logger) *AdminProfileHandler {
	return &AdminProfileHandler{users: users, cache: cache, log: log}
}

func (h *AdminProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.users.Profiles(r.Context())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profiles)
}

func (h *AdminProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileInput
	if !decode(w, r, &in) {
		return
	}
	p, err := h.users.CreateProfile(r.Context(), in)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

type permissionsRequest struct {
	Permissions []string `json:"permissions"`
}

// SetPermissions replaces a profile's grants. Every cached profile is
// dropped since any user may hold it.
func (h *AdminProfileHandler) SetPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req permissionsRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.users.SetProfilePermissions(r.Context(), id, req.Permissions)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	h.cache.InvalidateAll()
	httpx.JSON(w, http.StatusOK, p)
}

func (h *AdminProfileHandler) Permissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.users.Permissions(r.Context())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perms)
}

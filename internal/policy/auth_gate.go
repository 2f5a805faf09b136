// Package policy wires the gate package to the user and profile tables
// and exposes it as HTTP middleware.
package policy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/CodingDyl/virtec-crm/auth"
	"github.com/CodingDyl/virtec-crm/gate"
	"github.com/CodingDyl/virtec-crm/httpx"
	"github.com/CodingDyl/virtec-crm/i18n"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthGate is the single authorization point for the HTTP layer.
type AuthGate struct {
	Gate          *gate.Gate[uint]
	CacheResolver *gate.CachedResolver[uint]
	log           *zap.Logger
}

// NewAuthGate caches each user's profile for cacheTTL.
func NewAuthGate(db *gorm.DB, cacheTTL time.Duration, log *zap.Logger) *AuthGate {
	cached := gate.NewCachedResolver[uint](NewDBProfileResolver(db), cacheTTL)
	return &AuthGate{Gate: gate.New[uint](cached), CacheResolver: cached, log: log}
}

// Authorize checks the signed-in user against resource:action.
func (ag *AuthGate) Authorize(ctx context.Context, resource string, action gate.Action) error {
	userID, _ := auth.UserIDFromContext(ctx)
	return ag.Gate.Authorize(ctx, userID, resource, action)
}

func (ag *AuthGate) Can(ctx context.Context, resource string, action gate.Action) bool {
	return ag.Authorize(ctx, resource, action) == nil
}

func (ag *AuthGate) IsAdmin(ctx context.Context) bool {
	userID, _ := auth.UserIDFromContext(ctx)
	return ag.Gate.IsSuperAdmin(ctx, userID)
}

// InvalidateUser is called after a user's profile changes.
func (ag *AuthGate) InvalidateUser(userID uint) {
	ag.CacheResolver.Invalidate(userID)
}

func (ag *AuthGate) InvalidateAll() {
	ag.CacheResolver.InvalidateAll()
}

func (ag *AuthGate) deny(w http.ResponseWriter, r *http.Request, err error) {
	lang := i18n.LangFrom(r.Context())
	switch {
	case errors.Is(err, gate.ErrUnauthorized):
		httpx.JSONError(w, http.StatusUnauthorized, i18n.T(lang, "unauthorized"), nil)
	case errors.Is(err, gate.ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, i18n.T(lang, "forbidden"), nil)
	default:
		ag.log.Error("permission lookup failed", zap.String("path", r.URL.Path), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, i18n.T(lang, "internal"), nil)
	}
}

// RequirePermission blocks requests whose user lacks resource:action.
func (ag *AuthGate) RequirePermission(resource string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := ag.Authorize(r.Context(), resource, action); err != nil {
				ag.deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin only lets "*:*" holders through.
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.UserIDFromContext(r.Context()); !ok {
				ag.deny(w, r, gate.ErrUnauthorized)
				return
			}
			if !ag.IsAdmin(r.Context()) {
				ag.deny(w, r, gate.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
